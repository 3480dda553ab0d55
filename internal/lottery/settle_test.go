package lottery

import (
	"errors"
	"testing"

	decimal "github.com/shopspring/decimal"
)

func testDrawCtx() *DrawContext {
	return &DrawContext{
		DrawNumber:   25088,
		WinningFront: NewNumberSet(1, 2, 3, 4, 5),
		WinningBack:  NewNumberSet(1, 2),
		Jackpot:      decimal.NewFromInt(10000000),
	}
}

func singleBet(billNo string, front, back NumberSet, multiplier int64) *Bet {
	sel := &Selection{Type: BetSingle, Front: front, Back: back}
	stake := decimal.NewFromInt(2).Mul(decimal.NewFromInt(multiplier))
	return &Bet{BillNo: billNo, Selection: sel, Multiplier: multiplier, TotalStake: stake}
}

func TestSettleEndToEnd(t *testing.T) {
	cfg := DefaultPrizeConfig()
	bets := []*Bet{
		singleBet("LT001", NewNumberSet(1, 2, 3, 4, 5), NewNumberSet(1, 2), 1),  // 一等奖
		singleBet("LT002", NewNumberSet(1, 2, 3, 4, 6), NewNumberSet(1, 9), 1),  // f=4,b=1 五等奖
		singleBet("LT003", NewNumberSet(20, 21, 22, 23, 24), NewNumberSet(8, 9), 1), // 未中奖
	}

	rpt, err := Settle(testDrawCtx(), bets, cfg, 2)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if rpt.BetCount != 3 || rpt.CombinationCount != 3 {
		t.Fatalf("counts = (%d,%d), want (3,3)", rpt.BetCount, rpt.CombinationCount)
	}
	if rpt.Outcomes[0].Outcome != OutcomeWon || rpt.Outcomes[0].Tier != 1 {
		t.Fatalf("bet0 = %+v, want tier 1", rpt.Outcomes[0])
	}
	if rpt.Outcomes[1].Tier != 5 {
		t.Fatalf("bet1 tier = %d, want 5", rpt.Outcomes[1].Tier)
	}
	if rpt.Outcomes[2].Outcome != OutcomeLost {
		t.Fatalf("bet2 = %+v, want lost", rpt.Outcomes[2])
	}
	if rpt.Tiers[1].Winners != 1 || rpt.Tiers[5].Winners != 1 {
		t.Fatalf("tier stats wrong: %+v", rpt.Tiers)
	}
	// 7500000 + 300
	wantPayout := decimal.NewFromInt(7500300)
	if !rpt.TotalPayout.Equal(wantPayout) {
		t.Fatalf("total payout = %s, want %s", rpt.TotalPayout, wantPayout)
	}
	if !rpt.TotalSales.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("total sales = %s, want 6", rpt.TotalSales)
	}
	if !rpt.Profit.Equal(rpt.TotalSales.Sub(rpt.TotalPayout)) {
		t.Fatalf("profit inconsistent")
	}
	if rpt.JackpotRollover {
		t.Fatalf("tier1 won, rollover must be false")
	}
}

func TestSettleRolloverFlag(t *testing.T) {
	cfg := DefaultPrizeConfig()
	bets := []*Bet{
		singleBet("LT010", NewNumberSet(20, 21, 22, 23, 24), NewNumberSet(8, 9), 1),
	}
	rpt, err := Settle(testDrawCtx(), bets, cfg, 1)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !rpt.JackpotRollover {
		t.Fatalf("no tier1 winner, rollover must be true")
	}
}

// 单注数据损坏不拖垮整期；其余注单正常结算
func TestSettleBadBetIsolated(t *testing.T) {
	cfg := DefaultPrizeConfig()
	bad := &Bet{
		BillNo:     "LT020",
		Selection:  &Selection{Type: BetSingle, Front: NewNumberSet(1, 2, 3), Back: NewNumberSet(1, 2)},
		Multiplier: 1,
		TotalStake: decimal.NewFromInt(2),
	}
	good := singleBet("LT021", NewNumberSet(1, 2, 3, 4, 6), NewNumberSet(1, 2), 1) // f=4,b=2 四等奖
	rpt, err := Settle(testDrawCtx(), []*Bet{bad, good}, cfg, 2)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(rpt.Errors) != 1 || rpt.Errors[0].BillNo != "LT020" {
		t.Fatalf("errors = %+v, want one entry for LT020", rpt.Errors)
	}
	if !errors.Is(rpt.Errors[0].Err, ErrInvalidSelection) {
		t.Fatalf("error kind = %v", rpt.Errors[0].Err)
	}
	if rpt.Outcomes[1].Tier != 4 {
		t.Fatalf("good bet tier = %d, want 4", rpt.Outcomes[1].Tier)
	}
}

// 整期失败的情况：开奖号码缺失/非法、配置缺失
func TestSettleFatal(t *testing.T) {
	cfg := DefaultPrizeConfig()
	drawCtx := testDrawCtx()
	drawCtx.WinningFront = nil
	if _, err := Settle(drawCtx, nil, cfg, 1); !errors.Is(err, ErrInvalidWinningNumber) {
		t.Fatalf("err = %v, want ErrInvalidWinningNumber", err)
	}
	if _, err := Settle(testDrawCtx(), nil, &PrizeConfig{}, 1); !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("err = %v, want ErrConfigMissing", err)
	}
	if _, err := Settle(nil, nil, cfg, 1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

// 并行度不影响结果
func TestSettleDeterministic(t *testing.T) {
	cfg := DefaultPrizeConfig()
	var bets []*Bet
	for i := 0; i < 40; i++ {
		n := i%30 + 1
		bets = append(bets, singleBet("LTD", NewNumberSet(n, n+1, n+2, n+3, n+4), NewNumberSet(i%10+1, i%10+2), int64(i%3+1)))
	}
	r1, err := Settle(testDrawCtx(), bets, cfg, 1)
	if err != nil {
		t.Fatalf("settle x1: %v", err)
	}
	r8, err := Settle(testDrawCtx(), bets, cfg, 8)
	if err != nil {
		t.Fatalf("settle x8: %v", err)
	}
	if !r1.TotalPayout.Equal(r8.TotalPayout) {
		t.Fatalf("parallel settle diverges: %s vs %s", r1.TotalPayout, r8.TotalPayout)
	}
	for tier := 1; tier <= TierCount; tier++ {
		if r1.Tiers[tier].Winners != r8.Tiers[tier].Winners || !r1.Tiers[tier].Payout.Equal(r8.Tiers[tier].Payout) {
			t.Fatalf("tier %d stats diverge", tier)
		}
	}
	for i := range r1.Outcomes {
		if r1.Outcomes[i].Tier != r8.Outcomes[i].Tier {
			t.Fatalf("outcome %d diverges", i)
		}
	}
}
