package lottery

import (
	"fmt"
	"runtime"
	"sync"

	decimal "github.com/shopspring/decimal"
)

// 注单结算状态（与注单表 bill_status 对齐）
const (
	OutcomeLost  = "lost"
	OutcomeWon   = "won"
	OutcomeError = "error" // 持久化数据损坏等单注失败，不影响整期结算
)

// Bet 引擎视角的待结算注单（由 service 层从注单表投影而来，纯数据）
type Bet struct {
	BillNo     string
	Selection  *Selection
	Multiplier int64
	TotalStake decimal.Decimal
}

// DrawContext 一期开奖上下文
type DrawContext struct {
	DrawNumber   int64
	WinningFront NumberSet
	WinningBack  NumberSet
	Jackpot      decimal.Decimal
}

// BetOutcome 单注结算结果
type BetOutcome struct {
	BillNo  string
	Outcome string // won | lost | error
	Tier    int    // 0=未中奖
	Amount  decimal.Decimal
	Err     error // Outcome=error 时的原因
}

// TierStat 某奖级的聚合统计
type TierStat struct {
	Winners int64
	Payout  decimal.Decimal
}

// SettlementReport 整期结算报表
// Outcomes 与入参注单顺序一一对应，调用方据此做一次性批量持久化。
type SettlementReport struct {
	DrawNumber       int64
	BetCount         int
	CombinationCount uint64
	TotalSales       decimal.Decimal
	TotalPayout      decimal.Decimal
	Profit           decimal.Decimal
	ProfitRate       decimal.Decimal
	Tiers            [TierCount + 1]TierStat // 下标 1..9
	Outcomes         []BetOutcome
	Errors           []BetOutcome // Outcomes 中 error 项的引用副本，便于单独上报
	JackpotRollover  bool
}

// Settle 对一期的全部待结算注单执行结算，纯计算、无副作用
//
// 并发模型：注单之间相互独立，按固定 worker 数瓜分下标区间并行求值；
// 结果写入按注单下标预分配的切片，聚合在全部 worker 结束后单线程归约，
// 保证结果与枚举顺序无关且可重复。
//
// 单注的持久化选号损坏 → 标记 error 并继续；开奖号码缺失或非法 → 整期
// 失败（调用方此时不得落任何结果）。
func Settle(drawCtx *DrawContext, bets []*Bet, cfg *PrizeConfig, workers int) (*SettlementReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if drawCtx == nil {
		return nil, ErrInvalidState
	}
	if err := ValidateWinning(drawCtx.WinningFront, drawCtx.WinningBack); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(bets) && len(bets) > 0 {
		workers = len(bets)
	}

	outcomes := make([]BetOutcome, len(bets))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(bets); i += workers {
				outcomes[i] = settleOne(drawCtx, bets[i], cfg)
			}
		}(w)
	}
	wg.Wait()

	// 单线程归约，保证聚合顺序确定
	rpt := &SettlementReport{
		DrawNumber:  drawCtx.DrawNumber,
		BetCount:    len(bets),
		TotalSales:  decimal.Zero,
		TotalPayout: decimal.Zero,
		Outcomes:    outcomes,
	}
	for i := 1; i <= TierCount; i++ {
		rpt.Tiers[i].Payout = decimal.Zero
	}
	for i, oc := range outcomes {
		rpt.TotalSales = rpt.TotalSales.Add(bets[i].TotalStake)
		if bets[i].Selection != nil {
			rpt.CombinationCount += bets[i].Selection.Combinations()
		}
		switch oc.Outcome {
		case OutcomeWon:
			rpt.Tiers[oc.Tier].Winners++
			rpt.Tiers[oc.Tier].Payout = rpt.Tiers[oc.Tier].Payout.Add(oc.Amount)
			rpt.TotalPayout = rpt.TotalPayout.Add(oc.Amount)
		case OutcomeError:
			rpt.Errors = append(rpt.Errors, oc)
		}
	}

	rpt.Profit = rpt.TotalSales.Sub(rpt.TotalPayout)
	if rpt.TotalSales.IsPositive() {
		rpt.ProfitRate = rpt.Profit.Div(rpt.TotalSales).RoundBank(4)
	}
	rpt.JackpotRollover = rpt.Tiers[1].Winners == 0
	return rpt, nil
}

// settleOne 结算单注：求最优奖级并计算应派金额
func settleOne(drawCtx *DrawContext, bet *Bet, cfg *PrizeConfig) BetOutcome {
	oc := BetOutcome{BillNo: bet.BillNo, Outcome: OutcomeLost, Amount: decimal.Zero}

	if bet.Selection == nil {
		oc.Outcome = OutcomeError
		oc.Err = fmt.Errorf("%w: nil selection", ErrInvalidSelection)
		return oc
	}
	if err := bet.Selection.Validate(); err != nil {
		oc.Outcome = OutcomeError
		oc.Err = err
		return oc
	}

	tier, _, _ := EvaluateSelection(bet.Selection, drawCtx.WinningFront, drawCtx.WinningBack)
	if tier == TierNone {
		return oc
	}

	amount, err := PrizeAmount(tier, drawCtx.Jackpot, cfg, bet.Multiplier)
	if err != nil {
		oc.Outcome = OutcomeError
		oc.Err = err
		return oc
	}
	oc.Outcome = OutcomeWon
	oc.Tier = tier
	oc.Amount = amount
	return oc
}
