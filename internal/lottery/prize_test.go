package lottery

import (
	"testing"

	decimal "github.com/shopspring/decimal"
)

// 全量 (f,b) 对照表：0..5 × 0..2 共 18 种组合逐一核对
func TestResolveTierTable(t *testing.T) {
	want := map[[2]int]int{
		{5, 2}: 1,
		{5, 1}: 2,
		{5, 0}: 3,
		{4, 2}: 4,
		{4, 1}: 5,
		{3, 2}: 6,
		{4, 0}: 7,
		{3, 1}: 8,
		{2, 2}: 8,
		{3, 0}: 9,
		{1, 2}: 9,
		{2, 1}: 9,
		{0, 2}: 9,
	}
	for f := 0; f <= 5; f++ {
		for b := 0; b <= 2; b++ {
			expect := want[[2]int{f, b}] // 未列出的组合应为 0（未中奖）
			if got := ResolveTier(f, b); got != expect {
				t.Fatalf("ResolveTier(%d,%d) = %d, want %d", f, b, got, expect)
			}
		}
	}
}

func TestMatchCounts(t *testing.T) {
	winF := NewNumberSet(1, 2, 3, 4, 5)
	winB := NewNumberSet(1, 2)
	f, b := MatchCounts(NewNumberSet(1, 2, 3, 4, 6), NewNumberSet(1, 7), winF, winB)
	if f != 4 || b != 1 {
		t.Fatalf("match counts = (%d,%d), want (4,1)", f, b)
	}
}

func TestPrizeAmountFixedTiers(t *testing.T) {
	cfg := DefaultPrizeConfig()
	jackpot := decimal.NewFromInt(30000000)
	for tier := 3; tier <= 9; tier++ {
		one, err := PrizeAmount(tier, jackpot, cfg, 1)
		if err != nil {
			t.Fatalf("tier %d: %v", tier, err)
		}
		if !one.Equal(cfg.FixedAmounts[tier]) {
			t.Fatalf("tier %d amount = %s, want %s", tier, one, cfg.FixedAmounts[tier])
		}
		// 倍数线性：amount(x3) == 3*amount(x1)
		three, err := PrizeAmount(tier, jackpot, cfg, 3)
		if err != nil {
			t.Fatalf("tier %d x3: %v", tier, err)
		}
		if !three.Equal(one.Mul(decimal.NewFromInt(3))) {
			t.Fatalf("tier %d linearity broken: %s != 3*%s", tier, three, one)
		}
	}
}

func TestPrizeAmountPariMutuel(t *testing.T) {
	cfg := DefaultPrizeConfig()
	jackpot := decimal.NewFromInt(10000000)

	t1, err := PrizeAmount(1, jackpot, cfg, 1)
	if err != nil {
		t.Fatalf("tier1: %v", err)
	}
	if !t1.Equal(decimal.NewFromInt(7500000)) {
		t.Fatalf("tier1 = %s, want 7500000", t1)
	}
	t2, _ := PrizeAmount(2, jackpot, cfg, 1)
	if !t2.Equal(decimal.NewFromInt(1800000)) {
		t.Fatalf("tier2 = %s, want 1800000", t2)
	}

	// 浮动奖同样对倍数线性（倍数放大的是份额数，不是奖池）
	t1x3, _ := PrizeAmount(1, jackpot, cfg, 3)
	if !t1x3.Equal(t1.Mul(decimal.NewFromInt(3))) {
		t.Fatalf("tier1 linearity broken: %s", t1x3)
	}
}

// 银行家舍入只在最终乘倍后做一次
func TestPrizeAmountRounding(t *testing.T) {
	cfg := DefaultPrizeConfig()
	cfg.JackpotRate = decimal.NewFromFloat(0.745)
	jackpot := decimal.NewFromFloat(1.01) // 1.01*0.745 = 0.75245
	got, err := PrizeAmount(1, jackpot, cfg, 1)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	// 0.75245 -> 银行家舍入两位 0.75
	if !got.Equal(decimal.NewFromFloat(0.75)) {
		t.Fatalf("rounded = %s, want 0.75", got)
	}
}

func TestPrizeAmountRejects(t *testing.T) {
	cfg := DefaultPrizeConfig()
	jackpot := decimal.NewFromInt(1000)
	if _, err := PrizeAmount(1, jackpot, cfg, 0); err == nil {
		t.Fatalf("multiplier 0 should be rejected")
	}
	if _, err := PrizeAmount(1, jackpot, cfg, 100); err == nil {
		t.Fatalf("multiplier 100 should be rejected")
	}
	if _, err := PrizeAmount(10, jackpot, cfg, 1); err == nil {
		t.Fatalf("tier 10 should be rejected")
	}
	broken := DefaultPrizeConfig()
	delete(broken.FixedAmounts, 7)
	if _, err := PrizeAmount(3, jackpot, broken, 1); err == nil {
		t.Fatalf("missing fixed table entry should be rejected")
	}
}

func TestNextJackpot(t *testing.T) {
	cfg := DefaultPrizeConfig()
	cfg.Increment = decimal.NewFromInt(500000)
	cfg.BaseJackpot = decimal.NewFromInt(800000)
	cur := decimal.NewFromInt(1000000)

	// 一等奖轮空：滚存
	if got := NextJackpot(cur, 0, cfg); !got.Equal(decimal.NewFromInt(1500000)) {
		t.Fatalf("rollover jackpot = %s, want 1500000", got)
	}
	// 有一等奖：回到起始奖池
	if got := NextJackpot(cur, 2, cfg); !got.Equal(decimal.NewFromInt(800000)) {
		t.Fatalf("reset jackpot = %s, want 800000", got)
	}
}
