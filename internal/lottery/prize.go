package lottery

import (
	"fmt"

	decimal "github.com/shopspring/decimal"
)

// TierNone 表示未中奖
const TierNone = 0

// 奖级数量：1..9，数字越小奖级越高
const TierCount = 9

// ResolveTier 按官方中奖对照表返回奖级
// f=前区命中数(0..5)，b=后区命中数(0..2)；返回 0 表示未中奖。
// 每个 (f,b) 组合唯一映射到一个奖级或未中奖，无需其他平局规则。
func ResolveTier(f, b int) int {
	switch {
	case f == 5 && b == 2:
		return 1
	case f == 5 && b == 1:
		return 2
	case f == 5 && b == 0:
		return 3
	case f == 4 && b == 2:
		return 4
	case f == 4 && b == 1:
		return 5
	case f == 3 && b == 2:
		return 6
	case f == 4 && b == 0:
		return 7
	case (f == 3 && b == 1) || (f == 2 && b == 2):
		return 8
	case (f == 3 && b == 0) || (f == 1 && b == 2) || (f == 2 && b == 1) || (f == 0 && b == 2):
		return 9
	default:
		return TierNone
	}
}

// MatchCounts 计算某基本注与开奖号码的两区命中数
func MatchCounts(comboFront, comboBack, winFront, winBack NumberSet) (f, b int) {
	return comboFront.IntersectCount(winFront), comboBack.IntersectCount(winBack)
}

// PrizeConfig 奖级与资金配置（由外部配置系统下发，引擎只读）
type PrizeConfig struct {
	JackpotRate      decimal.Decimal         // 一等奖占奖池比例，默认 0.75
	SecondRate       decimal.Decimal         // 二等奖占奖池比例，默认 0.18
	FixedAmounts     map[int]decimal.Decimal // 三至九等奖固定单注奖金
	BaseJackpot      decimal.Decimal         // 中出一等奖后下一期的起始奖池
	Increment        decimal.Decimal         // 一等奖轮空时滚入下一期的基础增量
	UnitPrice        decimal.Decimal         // 单注价格（2 元）
	MaxMultiplier    int64                   // 最大投注倍数（99）
	MaxCombinations  uint64                  // 单张注单的注数安全上限
	TargetProfitRate decimal.Decimal         // 目标利润率，仅用于报表监控
}

// DefaultPrizeConfig 官方默认奖级配置
func DefaultPrizeConfig() *PrizeConfig {
	return &PrizeConfig{
		JackpotRate: decimal.NewFromFloat(0.75),
		SecondRate:  decimal.NewFromFloat(0.18),
		FixedAmounts: map[int]decimal.Decimal{
			3: decimal.NewFromInt(10000),
			4: decimal.NewFromInt(3000),
			5: decimal.NewFromInt(300),
			6: decimal.NewFromInt(200),
			7: decimal.NewFromInt(100),
			8: decimal.NewFromInt(15),
			9: decimal.NewFromInt(5),
		},
		BaseJackpot:      decimal.NewFromInt(10000000),
		Increment:        decimal.NewFromInt(5000000),
		UnitPrice:        decimal.NewFromInt(2),
		MaxMultiplier:    99,
		MaxCombinations:  200000,
		TargetProfitRate: decimal.NewFromFloat(0.35),
	}
}

// Validate 校验配置完整性（缺固定奖金表或比例为零视为缺配置）
func (c *PrizeConfig) Validate() error {
	if c == nil {
		return ErrConfigMissing
	}
	if c.JackpotRate.IsZero() || c.SecondRate.IsZero() {
		return fmt.Errorf("%w: jackpot allocation rates not set", ErrConfigMissing)
	}
	for tier := 3; tier <= TierCount; tier++ {
		if _, ok := c.FixedAmounts[tier]; !ok {
			return fmt.Errorf("%w: fixed amount for tier %d not set", ErrConfigMissing, tier)
		}
	}
	if c.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: unit price not set", ErrConfigMissing)
	}
	return nil
}

// PrizeAmount 计算某奖级在给定期次下的应派金额
// 一二等奖按奖池比例分配（浮动奖），三至九等为固定奖；倍数放大的是
// 投注人的份额数。全程 decimal 运算，银行家舍入只在最终乘倍后做一次。
func PrizeAmount(tier int, jackpot decimal.Decimal, cfg *PrizeConfig, multiplier int64) (decimal.Decimal, error) {
	if err := cfg.Validate(); err != nil {
		return decimal.Zero, err
	}
	if multiplier < 1 || multiplier > cfg.MaxMultiplier {
		return decimal.Zero, fmt.Errorf("%w: multiplier %d outside [1,%d]",
			ErrInvalidSelection, multiplier, cfg.MaxMultiplier)
	}

	var base decimal.Decimal
	switch {
	case tier == 1:
		base = jackpot.Mul(cfg.JackpotRate)
	case tier == 2:
		base = jackpot.Mul(cfg.SecondRate)
	case tier >= 3 && tier <= TierCount:
		base = cfg.FixedAmounts[tier]
	default:
		return decimal.Zero, fmt.Errorf("invalid prize tier: %d", tier)
	}

	return base.Mul(decimal.NewFromInt(multiplier)).RoundBank(2), nil
}

// NextJackpot 计算下一期的奖池种子
// 一等奖轮空：当前奖池 + 基础增量滚存；否则从配置的起始奖池重新开始。
func NextJackpot(current decimal.Decimal, tier1Winners int64, cfg *PrizeConfig) decimal.Decimal {
	if tier1Winners == 0 {
		return current.Add(cfg.Increment)
	}
	return cfg.BaseJackpot
}
