package lottery

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Sampler 开奖号码采样函数：对给定号码区做不放回均匀抽样
// 引擎不关心随机源实现，只要求均匀、无重复、在区界内；受监管的正式开奖
// 应使用外部摇奖结果（人工录入或官方消息源），Sampler 仅用于注入。
type Sampler func(zone ZoneSpec) (NumberSet, error)

// CryptoSampler 默认采样器，基于 crypto/rand 的 Fisher-Yates 抽样
// 刻意不用通用 PRNG：开奖号码的随机质量直接关系公平性。
func CryptoSampler(zone ZoneSpec) (NumberSet, error) {
	total := zone.Max - zone.Min + 1
	if zone.Pick <= 0 || zone.Pick > total {
		return nil, fmt.Errorf("%w: zone %s pick %d of %d", ErrInvalidWinningNumber, zone.Name, zone.Pick, total)
	}

	pool := make([]int, total)
	for i := range pool {
		pool[i] = zone.Min + i
	}
	for i := 0; i < zone.Pick; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(total-i)))
		if err != nil {
			return nil, err
		}
		j := i + int(n.Int64())
		pool[i], pool[j] = pool[j], pool[i]
	}
	return NewNumberSet(pool[:zone.Pick]...), nil
}

// ValidateWinning 校验一组开奖号码（两区各自满足单式约束）
func ValidateWinning(winFront, winBack NumberSet) error {
	if err := FrontZone.ValidatePick(winFront); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWinningNumber, err)
	}
	if err := BackZone.ValidatePick(winBack); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWinningNumber, err)
	}
	return nil
}
