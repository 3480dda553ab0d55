package redis

import "strconv"

// Redis Key 定义与构造器
// 统一管理业务使用的 Redis Key，避免散落的魔法字符串，便于统一维护与变更。

const (
	// PrefixBetIdemResult：投注幂等“结果缓存”Key 的前缀。
	// 作用：缓存某个 idempotency key 对应的第一次成功结果（BetOutput JSON），用于后续重复请求直接返回。
	PrefixBetIdemResult = "lotto:bet:idem:result:"
	// PrefixBetIdemLock：投注幂等“进行中锁”Key 的前缀。
	// 作用：使用 SETNX + TTL 标记 idempotency key 正在处理，吸收瞬时重复请求，减轻数据库压力。
	PrefixBetIdemLock = "lotto:bet:idem:lock:"

	// PrefixSettleLock：期次结算互斥锁，保证同一期只有一个结算执行者。
	PrefixSettleLock = "lotto:draw:settle:lock:"

	// PrefixDrawInfo：期次信息缓存（销售截止时间、状态），用于前端倒计时等快速查询
	PrefixDrawInfo = "lotto:draw:info:"
	// PrefixDrawResult：开奖/结算结果缓存
	PrefixDrawResult = "lotto:draw:result:"

	// KeyRateLimitPrefix：限流滑动窗口 Key 前缀
	KeyRateLimitPrefix = "lotto:ratelimit:"

	// PrefixTokenBlacklist：已撤销管理 Token 黑名单
	PrefixTokenBlacklist = "lotto:token:blacklist:"
)

// IdemResultKey：构造幂等“结果缓存”的完整 Key。
// 形如：lotto:bet:idem:result:{idempotency_key}
func IdemResultKey(k string) string { return PrefixBetIdemResult + k }

// IdemLockKey：构造幂等“进行中锁”的完整 Key。
// 形如：lotto:bet:idem:lock:{idempotency_key}
func IdemLockKey(k string) string { return PrefixBetIdemLock + k }

// SettleLockKey：构造期次结算锁 Key。形如：lotto:draw:settle:lock:{draw_number}
func SettleLockKey(drawNumber int64) string {
	return PrefixSettleLock + strconv.FormatInt(drawNumber, 10)
}

// DrawInfoKey：构造期次信息缓存 Key。形如：lotto:draw:info:{draw_number}
func DrawInfoKey(drawNumber int64) string {
	return PrefixDrawInfo + strconv.FormatInt(drawNumber, 10)
}

// DrawResultKey：构造开奖结果缓存 Key。形如：lotto:draw:result:{draw_number}
func DrawResultKey(drawNumber int64) string {
	return PrefixDrawResult + strconv.FormatInt(drawNumber, 10)
}

// TokenBlacklistKey：构造 Token 黑名单 Key。
func TokenBlacklistKey(token string) string { return PrefixTokenBlacklist + token }
