package model

import (
	"context"
	"time"

	g "github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/jmoiron/sqlx"
	decimal "github.com/shopspring/decimal"
)

var dialect = g.Dialect("mysql")

// Bet 对应 bets 表（注单）
// 说明：选号以封闭三变体 JSON 持久化（见 internal/lottery.Selection），
// 写入前已通过构造期校验；金额列为 DECIMAL(18,2)
// bet_type: 1=single 2=complex 3=system
// bill_status: 1=待结算 2=已结算 3=已取消 4=结算异常
// prize_tier: 0=未开奖或未中奖 1..9=奖级
type Bet struct {
	BillNo           string          `db:"bill_no"`            // 注单号(主键)
	DrawNumber       int64           `db:"draw_number"`        // 所属期号
	UserID           int64           `db:"user_id"`            // 用户ID（内部ID）
	PlatformID       int8            `db:"platform_id"`        // 平台ID
	PlatformUserID   string          `db:"platform_user_id"`   // 平台用户ID
	UserName         string          `db:"user_name"`          // 用户名
	BetType          int8            `db:"bet_type"`           // 投注方式
	BetTypeStr       string          `db:"bet_type_str"`       // 冗余字符串
	Selection        string          `db:"selection"`          // 选号 JSON
	Multiplier       int64           `db:"multiplier"`         // 倍数 1..99
	CombinationCount uint64          `db:"combination_count"`  // 注数（派生）
	StakePerCombo    decimal.Decimal `db:"stake_per_combo"`    // 单注金额
	TotalStake       decimal.Decimal `db:"total_stake"`        // 总投注额 = 注数×单注×倍数
	BillStatus       int8            `db:"bill_status"`        // 结算状态
	PrizeTier        int8            `db:"prize_tier"`         // 中奖奖级
	PrizeAmount      decimal.Decimal `db:"prize_amount"`       // 派彩金额
	Currency         string          `db:"currency"`           // 币种
	IdempotencyKey   string          `db:"idempotency_key"`    // 幂等键
	TraceID          string          `db:"trace_id"`           // 链路追踪ID
	BetTime          int64           `db:"bet_time"`           // 投注时间
	CreatedAt        int64           `db:"created_at"`
	UpdatedAt        int64           `db:"updated_at"`
}

// 注单结算状态枚举
const (
	BillStatusPending = int8(1)
	BillStatusSettled = int8(2)
	BillStatusVoided  = int8(3)
	BillStatusError   = int8(4) // 选号数据损坏等单注结算失败
)

// Insert 插入一条注单
func (b *Bet) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	bt := b.BetTime
	if bt == 0 {
		bt = now
	}
	sqlStr := `INSERT INTO bets (bill_no, draw_number, user_id, platform_id, platform_user_id, user_name,
		bet_type, bet_type_str, selection, multiplier, combination_count, stake_per_combo, total_stake,
		bill_status, prize_tier, prize_amount, currency, idempotency_key, trace_id, bet_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?, ?, ?, ?)`
	_, err := exec.ExecContext(ctx, sqlStr, b.BillNo, b.DrawNumber, b.UserID, b.PlatformID, b.PlatformUserID,
		b.UserName, b.BetType, b.BetTypeStr, b.Selection, b.Multiplier, b.CombinationCount,
		b.StakePerCombo, b.TotalStake, b.BillStatus, b.Currency, b.IdempotencyKey, b.TraceID, bt, now, now)
	return err
}

// PendingBet 结算所需的轻量投影
type PendingBet struct {
	BillNo     string          `db:"bill_no"`
	UserID     int64           `db:"user_id"`
	Selection  string          `db:"selection"`
	Multiplier int64           `db:"multiplier"`
	TotalStake decimal.Decimal `db:"total_stake"`
	Currency   string          `db:"currency"`
}

// ListPendingByDrawForUpdate 按期号查询待结算注单（FOR UPDATE），需在事务中调用
func ListPendingByDrawForUpdate(ctx context.Context, exec sqlx.ExtContext, drawNumber int64) ([]PendingBet, error) {
	sqlStr := `SELECT bill_no, user_id, selection, multiplier, total_stake, currency
		FROM bets WHERE draw_number = ? AND bill_status = 1 FOR UPDATE`
	var out []PendingBet
	if err := sqlx.SelectContext(ctx, exec, &out, sqlStr, drawNumber); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBetSettlement 更新注单的奖级、派彩与结算状态
func UpdateBetSettlement(ctx context.Context, exec sqlx.ExtContext, billNo string, tier int8, amount decimal.Decimal, billStatus int8) error {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE bets SET prize_tier = ?, prize_amount = ?, bill_status = ?, updated_at = ? WHERE bill_no = ?"
	_, err := exec.ExecContext(ctx, sqlStr, tier, amount, billStatus, now, billNo)
	return err
}

// BetRecord 投注记录（用于查询接口）
type BetRecord struct {
	BillNo      string          `db:"bill_no" json:"bill_no"`
	DrawNumber  int64           `db:"draw_number" json:"draw_number"`
	BetTypeStr  string          `db:"bet_type_str" json:"bet_type"`
	Selection   string          `db:"selection" json:"selection"`
	Multiplier  int64           `db:"multiplier" json:"multiplier"`
	TotalStake  decimal.Decimal `db:"total_stake" json:"total_stake"`
	BillStatus  int8            `db:"bill_status" json:"bill_status"`
	PrizeTier   int8            `db:"prize_tier" json:"prize_tier"`
	PrizeAmount decimal.Decimal `db:"prize_amount" json:"prize_amount"`
	BetTime     int64           `db:"bet_time" json:"bet_time"`
}

// ListUserBets 查询用户的投注记录，期号/结算状态/投注时间为可选过滤条件
// 条件组合较多，这里用 goqu 构建查询；startMs/endMs 为毫秒时间戳，0 表示不限
func ListUserBets(ctx context.Context, db *sqlx.DB, platformID int8, platformUserID string, drawNumber int64, billStatus int8, startMs, endMs int64, limit int) ([]BetRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // 最多返回 100 条
	}

	ds := dialect.From("bets").
		Select("bill_no", "draw_number", "bet_type_str", "selection", "multiplier",
			"total_stake", "bill_status", "prize_tier", "prize_amount", "bet_time").
		Where(g.Ex{"platform_id": platformID, "platform_user_id": platformUserID})
	if drawNumber > 0 {
		ds = ds.Where(g.Ex{"draw_number": drawNumber})
	}
	if billStatus > 0 {
		ds = ds.Where(g.Ex{"bill_status": billStatus})
	}
	if startMs > 0 {
		ds = ds.Where(g.C("bet_time").Gte(startMs))
	}
	if endMs > 0 {
		ds = ds.Where(g.C("bet_time").Lte(endMs))
	}
	ds = ds.Order(g.C("bet_time").Desc()).Limit(uint(limit))

	sqlStr, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var records []BetRecord
	if err := db.SelectContext(ctx, &records, sqlStr, args...); err != nil {
		return nil, err
	}
	return records, nil
}
