package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	decimal "github.com/shopspring/decimal"
)

// SettlementLog 结算日志表（防止重复结算）
// game：每期一行，draw_number 上有唯一索引；插入冲突即说明该期已结算过
type SettlementLog struct {
	ID           int64           `db:"id"`
	DrawNumber   int64           `db:"draw_number"`   // 期号（唯一索引）
	WinningFront string          `db:"winning_front"` // 开奖前区号码 JSON
	WinningBack  string          `db:"winning_back"`  // 开奖后区号码 JSON
	TotalBets    int             `db:"total_bets"`    // 结算注单总数
	TotalPayout  decimal.Decimal `db:"total_payout"`  // 总派彩金额
	TierStats    string          `db:"tier_stats"`    // 各奖级统计 JSON
	Rollover     int8            `db:"rollover"`      // 1=一等奖轮空奖池滚存
	Operator     string          `db:"operator"`      // 操作人
	TraceID      string          `db:"trace_id"`
	CreatedAt    int64           `db:"created_at"`
}

// CreateSettlementLog 创建结算日志（利用唯一索引防止重复结算）
// 如果返回唯一键冲突错误，说明该期已经结算过
func CreateSettlementLog(ctx context.Context, exec sqlx.ExtContext, log *SettlementLog) error {
	now := time.Now().UnixMilli()
	log.CreatedAt = now

	sqlStr := `INSERT INTO settlement_log (draw_number, winning_front, winning_back, total_bets,
		total_payout, tier_stats, rollover, operator, trace_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := exec.ExecContext(ctx, sqlStr, log.DrawNumber, log.WinningFront, log.WinningBack,
		log.TotalBets, log.TotalPayout, log.TierStats, log.Rollover, log.Operator, log.TraceID, log.CreatedAt)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	log.ID = id
	return nil
}

// UpdateSettlementStats 结算完成后回填统计信息
func UpdateSettlementStats(ctx context.Context, exec sqlx.ExtContext, drawNumber int64, totalBets int, totalPayout decimal.Decimal, tierStatsJSON string, rollover int8) error {
	sqlStr := `UPDATE settlement_log SET total_bets = ?, total_payout = ?, tier_stats = ?, rollover = ?
		WHERE draw_number = ?`
	_, err := exec.ExecContext(ctx, sqlStr, totalBets, totalPayout, tierStatsJSON, rollover, drawNumber)
	return err
}

// GetSettlementLog 查询结算日志
func GetSettlementLog(ctx context.Context, db *sqlx.DB, drawNumber int64) (*SettlementLog, error) {
	sqlStr := `SELECT id, draw_number, winning_front, winning_back, total_bets, total_payout,
		tier_stats, rollover, operator, trace_id, created_at
		FROM settlement_log WHERE draw_number = ? LIMIT 1`
	var log SettlementLog
	if err := db.GetContext(ctx, &log, sqlStr, drawNumber); err != nil {
		return nil, err
	}
	return &log, nil
}
