package model

import (
	"context"
	"time"

	g "github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	decimal "github.com/shopspring/decimal"

	common "lotto-server/common"
)

// Draw 对应 draws 表（期次）
// 说明：时间统一为毫秒时间戳；金额列为 DECIMAL(18,2)，扫描进 decimal.Decimal
// status: 1=open 2=closed 3=drawn 4=settled
// 不变式：winning_front/winning_back 仅在 status ∈ {drawn, settled} 时非空；
// is_settled 配合 settlement_log 唯一索引保证一期至多结算一次
type Draw struct {
	ID           int64           `db:"id"`
	DrawNumber   int64           `db:"draw_number"`    // 期号(唯一、单调递增)
	SalesEndTime int64           `db:"sales_end_time"` // 销售截止时间
	DrawTime     int64           `db:"draw_time"`      // 开奖时间
	Status       int8            `db:"status"`
	WinningFront string          `db:"winning_front"` // 开奖前区号码 JSON，如 [1,5,17,28,35]
	WinningBack  string          `db:"winning_back"`  // 开奖后区号码 JSON
	Jackpot      decimal.Decimal `db:"jackpot"`       // 本期奖池
	TotalSales   decimal.Decimal `db:"total_sales"`   // 本期累计销售额
	IsSettled    int8            `db:"is_settled"`    // 0=未结算 1=已结算
	TraceID      string          `db:"trace_id"`
	CreatedAt    int64           `db:"created_at"`
	UpdatedAt    int64           `db:"updated_at"`
}

// Insert 创建新期次（status=open）
func (d *Draw) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	sqlStr := `INSERT INTO draws (draw_number, sales_end_time, draw_time, status, winning_front, winning_back,
		jackpot, total_sales, is_settled, trace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, '', '', ?, 0, 0, ?, ?, ?)`
	res, err := exec.ExecContext(ctx, sqlStr,
		d.DrawNumber, d.SalesEndTime, d.DrawTime, d.Status, d.Jackpot, d.TraceID, now, now)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	d.ID = id
	return nil
}

// GetDrawByNumber 按期号查询（不加锁）
func GetDrawByNumber(ctx context.Context, exec sqlx.ExtContext, drawNumber int64) (*Draw, error) {
	sqlStr := `SELECT id, draw_number, sales_end_time, draw_time, status, winning_front, winning_back,
		jackpot, total_sales, is_settled, trace_id, created_at, updated_at
		FROM draws WHERE draw_number = ?`
	var d Draw
	if err := sqlx.GetContext(ctx, exec, &d, sqlStr, drawNumber); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDrawForUpdate 按期号加锁查询，需在事务中调用
func GetDrawForUpdate(ctx context.Context, exec sqlx.ExtContext, drawNumber int64) (*Draw, error) {
	sqlStr := `SELECT id, draw_number, sales_end_time, draw_time, status, winning_front, winning_back,
		jackpot, total_sales, is_settled, trace_id, created_at, updated_at
		FROM draws WHERE draw_number = ? FOR UPDATE`
	var d Draw
	if err := sqlx.GetContext(ctx, exec, &d, sqlStr, drawNumber); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetLatestDrawNumber 返回当前最大期号（用于生成下一期）
func GetLatestDrawNumber(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
	var n int64
	if err := sqlx.GetContext(ctx, exec, &n, "SELECT COALESCE(MAX(draw_number), 0) FROM draws"); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateDrawState 更新期次状态
func UpdateDrawState(ctx context.Context, exec sqlx.ExtContext, drawNumber int64, newStatus int8) error {
	_, err := common.UpdateCtx(ctx, exec, "draws",
		g.Record{"status": newStatus, "updated_at": time.Now().UnixMilli()},
		g.Ex{"draw_number": drawNumber})
	return err
}

// SetWinningNumbers 固定开奖号码并将状态置为 drawn(3)
func SetWinningNumbers(ctx context.Context, exec sqlx.ExtContext, drawNumber int64, frontJSON, backJSON string) error {
	now := time.Now().UnixMilli()
	sqlStr := `UPDATE draws SET winning_front = ?, winning_back = ?, status = 3, updated_at = ?
		WHERE draw_number = ?`
	_, err := exec.ExecContext(ctx, sqlStr, frontJSON, backJSON, now, drawNumber)
	return err
}

// MarkDrawSettled 标记期次已结算（status=settled(4)，is_settled=1）
func MarkDrawSettled(ctx context.Context, exec sqlx.ExtContext, drawNumber int64) error {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE draws SET status = 4, is_settled = 1, updated_at = ? WHERE draw_number = ?"
	_, err := exec.ExecContext(ctx, sqlStr, now, drawNumber)
	return err
}

// AddDrawSales 投注成功后累加销售额
func AddDrawSales(ctx context.Context, exec sqlx.ExtContext, drawNumber int64, amount decimal.Decimal) error {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE draws SET total_sales = total_sales + ?, updated_at = ? WHERE draw_number = ?"
	_, err := exec.ExecContext(ctx, sqlStr, amount, now, drawNumber)
	return err
}

// ListExpiredOpenDraws 查询已过销售截止时间但仍在销售中的期号（调度器自动封盘用）
func ListExpiredOpenDraws(ctx context.Context, exec sqlx.ExtContext, nowMs int64, limit int) ([]int64, error) {
	sqlStr := `SELECT draw_number FROM draws WHERE status = 1 AND sales_end_time > 0 AND sales_end_time <= ?
		ORDER BY draw_number LIMIT ?`
	var nums []int64
	if err := sqlx.SelectContext(ctx, exec, &nums, sqlStr, nowMs, limit); err != nil {
		return nil, err
	}
	return nums, nil
}

// DrawSnapshot 提供 GET 接口所需的最小字段集合
type DrawSnapshot struct {
	DrawNumber   int64           `db:"draw_number" json:"draw_number"`
	SalesEndTime int64           `db:"sales_end_time" json:"sales_end_time"`
	DrawTime     int64           `db:"draw_time" json:"draw_time"`
	Status       int8            `db:"status" json:"status"`
	WinningFront string          `db:"winning_front" json:"winning_front"`
	WinningBack  string          `db:"winning_back" json:"winning_back"`
	Jackpot      decimal.Decimal `db:"jackpot" json:"jackpot"`
	TotalSales   decimal.Decimal `db:"total_sales" json:"total_sales"`
}

// GetDrawSnapshot 按期号查询快照（无锁读取）
func GetDrawSnapshot(ctx context.Context, exec sqlx.ExtContext, drawNumber int64) (*DrawSnapshot, error) {
	sqlStr := `SELECT draw_number, sales_end_time, draw_time, status, winning_front, winning_back,
		jackpot, total_sales
		FROM draws WHERE draw_number = ?`
	var s DrawSnapshot
	if err := sqlx.GetContext(ctx, exec, &s, sqlStr, drawNumber); err != nil {
		return nil, err
	}
	return &s, nil
}
