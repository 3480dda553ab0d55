package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	decimal "github.com/shopspring/decimal"

	"lotto-server/common/constant"
)

// WalletLedger 对应 wallet_ledger 表（追加式账本）
// 说明：金额为非负；方向由 before_amount/after_amount 与 biz_type 推导
// biz_type 取值见 constant.BalanceChangeTypeDesc，同时冗余 biz_type_str 便于查询
type WalletLedger struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	BizType      int             `db:"biz_type"`
	BizTypeStr   string          `db:"biz_type_str"`
	Amount       decimal.Decimal `db:"amount"`
	BeforeAmount decimal.Decimal `db:"before_amount"`
	AfterAmount  decimal.Decimal `db:"after_amount"`
	Currency     string          `db:"currency"`
	BillNo       string          `db:"bill_no"`
	DrawNumber   int64           `db:"draw_number"`
	Remark       string          `db:"remark"`
	TraceID      string          `db:"trace_id"`
	CreatedAt    int64           `db:"created_at"`
}

// Insert 新增一条账本记录（biz_type 数值码与字符串双写）
func (l *WalletLedger) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	str := l.BizTypeStr
	if str == "" {
		str = constant.GetBalanceChangeTypeDesc(l.BizType)
	}
	sqlStr := `INSERT INTO wallet_ledger (user_id, biz_type, biz_type_str, amount, before_amount, after_amount,
		currency, bill_no, draw_number, remark, trace_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := exec.ExecContext(ctx, sqlStr, l.UserID, l.BizType, str, l.Amount, l.BeforeAmount, l.AfterAmount,
		l.Currency, l.BillNo, l.DrawNumber, l.Remark, l.TraceID, now)
	return err
}
