package model

import (
	"context"
	"time"

	g "github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	decimal "github.com/shopspring/decimal"

	common "lotto-server/common"
)

// Customers 对应 customers 表（平台托管用户）
// status: 1=正常 2=禁用
// 余额列为 DECIMAL(18,2)；引擎只做投注扣款与派彩入账两种余额变更
type Customers struct {
	ID             int64           `db:"id"`
	PlatformID     int8            `db:"platform_id"`
	PlatformUserID string          `db:"platform_user_id"`
	Username       string          `db:"username"`
	Balance        decimal.Decimal `db:"balance"`
	Status         int8            `db:"status"`
	CreatedAt      int64           `db:"created_at"`
	UpdatedAt      int64           `db:"updated_at"`
}

// GetUserByPlatformUser 按平台用户ID查询（不加锁）
func GetUserByPlatformUser(ctx context.Context, exec sqlx.ExtContext, platformID int8, platformUserID string) (*Customers, error) {
	sqlStr := `SELECT id, platform_id, platform_user_id, username, balance, status, created_at, updated_at
		FROM customers WHERE platform_id = ? AND platform_user_id = ?`
	var u Customers
	if err := sqlx.GetContext(ctx, exec, &u, sqlStr, platformID, platformUserID); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByPlatformUserForUpdate 按平台用户ID加锁查询，需在事务中调用
func GetUserByPlatformUserForUpdate(ctx context.Context, exec sqlx.ExtContext, platformID int8, platformUserID string) (*Customers, error) {
	sqlStr := `SELECT id, platform_id, platform_user_id, username, balance, status, created_at, updated_at
		FROM customers WHERE platform_id = ? AND platform_user_id = ? FOR UPDATE`
	var u Customers
	if err := sqlx.GetContext(ctx, exec, &u, sqlStr, platformID, platformUserID); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByIDForUpdate 按内部ID加锁查询，需在事务中调用
func GetUserByIDForUpdate(ctx context.Context, tx *sqlx.Tx, userID int64) (*Customers, error) {
	var u Customers
	if err := common.SelectOneTxCtx(ctx, tx, &u, "customers",
		common.EnumFields(Customers{}), g.Ex{"id": userID}, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// InsertCustomer 创建用户（投注时自动注册用）
func (u *Customers) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	u.CreatedAt = now
	u.UpdatedAt = now
	sqlStr := `INSERT INTO customers (platform_id, platform_user_id, username, balance, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := exec.ExecContext(ctx, sqlStr,
		u.PlatformID, u.PlatformUserID, u.Username, u.Balance, u.Status, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	u.ID = id
	return nil
}

// UpdateUserBalance 写入新的余额（两位小数，由调用方用 decimal 算好）
func UpdateUserBalance(ctx context.Context, exec sqlx.ExtContext, userID int64, newBalance decimal.Decimal) error {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE customers SET balance = ?, updated_at = ? WHERE id = ?"
	_, err := exec.ExecContext(ctx, sqlStr, newBalance, now, userID)
	return err
}
