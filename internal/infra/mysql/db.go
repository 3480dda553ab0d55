package mysql

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// 全局句柄（由 Init 或 UseDB 注入），模型层统一走 SQLX()
var (
	db     *sql.DB
	sqlxDB *sqlx.DB
)

// Init 按 DSN 打开 MySQL 连接池并探活
func Init(dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) error {
	d, err := sql.Open("mysql", dsn)
	if err != nil {
		return errors.Wrap(err, "open mysql")
	}
	if maxOpen > 0 {
		d.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		d.SetMaxIdleConns(maxIdle)
	}
	if connMaxLifetime > 0 {
		d.SetConnMaxLifetime(connMaxLifetime)
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return errors.Wrap(err, "ping mysql")
	}
	db = d
	sqlxDB = sqlx.NewDb(d, "mysql")
	return nil
}

// UseDB: 注入外部初始化好的 *sql.DB（测试或复用已有连接池时）
func UseDB(d *sql.DB) {
	if d == nil {
		return
	}
	db = d
	sqlxDB = sqlx.NewDb(d, "mysql")
}

// DB 返回全局 *sql.DB 句柄
func DB() *sql.DB { return db }

// SQLX 返回包了 sqlx 的句柄，未初始化时为 nil
func SQLX() *sqlx.DB { return sqlxDB }
