package service

import (
	"errors"
	"strings"

	mysqlerr "github.com/go-sql-driver/mysql"
)

// 业务错误定义（controller 层据此映射 HTTP 状态与业务码）
var (
	ErrBadRequest          = errors.New("bad request")
	ErrDuplicateInFlight   = errors.New("duplicate request in flight")
	ErrDrawNotFound        = errors.New("draw not found")
	ErrInvalidStateBet     = errors.New("bet not allowed in current state")
	ErrSalesClosed         = errors.New("sales window closed")
	ErrInvalidStateDraw    = errors.New("draw numbers not allowed in current state")
	ErrInvalidStateSettle  = errors.New("settle not allowed in current state")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserDisabled        = errors.New("user disabled")
)

// isMySQLDuplicateKeyError 判断是否为 MySQL 唯一键冲突错误
// 幂等键、结算日志、下一期创建等唯一索引冲突路径统一走这里
func isMySQLDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	// MySQL 错误码 1062: Duplicate entry
	var me *mysqlerr.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "Error 1062") ||
		strings.Contains(errMsg, "Duplicate entry")
}
