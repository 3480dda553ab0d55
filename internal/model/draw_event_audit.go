package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	common "lotto-server/common"
)

// DrawEventAudit 对应 draw_event_audit 表
// 记录期次状态流转与结算操作，供对账与审计回放
// event_type: 1=sales_close 2=draw_numbers 3=settle
type DrawEventAudit struct {
	ID         int64  `db:"id" goqu:"skipinsert"`
	DrawNumber int64  `db:"draw_number"`
	EventType  int8   `db:"event_type"`
	PrevState  string `db:"prev_state"`
	NextState  string `db:"next_state"`
	Operator   string `db:"operator"` // system | admin
	Source     string `db:"source"`   // api | mq | scheduler
	Payload    string `db:"payload"`  // 事件上下文 JSON
	TraceID    string `db:"trace_id"`
	CreatedAt  int64  `db:"created_at"`
}

// Insert 写入一条审计记录
func (a *DrawEventAudit) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	a.CreatedAt = time.Now().UnixMilli()
	_, err := common.InsertCtx(ctx, exec, "draw_event_audit", a)
	return err
}
