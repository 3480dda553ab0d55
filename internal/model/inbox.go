package model

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Inbox 对应 inbox 表
// 官方开奖号码源等外部 MQ 消息的可靠落库（message_id 唯一去重）
type Inbox struct {
	ID         int64  `db:"id"`
	MessageID  string `db:"message_id"`
	Topic      string `db:"topic"`
	Payload    string `db:"payload"`
	ReceivedAt int64  `db:"received_at"`
}

// UpsertInbox 按 message_id 去重落库（重复消费时只刷新接收时间）
func UpsertInbox(ctx context.Context, exec sqlx.ExtContext, messageID, topic, payload string, receivedAt int64) error {
	sqlStr := `INSERT INTO inbox (message_id, topic, payload, received_at) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE received_at = VALUES(received_at)`
	_, err := exec.ExecContext(ctx, sqlStr, messageID, topic, payload, receivedAt)
	return err
}
