package logger

import (
	"context"

	"github.com/google/uuid"
)

type traceKey struct{}

// WithTraceID 将 traceId 注入到 context 中
func WithTraceID(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceId)
}

// GetTraceID 从 context 中获取 traceId，取不到返回空串
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(traceKey{}).(string)
	return v
}

// EnsureTraceID 取 context 中的 traceId，没有则补一个新的并注入
// 消费侧链路（MQ、定时任务）的消息未必带 trace_id，用这里兜底
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if id := GetTraceID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithTraceID(ctx, id), id
}
