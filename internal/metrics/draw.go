package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	drawTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draw_requests_total",
			Help: "Total draw number submissions by result and source",
		},
		[]string{"result", "source"},
	)

	drawDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draw_request_duration_ms",
			Help:    "Draw number processing duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result", "source"},
	)

	lifecycleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draw_event_total",
			Help: "Total draw lifecycle events handled by result and event_type",
		},
		[]string{"result", "event_type"},
	)

	lifecycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draw_event_duration_ms",
			Help:    "Draw lifecycle event handling duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result", "event_type"},
	)
)

// RecordDraw 记录开奖号码录入的业务指标
// result: "success" | "fail"
// source: "manual" | "auto" | "feed"
func RecordDraw(result, source string, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	src := strings.ToLower(strings.TrimSpace(source))
	if src == "" {
		src = "unknown"
	}
	drawTotal.WithLabelValues(res, src).Inc()
	durMs := float64(time.Since(started).Milliseconds())
	drawDuration.WithLabelValues(res, src).Observe(durMs)
}

// RecordDrawEvent 记录期次生命周期事件的业务指标
// result: "success" | "fail"
// eventType: 事件类型（小写：sales_close/draw_numbers/settle）
func RecordDrawEvent(result, eventType string, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	et := strings.ToLower(strings.TrimSpace(eventType))
	if et == "" {
		et = "unknown"
	}
	lifecycleTotal.WithLabelValues(res, et).Inc()
	durMs := float64(time.Since(started).Milliseconds())
	lifecycleDuration.WithLabelValues(res, et).Observe(durMs)
}
