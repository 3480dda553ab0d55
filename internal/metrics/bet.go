package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	betTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bet_requests_total",
			Help: "Total bet requests by result and bet_type",
		},
		[]string{"result", "bet_type"},
	)

	betDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bet_request_duration_ms",
			Help:    "Bet request duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result", "bet_type"},
	)

	betCombinations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bet_combination_count",
			Help:    "Expanded combination count per accepted ticket",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
)

// RecordBet 记录投注请求的业务指标
// result: "success" | "fail"；betType 规范化为小写（single/complex/system）
func RecordBet(result, betType string, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	bt := strings.ToLower(betType)
	betTotal.WithLabelValues(res, bt).Inc()
	durMs := float64(time.Since(started).Milliseconds())
	betDuration.WithLabelValues(res, bt).Observe(durMs)
}

// RecordBetCombinations 记录展开注数分布，监控复式/胆拖票大小
func RecordBetCombinations(n uint64) {
	betCombinations.Observe(float64(n))
}
