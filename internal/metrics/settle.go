package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settle_runs_total",
			Help: "Total settlement runs by result",
		},
		[]string{"result"},
	)

	settleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settle_run_duration_ms",
			Help:    "Settlement run duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		},
		[]string{"result"},
	)

	settleBets = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settle_bets_per_draw",
			Help:    "Number of bets settled per draw",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	settleWinners = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settle_winners_total",
			Help: "Winning bets counted at settlement, by prize tier",
		},
		[]string{"tier"},
	)

	jackpotGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lotto_jackpot_amount",
			Help: "Current jackpot amount carried into the next draw",
		},
	)

	profitRateGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lotto_draw_profit_rate",
			Help: "Profit rate of the most recently settled draw",
		},
	)
)

// RecordSettle 记录一次结算执行
// result: "success" | "fail"
func RecordSettle(result string, betCount int, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	settleTotal.WithLabelValues(res).Inc()
	durMs := float64(time.Since(started).Milliseconds())
	settleDuration.WithLabelValues(res).Observe(durMs)
	if res == "success" {
		settleBets.Observe(float64(betCount))
	}
}

// RecordTierWinners 按奖级累计中奖注单数
func RecordTierWinners(tier string, n int64) {
	if n <= 0 {
		return
	}
	settleWinners.WithLabelValues(tier).Add(float64(n))
}

// SetJackpot 更新奖池水位
func SetJackpot(amount float64) {
	jackpotGauge.Set(amount)
}

// SetProfitRate 更新最近一期利润率（目标值监控用）
func SetProfitRate(rate float64) {
	profitRateGauge.Set(rate)
}
