package worker

import (
	"context"
	"sync"
	"time"

	"lotto-server/common/logger"
	"lotto-server/internal/service"

	"go.uber.org/zap"
)

// StartDrawScheduler 启动期次调度器：周期扫描过销售截止时间仍在销售中的期次并封盘
// 封盘动作本身幂等，多实例部署时重复触发无害
func StartDrawScheduler(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	svc := service.NewLifecycleService()
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c, cancel := context.WithTimeout(ctx, 20*time.Second)
				c, _ = logger.EnsureTraceID(c)
				n, err := svc.CloseExpiredDraws(c)
				cancel()
				if err != nil {
					logger.WarnCtx(c, "scheduler: close expired draws failed", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.InfoCtx(c, "scheduler: draws auto closed", zap.Int("count", n))
				}
			}
		}
	}()
}
