package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lotto-server/common/logger"
	"lotto-server/internal/config"
	infmysql "lotto-server/internal/infra/mysql"
	infrds "lotto-server/internal/infra/redis"
	"lotto-server/internal/worker"
	_ "lotto-server/routers"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 配置加载（文件 + 环境变量，启动即校验奖级参数）
	cfg, err := config.Load()
	if err != nil {
		logger.InitLogger("info")
		logger.Fatal("load config failed", zap.Error(err))
	}
	config.SetCurrent(cfg)

	logger.InitLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	// MySQL
	if err := infmysql.Init(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns,
		time.Duration(cfg.Database.ConnMaxLifetimeSec)*time.Second); err != nil {
		logger.Fatal("init mysql failed", zap.Error(err))
	}

	// Redis（不可达时各调用链降级容错，不阻塞启动）
	infrds.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Nacos 动态配置（未配置时为空操作）
	if err := config.StartWatch(ctx, func(oldCfg, newCfg *config.Config) {
		if oldCfg == nil || oldCfg.Server.LogLevel != newCfg.Server.LogLevel {
			logger.SetLevel(newCfg.Server.LogLevel)
		}
		logger.Info("config reloaded")
	}); err != nil {
		logger.Warn("start config watcher failed", zap.Error(err))
	}

	// 后台任务
	var wg sync.WaitGroup
	worker.StartOutboxDispatcher(ctx, &wg)
	worker.StartDrawFeedConsumer(ctx, &wg)
	worker.StartDrawScheduler(ctx, &wg)

	// Prometheus 指标端口（独立于业务端口）
	var promSrv *http.Server
	if cfg.Observability.EnableProm {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		promSrv = &http.Server{Addr: cfg.Observability.PromAddr, Handler: mux}
		go func() {
			logger.Info("prometheus metrics listening", zap.String("addr", cfg.Observability.PromAddr))
			if err := promSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("prometheus server exited", zap.Error(err))
			}
		}()
	}

	// 信号监听，优雅退出
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-ch
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
		if promSrv != nil {
			shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = promSrv.Shutdown(shCtx)
			shCancel()
		}
		// 等待后台任务收尾后退出进程（beego.Run 无外部停止句柄）
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			logger.Warn("workers shutdown timed out")
		}
		os.Exit(0)
	}()

	beego.BConfig.CopyRequestBody = true
	beego.BConfig.Listen.HTTPPort = cfg.Server.Port
	beego.BConfig.RunMode = beego.PROD

	logger.Info("lotto server starting", zap.Int("port", cfg.Server.Port))
	beego.Run()
}
