package worker

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	rmq "github.com/apache/rocketmq-clients/golang/v5"
	"github.com/apache/rocketmq-clients/golang/v5/credentials"

	"lotto-server/common/logger"
	"lotto-server/internal/config"
	infmysql "lotto-server/internal/infra/mysql"
	infmq "lotto-server/internal/infra/rocketmq"
	"lotto-server/internal/model"
	"lotto-server/internal/service"

	"go.uber.org/zap"
)

// StartOutboxDispatcher 启动 Outbox 分发器，支持通过 ctx 优雅退出
// 仅当 MQ 已启用时运行。
func StartOutboxDispatcher(ctx context.Context, wg *sync.WaitGroup) {
	if !infmq.Enabled() {
		return
	}
	wg.Add(1)
	pub := infmq.PublisherInstance()
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer wg.Done()

		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c, cancel := context.WithTimeout(ctx, 2*time.Second)
				rows, err := model.ListOutboxPending(c, infmysql.SQLX(), 100)
				cancel()
				if err != nil {
					logger.Warn("outbox: list pending failed", zap.Error(err))
					continue
				}
				for _, r := range rows {
					if err := pub.Publish(r.Topic, []byte(r.Payload)); err != nil {
						_ = model.MarkOutboxFailed(ctx, infmysql.SQLX(), r.ID, truncateErr(err))
						continue
					}
					if err := model.MarkOutboxSent(ctx, infmysql.SQLX(), r.ID); err != nil {
						logger.Warn("outbox: mark sent failed", zap.Int64("id", r.ID), zap.Error(err))
					}
				}
			}
		}
	}()
}

func truncateErr(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	if len(b) > 240 {
		return string(b[:240])
	}
	return string(b)
}

// drawFeedMessage 官方开奖消息格式（来自上游开奖数据源）
type drawFeedMessage struct {
	Event      string `json:"event"`
	DrawNumber int64  `json:"draw_number"`
	Front      []int  `json:"front"`
	Back       []int  `json:"back"`
	TraceID    string `json:"trace_id"`
}

// StartDrawFeedConsumer 启动 RocketMQ v5 SimpleConsumer，订阅官方开奖消息源：
// 消息先可靠落库至 inbox 表去重，再驱动开奖号码录入（幂等，状态机兜底重复消费）
func StartDrawFeedConsumer(ctx context.Context, wg *sync.WaitGroup) {
	// RocketMQ SDK 日志输出到控制台而非 /logs
	rmq.ResetLogger()

	cfg := config.GetCurrent()
	if cfg == nil {
		return
	}
	mqCfg := cfg.RocketMQ

	endpoint := infmq.SanitizeEndpoint(mqCfg.Endpoint)
	if endpoint == "" {
		return
	}
	group := mqCfg.ConsumerGroup
	if group == "" {
		logger.Warn("[mq] consumer not started: empty consumer_group")
		return
	}
	topic := strings.TrimSpace(strings.ReplaceAll(mqCfg.DrawFeedTopic, ".", "_"))
	if topic == "" {
		logger.Warn("[mq] consumer not started: empty draw_feed_topic")
		return
	}
	if strings.TrimSpace(mqCfg.AccessKey) == "" || strings.TrimSpace(mqCfg.SecretKey) == "" {
		logger.Warn("[mq] consumer not started: missing access/secret key")
		return
	}
	rmqCfg := &rmq.Config{Endpoint: endpoint, ConsumerGroup: group}
	rmqCfg.Credentials = &credentials.SessionCredentials{AccessKey: mqCfg.AccessKey, AccessSecret: mqCfg.SecretKey}

	subs := map[string]*rmq.FilterExpression{topic: rmq.SUB_ALL}

	awaitDuration := 5 * time.Second
	maxMessageNum := int32(16)
	invisibleDuration := 20 * time.Second

	// 带重试启动，避免容器刚启动依赖未就绪导致一次性失败
	var sc rmq.SimpleConsumer
	var err error
	for i := 0; i < 6; i++ { // 最长约 6*3s = 18s
		sc, err = rmq.NewSimpleConsumer(rmqCfg,
			rmq.WithAwaitDuration(awaitDuration),
			rmq.WithSubscriptionExpressions(subs),
		)
		if err == nil {
			if e := sc.Start(); e == nil {
				break
			} else {
				err = e
			}
		}
		logger.Warn("[mq] simple consumer start retry", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(3 * time.Second)
	}
	if err != nil {
		logger.Error("[mq] start simple consumer failed", zap.Error(err))
		return
	}
	logger.Info("[mq] draw feed consumer started", zap.String("group", group), zap.String("topic", topic))

	drawSvc := service.NewDrawService()
	wg.Add(1)

	go func() {
		defer wg.Done()

		defer sc.GracefulStop()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				mvs, err := sc.Receive(ctx, maxMessageNum, invisibleDuration)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					logger.Warn("[mq] receive error", zap.Error(err))
					continue
				}
				for _, mv := range mvs {
					id := mv.GetMessageId()
					body := mv.GetBody()
					if err := model.UpsertInbox(ctx, infmysql.SQLX(), id, mv.GetTopic(), string(body), time.Now().UnixMilli()); err != nil {
						logger.Warn("[mq] upsert inbox failed", zap.String("id", id), zap.Error(err))
						continue
					}

					var msg drawFeedMessage
					if err := json.Unmarshal(body, &msg); err == nil && msg.Event == "draw_numbers" && msg.DrawNumber > 0 {
						traceID := msg.TraceID
						if traceID == "" {
							traceID = "feed-" + id
						}
						msgCtx := logger.WithTraceID(ctx, traceID)
						if _, err := drawSvc.SubmitDrawNumbers(msgCtx, service.DrawNumbersInput{
							DrawNumber: msg.DrawNumber,
							Front:      msg.Front,
							Back:       msg.Back,
							Operator:   "feed",
							Source:     "feed",
							TraceID:    traceID,
						}); err != nil {
							// 状态机拒绝（重复消费/期次未封盘）只记录，不阻塞 Ack
							logger.WarnCtx(msgCtx, "[mq] apply draw feed failed",
								zap.Int64("draw_number", msg.DrawNumber), zap.Error(err))
						} else {
							logger.InfoCtx(msgCtx, "[mq] draw numbers applied from feed",
								zap.Int64("draw_number", msg.DrawNumber))
						}
					}

					if err := sc.Ack(ctx, mv); err != nil {
						logger.Warn("[mq] ack failed", zap.String("id", id), zap.Error(err))
					}
				}
			}
		}
	}()
}
