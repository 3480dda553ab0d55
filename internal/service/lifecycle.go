package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lotto-server/common/constant"
	chelper "lotto-server/common/helper"
	"lotto-server/internal/config"
	infmysql "lotto-server/internal/infra/mysql"
	infrds "lotto-server/internal/infra/redis"
	"lotto-server/internal/metrics"
	"lotto-server/internal/model"
	"lotto-server/internal/state"

)

// DrawEventInput 期次生命周期事件
type DrawEventInput struct {
	DrawNumber int64
	EventType  int8 // 1=封盘 2=开奖 3=结算
	Operator   string
	Source     string // api | scheduler
	TraceID    string
}

type DrawEventOutput struct {
	DrawNumber int64  `json:"draw_number"`
	PrevState  string `json:"prev_state"`
	NextState  string `json:"next_state"`
}

// CreateDrawInput 创建首期（系统初始化引导用，后续期次由结算流程自动生成）
type CreateDrawInput struct {
	DrawNumber int64
	Operator   string
	TraceID    string
}

type CreateDrawOutput struct {
	DrawNumber   int64  `json:"draw_number"`
	SalesEndTime string `json:"sales_end_time"`
	DrawTime     string `json:"draw_time"`
	Jackpot      string `json:"jackpot"`
	Status       string `json:"status"`
}

type LifecycleService interface {
	// HandleEvent 推进期次状态机。只受理封盘事件；开奖与结算有各自的
	// 专用入口（需要携带号码/触发整期计算），在此拒绝以免绕过。
	HandleEvent(ctx context.Context, in DrawEventInput) (*DrawEventOutput, error)
	// CreateDraw 创建首期
	CreateDraw(ctx context.Context, in CreateDrawInput) (*CreateDrawOutput, error)
	// CloseExpiredDraws 扫描过销售截止时间仍处于 open 的期次并封盘（调度器用）
	CloseExpiredDraws(ctx context.Context) (int, error)
}

type lifecycleService struct{}

func NewLifecycleService() LifecycleService { return &lifecycleService{} }

// 事件类型到状态机事件的映射
func eventTypeToEvt(eventType int8) (string, bool) {
	switch eventType {
	case constant.DrawEventSalesClose:
		return state.EvtSalesClose, true
	case constant.DrawEventDrawNumbers:
		return state.EvtDrawNumbers, true
	case constant.DrawEventSettle:
		return state.EvtSettle, true
	}
	return "", false
}

func (s *lifecycleService) HandleEvent(ctx context.Context, in DrawEventInput) (*DrawEventOutput, error) {

	start := time.Now()
	result := "fail"
	evt, ok := eventTypeToEvt(in.EventType)
	if !ok {
		return nil, ErrBadRequest
	}
	defer func() { metrics.RecordDrawEvent(result, evt, start) }()

	if in.DrawNumber <= 0 {
		return nil, ErrBadRequest
	}

	// 开奖与结算不允许走通用事件入口
	if in.EventType != constant.DrawEventSalesClose {
		fmt.Printf("[Lifecycle] 事件需走专用入口: event=%s, draw_number=%d, trace_id=%s\n",
			evt, in.DrawNumber, in.TraceID)
		return nil, fmt.Errorf("%w: event %q has a dedicated endpoint", ErrBadRequest, evt)
	}

	fmt.Printf("[Lifecycle] 收到封盘事件: draw_number=%d, operator=%s, source=%s, trace_id=%s\n",
		in.DrawNumber, in.Operator, in.Source, in.TraceID)

	txCtx := ctx
	if _, has := ctx.Deadline(); !has {
		c, cancel := context.WithTimeout(ctx, defaultTxTimeout)
		txCtx = c
		defer cancel()
	}
	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	draw, err := model.GetDrawForUpdate(txCtx, tx, in.DrawNumber)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return nil, ErrDrawNotFound
		}
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}

	// 重复封盘与越状态封盘一律拒绝，状态机是唯一裁判
	prevState := state.CodeToState(draw.Status)
	nextState, err := state.NextState(prevState, evt)
	if err != nil {
		fmt.Printf("[Lifecycle] 非法状态转换: current_state=%s, event=%s, draw_number=%d, trace_id=%s\n",
			prevState, evt, in.DrawNumber, in.TraceID)
		return nil, ErrInvalidStateDraw
	}

	if err := model.UpdateDrawState(txCtx, tx, in.DrawNumber, state.StateToCode(nextState)); err != nil {
		return nil, err
	}

	source := in.Source
	if source == "" {
		source = "api"
	}
	audit := &model.DrawEventAudit{
		DrawNumber: in.DrawNumber,
		EventType:  in.EventType,
		PrevState:  prevState,
		NextState:  nextState,
		Operator:   in.Operator,
		Source:     source,
		Payload:    "{}",
		TraceID:    in.TraceID,
	}
	if err := audit.Insert(txCtx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result = "success"
	fmt.Printf("[Lifecycle] 封盘完成: draw_number=%d, %s -> %s, trace_id=%s\n",
		in.DrawNumber, prevState, nextState, in.TraceID)

	// 期次信息缓存失效
	if r := infrds.Client(); r != nil {
		_ = r.Del(ctx, infrds.DrawInfoKey(in.DrawNumber)).Err()
	}

	return &DrawEventOutput{DrawNumber: in.DrawNumber, PrevState: prevState, NextState: nextState}, nil
}

func (s *lifecycleService) CreateDraw(ctx context.Context, in CreateDrawInput) (*CreateDrawOutput, error) {
	if in.DrawNumber <= 0 {
		return nil, ErrBadRequest
	}

	cfg := config.GetPrizeConfig()
	lotCfg := config.GetCurrent().Lottery
	nowMs := time.Now().UnixMilli()

	draw := &model.Draw{
		DrawNumber:   in.DrawNumber,
		SalesEndTime: nowMs + lotCfg.SalesWindowSec*1000,
		DrawTime:     nowMs + (lotCfg.SalesWindowSec+lotCfg.DrawGapSec)*1000,
		Status:       state.StateToCode(state.StateOpen),
		Jackpot:      cfg.BaseJackpot,
		TraceID:      in.TraceID,
	}

	txCtx := ctx
	if _, has := ctx.Deadline(); !has {
		c, cancel := context.WithTimeout(ctx, defaultTxTimeout)
		txCtx = c
		defer cancel()
	}
	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := draw.Insert(txCtx, tx); err != nil {
		if isMySQLDuplicateKeyError(err) {
			fmt.Printf("[Lifecycle] 期次已存在: draw_number=%d, trace_id=%s\n", in.DrawNumber, in.TraceID)
			return nil, fmt.Errorf("%w: draw %d already exists", ErrBadRequest, in.DrawNumber)
		}
		return nil, err
	}

	auditPayload, _ := json.Marshal(map[string]any{"jackpot": cfg.BaseJackpot.String()})
	audit := &model.DrawEventAudit{
		DrawNumber: in.DrawNumber,
		EventType:  constant.DrawEventSalesClose, // 创建无独立事件类型，复用审计表记录
		PrevState:  "",
		NextState:  state.StateOpen,
		Operator:   in.Operator,
		Source:     "api",
		Payload:    string(auditPayload),
		TraceID:    in.TraceID,
	}
	if err := audit.Insert(txCtx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	fmt.Printf("[Lifecycle] 创建期次成功: draw_number=%d, jackpot=%s, trace_id=%s\n",
		in.DrawNumber, cfg.BaseJackpot.String(), in.TraceID)

	return &CreateDrawOutput{
		DrawNumber:   draw.DrawNumber,
		SalesEndTime: chelper.FormatMilliToYMDHMS(draw.SalesEndTime),
		DrawTime:     chelper.FormatMilliToYMDHMS(draw.DrawTime),
		Jackpot:      chelper.TrimDecimal(cfg.BaseJackpot),
		Status:       state.StateOpen,
	}, nil
}

// CloseExpiredDraws 由调度器周期调用，将到期未封盘的期次推进到 closed
func (s *lifecycleService) CloseExpiredDraws(ctx context.Context) (int, error) {
	nums, err := model.ListExpiredOpenDraws(ctx, infmysql.SQLX(), time.Now().UnixMilli(), 50)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, n := range nums {
		_, err := s.HandleEvent(ctx, DrawEventInput{
			DrawNumber: n,
			EventType:  constant.DrawEventSalesClose,
			Operator:   "system",
			Source:     "scheduler",
			TraceID:    fmt.Sprintf("autoclose-%d-%d", n, time.Now().Unix()),
		})
		if err != nil {
			fmt.Printf("[Lifecycle] 自动封盘失败: draw_number=%d, error=%v\n", n, err)
			continue
		}
		closed++
	}
	return closed, nil
}
