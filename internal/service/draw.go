package service

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"time"

	common "lotto-server/common"
	"lotto-server/common/constant"
	chelper "lotto-server/common/helper"
	"lotto-server/internal/config"
	infmysql "lotto-server/internal/infra/mysql"
	infrds "lotto-server/internal/infra/redis"
	"lotto-server/internal/infra/rocketmq"
	"lotto-server/internal/lottery"
	"lotto-server/internal/metrics"
	"lotto-server/internal/model"
	"lotto-server/internal/state"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	decimal "github.com/shopspring/decimal"
)

// DrawNumbersInput 录入开奖号码
// Auto 为 true 时忽略 Front/Back，由服务端摇号
type DrawNumbersInput struct {
	DrawNumber int64
	Front      []int
	Back       []int
	Auto       bool
	Operator   string
	Source     string // manual | auto | feed
	TraceID    string
}

type DrawNumbersOutput struct {
	DrawNumber int64  `json:"draw_number"`
	Front      []int  `json:"front"`
	Back       []int  `json:"back"`
	Status     string `json:"status"`
}

// SettleInput 结算请求
type SettleInput struct {
	DrawNumber int64
	Operator   string
	TraceID    string
}

// SettleTierView 单个奖级的对外统计
type SettleTierView struct {
	Tier    int    `json:"tier"`
	Winners int64  `json:"winners"`
	Payout  string `json:"payout"`
}

type SettleOutput struct {
	DrawNumber      int64            `json:"draw_number"`
	TotalBets       int              `json:"total_bets"`
	TotalPayout     string           `json:"total_payout"`
	TotalSales      string           `json:"total_sales"`
	ProfitRate      string           `json:"profit_rate"`
	Tiers           []SettleTierView `json:"tiers"`
	JackpotRollover bool             `json:"jackpot_rollover"`
	NextDrawNumber  int64            `json:"next_draw_number"`
	NextJackpot     string           `json:"next_jackpot"`
	Idempotent      bool             `json:"idempotent"` // true 表示该期早已结算，本次为重放
}

// DrawQueryOutput 期次查询视图
type DrawQueryOutput struct {
	DrawNumber   int64  `json:"draw_number"`
	Status       string `json:"status"`
	SalesEndTime string `json:"sales_end_time"`
	DrawTime     string `json:"draw_time"`
	WinningFront []int  `json:"winning_front,omitempty"`
	WinningBack  []int  `json:"winning_back,omitempty"`
	Jackpot      string `json:"jackpot"`
	TotalSales   string `json:"total_sales"`
}

type DrawService interface {
	// SubmitDrawNumbers 录入（或自动生成）开奖号码，期次从 closed 进入 drawn
	SubmitDrawNumbers(ctx context.Context, in DrawNumbersInput) (*DrawNumbersOutput, error)
	// Settle 对 drawn 状态的期次执行整期结算，幂等
	Settle(ctx context.Context, in SettleInput) (*SettleOutput, error)
	// GetDraw 查询期次信息（带 Redis 缓存）
	GetDraw(ctx context.Context, drawNumber int64) (*DrawQueryOutput, error)
}

type drawService struct{}

func NewDrawService() DrawService { return &drawService{} }

const (
	// 结算锁 TTL：整期结算含全量注单求值与逐单派彩，放宽到分钟级
	settleLockTTL = 2 * time.Minute
	// 开奖结果缓存 TTL
	drawResultTTL = 2 * time.Minute
	// 结算事务超时：批量派彩更新可能较慢
	settleTxTimeout = 60 * time.Second
)

// SubmitDrawNumbers 开奖号码录入主流程：
// 号码校验 → 状态机 closed→drawn → 落库 + 审计 → 结果缓存
func (s *drawService) SubmitDrawNumbers(ctx context.Context, in DrawNumbersInput) (*DrawNumbersOutput, error) {

	start := time.Now()
	result := "fail"
	source := in.Source
	if source == "" {
		source = "manual"
	}
	defer func() { metrics.RecordDraw(result, source, start) }()

	if in.DrawNumber <= 0 {
		return nil, ErrBadRequest
	}

	var front, back lottery.NumberSet
	var err error
	if in.Auto {
		// 服务端摇号（仅用于内部演练/测试环境，正式开奖以外部摇奖为准）
		if front, err = lottery.CryptoSampler(lottery.FrontZone); err != nil {
			return nil, err
		}
		if back, err = lottery.CryptoSampler(lottery.BackZone); err != nil {
			return nil, err
		}
		source = "auto"
	} else {
		front = lottery.NewNumberSet(in.Front...)
		back = lottery.NewNumberSet(in.Back...)
	}
	if err := lottery.ValidateWinning(front, back); err != nil {
		fmt.Printf("[Draw] 开奖号码非法: error=%v, draw_number=%d, trace_id=%s\n",
			err, in.DrawNumber, in.TraceID)
		return nil, err
	}

	fmt.Printf("[Draw] 开奖号码录入: draw_number=%d, front=%v, back=%v, source=%s, operator=%s, trace_id=%s\n",
		in.DrawNumber, []int(front), []int(back), source, in.Operator, in.TraceID)

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

	// 状态机校验：仅封盘后的期次可以开奖
	prevState := state.CodeToState(draw.Status)
	if prevState == state.StateSettled {
		return nil, lottery.ErrAlreadySettled
	}
	nextState, err := state.NextState(prevState, state.EvtDrawNumbers)
	if err != nil {
		fmt.Printf("[Draw] 状态不允许开奖: current_state=%s(%d), draw_number=%d, trace_id=%s\n",
			prevState, draw.Status, in.DrawNumber, in.TraceID)
		return nil, ErrInvalidStateDraw
	}

	frontJSON, _ := json.Marshal([]int(front))
	backJSON, _ := json.Marshal([]int(back))
	if err := model.SetWinningNumbers(txCtx, tx, in.DrawNumber, string(frontJSON), string(backJSON)); err != nil {
		fmt.Printf("[Draw] 写入开奖号码失败: error=%v, draw_number=%d, trace_id=%s\n",
			err, in.DrawNumber, in.TraceID)
		return nil, err
	}

	// 审计记录
	auditPayload, _ := json.Marshal(map[string]any{
		"front":  []int(front),
		"back":   []int(back),
		"source": source,
	})
	audit := &model.DrawEventAudit{
		DrawNumber: in.DrawNumber,
		EventType:  constant.DrawEventDrawNumbers,
		PrevState:  prevState,
		NextState:  nextState,
		Operator:   in.Operator,
		Source:     sourceToAudit(source),
		Payload:    string(auditPayload),
		TraceID:    in.TraceID,
	}
	if err := audit.Insert(txCtx, tx); err != nil {
		return nil, err
	}

	// 开奖事件走 outbox 对外广播
	evtPayload, _ := json.Marshal(map[string]any{
		"draw_number": in.DrawNumber,
		"front":       []int(front),
		"back":        []int(back),
		"source":      source,
	})
	if err := model.CreateOutbox(txCtx, tx, rocketmq.TopicDrawNumbers,
		fmt.Sprintf("numbers-%d", in.DrawNumber), string(evtPayload)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result = "success"
	out := &DrawNumbersOutput{
		DrawNumber: in.DrawNumber,
		Front:      front,
		Back:       back,
		Status:     nextState,
	}

	// 开奖结果缓存（降级容错）
	if r := infrds.Client(); r != nil {
		if b, e := common.JsonMarshal(out); e == nil {
			_ = r.Set(ctx, infrds.DrawResultKey(in.DrawNumber), b, drawResultTTL).Err()
		}
	}

	return out, nil
}

func sourceToAudit(source string) string {
	if source == "feed" {
		return "mq"
	}
	return "api"
}

// Settle 整期结算主流程，三层幂等防线：
//  1. 期次 is_settled 标志（加锁读取后判断）
//  2. settlement_log 唯一索引（并发穿透时兜底）
//  3. Redis 结算锁（减少无谓的数据库争用）
func (s *drawService) Settle(ctx context.Context, in SettleInput) (*SettleOutput, error) {

	start := time.Now()
	result := "fail"
	betCount := 0
	defer func() { metrics.RecordSettle(result, betCount, start) }()

	if in.DrawNumber <= 0 {
		return nil, ErrBadRequest
	}

	fmt.Printf("[Settle] 收到结算请求: draw_number=%d, operator=%s, trace_id=%s\n",
		in.DrawNumber, in.Operator, in.TraceID)

	// Redis 结算锁（降级容错：Redis 不可用时依赖 DB 两层幂等）
	if r := infrds.Client(); r != nil {
		lockValue := uuid.New().String()
		lockKey := infrds.SettleLockKey(in.DrawNumber)
		ok, _ := r.SetNX(ctx, lockKey, lockValue, settleLockTTL).Result()
		if !ok {
			fmt.Printf("[Settle] 结算进行中: draw_number=%d, trace_id=%s\n", in.DrawNumber, in.TraceID)
			return nil, ErrDuplicateInFlight
		}
		defer func() {
			script := `
				if redis.call("get", KEYS[1]) == ARGV[1] then
					return redis.call("del", KEYS[1])
				else
					return 0
				end
			`
			if _, err := r.Eval(ctx, script, []string{lockKey}, lockValue).Result(); err != nil {
				fmt.Printf("[Settle] 释放结算锁失败: draw_number=%d, error=%v, trace_id=%s\n",
					in.DrawNumber, err, in.TraceID)
			}
		}()
	}

	txCtx := ctx
	if _, has := ctx.Deadline(); !has {
		c, cancel := context.WithTimeout(ctx, settleTxTimeout)
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

	// 幂等防线一：已结算拒绝重复结算，携带首次结算的结果
	if draw.IsSettled == 1 {
		_ = tx.Rollback()
		fmt.Printf("[Settle] 该期已结算，拒绝重复结算: draw_number=%d, trace_id=%s\n",
			in.DrawNumber, in.TraceID)
		result = "already_settled"
		return s.replaySettleOutput(ctx, in.DrawNumber)
	}

	// 状态机校验：仅已开奖的期次可以结算
	prevState := state.CodeToState(draw.Status)
	nextState, err := state.NextState(prevState, state.EvtSettle)
	if err != nil {
		fmt.Printf("[Settle] 状态不允许结算: current_state=%s(%d), draw_number=%d, trace_id=%s\n",
			prevState, draw.Status, in.DrawNumber, in.TraceID)
		return nil, ErrInvalidStateSettle
	}

	// 解析开奖号码
	winFront, winBack, err := parseWinningNumbers(draw.WinningFront, draw.WinningBack)
	if err != nil {
		fmt.Printf("[Settle] 开奖号码数据异常: error=%v, draw_number=%d, trace_id=%s\n",
			err, in.DrawNumber, in.TraceID)
		return nil, err
	}

	// 幂等防线二：结算日志唯一索引
	slog := &model.SettlementLog{
		DrawNumber:   in.DrawNumber,
		WinningFront: draw.WinningFront,
		WinningBack:  draw.WinningBack,
		Operator:     in.Operator,
		TraceID:      in.TraceID,
	}
	if err := model.CreateSettlementLog(txCtx, tx, slog); err != nil {
		if isMySQLDuplicateKeyError(err) {
			_ = tx.Rollback()
			fmt.Printf("[Settle] 结算日志已存在，拒绝重复结算: draw_number=%d, trace_id=%s\n",
				in.DrawNumber, in.TraceID)
			result = "already_settled"
			return s.replaySettleOutput(ctx, in.DrawNumber)
		}
		return nil, err
	}

	// 锁定本期全部待结算注单
	pending, err := model.ListPendingByDrawForUpdate(txCtx, tx, in.DrawNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bets: %w", err)
	}
	betCount = len(pending)

	// 构造引擎输入：选号损坏的注单保留 nil Selection，由引擎标记 error 隔离
	engineBets := make([]*lottery.Bet, 0, len(pending))
	for i := range pending {
		eb := &lottery.Bet{
			BillNo:     pending[i].BillNo,
			Multiplier: pending[i].Multiplier,
			TotalStake: pending[i].TotalStake,
		}
		if sel, perr := lottery.ParseSelection([]byte(pending[i].Selection)); perr == nil {
			eb.Selection = sel
		} else {
			fmt.Printf("[Settle] 注单选号损坏: bill_no=%s, error=%v, trace_id=%s\n",
				pending[i].BillNo, perr, in.TraceID)
		}
		engineBets = append(engineBets, eb)
	}

	cfg := config.GetPrizeConfig()
	drawCtx := &lottery.DrawContext{
		DrawNumber:   in.DrawNumber,
		WinningFront: winFront,
		WinningBack:  winBack,
		Jackpot:      draw.Jackpot,
	}

	report, err := lottery.Settle(drawCtx, engineBets, cfg, runtime.GOMAXPROCS(0))
	if err != nil {
		fmt.Printf("[Settle] 结算引擎失败: error=%v, draw_number=%d, trace_id=%s\n",
			err, in.DrawNumber, in.TraceID)
		return nil, err
	}
	report.TotalSales = draw.TotalSales
	if draw.TotalSales.IsPositive() {
		report.Profit = draw.TotalSales.Sub(report.TotalPayout)
		report.ProfitRate = report.Profit.Div(draw.TotalSales).RoundBank(4)
	}

	// 逐单落结算结果
	for i := range report.Outcomes {
		oc := &report.Outcomes[i]
		billStatus := model.BillStatusSettled
		if oc.Outcome == lottery.OutcomeError {
			billStatus = model.BillStatusError
		}
		if err := model.UpdateBetSettlement(txCtx, tx, oc.BillNo, int8(oc.Tier), oc.Amount, int8(billStatus)); err != nil {
			fmt.Printf("[Settle] 更新注单结算结果失败: bill_no=%s, error=%v, trace_id=%s\n",
				oc.BillNo, err, in.TraceID)
			return nil, err
		}
	}

	// 按用户分组派彩：每个用户只加一次锁，余额按账本流水逐笔推进
	if err := s.creditWinners(txCtx, tx, in, pending, report); err != nil {
		return nil, err
	}

	// 期次置为已结算
	if err := model.MarkDrawSettled(txCtx, tx, in.DrawNumber); err != nil {
		return nil, err
	}

	// 回填结算日志统计
	tierViews := buildTierViews(report)
	tierStatsJSON, _ := json.Marshal(tierViews)
	rollover := int8(0)
	if report.JackpotRollover {
		rollover = 1
	}
	if err := model.UpdateSettlementStats(txCtx, tx, in.DrawNumber, betCount,
		report.TotalPayout, string(tierStatsJSON), rollover); err != nil {
		return nil, err
	}

	// 生成下一期（奖池按一等奖中出情况滚存或重置）
	nextJackpot := lottery.NextJackpot(draw.Jackpot, report.Tiers[1].Winners, cfg)
	nextDrawNumber := in.DrawNumber + 1
	lotCfg := config.GetCurrent().Lottery
	nowMs := time.Now().UnixMilli()
	nextDraw := &model.Draw{
		DrawNumber:   nextDrawNumber,
		SalesEndTime: nowMs + lotCfg.SalesWindowSec*1000,
		DrawTime:     nowMs + (lotCfg.SalesWindowSec+lotCfg.DrawGapSec)*1000,
		Status:       state.StateToCode(state.StateOpen),
		Jackpot:      nextJackpot,
		TraceID:      in.TraceID,
	}
	if err := nextDraw.Insert(txCtx, tx); err != nil {
		// 下一期已由别的链路创建则忽略，不影响本期结算
		if !isMySQLDuplicateKeyError(err) {
			fmt.Printf("[Settle] 创建下一期失败: next_draw=%d, error=%v, trace_id=%s\n",
				nextDrawNumber, err, in.TraceID)
			return nil, err
		}
	}

	// 整期结算完成消息（Outbox 异步投递）
	summaryPayload := map[string]any{
		"event":            "draw_settled",
		"draw_number":      in.DrawNumber,
		"total_bets":       betCount,
		"total_payout":     report.TotalPayout.String(),
		"total_sales":      draw.TotalSales.String(),
		"jackpot_rollover": report.JackpotRollover,
		"next_draw_number": nextDrawNumber,
		"next_jackpot":     nextJackpot.String(),
		"trace_id":         in.TraceID,
	}
	if err := model.CreateOutbox(txCtx, tx, rocketmq.TopicDrawSettled,
		fmt.Sprintf("settle-%d", in.DrawNumber), summaryPayload); err != nil {
		return nil, err
	}

	// 审计记录
	auditPayload, _ := json.Marshal(map[string]any{
		"total_bets":   betCount,
		"total_payout": report.TotalPayout.String(),
	})
	audit := &model.DrawEventAudit{
		DrawNumber: in.DrawNumber,
		EventType:  constant.DrawEventSettle,
		PrevState:  prevState,
		NextState:  nextState,
		Operator:   in.Operator,
		Source:     "api",
		Payload:    string(auditPayload),
		TraceID:    in.TraceID,
	}
	if err := audit.Insert(txCtx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		fmt.Printf("[Settle] 提交事务失败: draw_number=%d, error=%v, trace_id=%s\n",
			in.DrawNumber, err, in.TraceID)
		return nil, err
	}

	result = "success"
	for tier := 1; tier <= lottery.TierCount; tier++ {
		if report.Tiers[tier].Winners > 0 {
			metrics.RecordTierWinners(fmt.Sprintf("%d", tier), report.Tiers[tier].Winners)
		}
	}
	metrics.SetJackpot(nextJackpot.InexactFloat64())
	metrics.SetProfitRate(report.ProfitRate.InexactFloat64())

	out := &SettleOutput{
		DrawNumber:      in.DrawNumber,
		TotalBets:       betCount,
		TotalPayout:     chelper.TrimDecimal(report.TotalPayout),
		TotalSales:      chelper.TrimDecimal(draw.TotalSales),
		ProfitRate:      chelper.TrimDecimalRate(report.ProfitRate),
		Tiers:           tierViews,
		JackpotRollover: report.JackpotRollover,
		NextDrawNumber:  nextDrawNumber,
		NextJackpot:     chelper.TrimDecimal(nextJackpot),
	}

	fmt.Printf("[Settle] 结算完成: draw_number=%d, total_bets=%d, total_payout=%s, rollover=%v, next_jackpot=%s, trace_id=%s\n",
		in.DrawNumber, betCount, out.TotalPayout, report.JackpotRollover, out.NextJackpot, in.TraceID)

	// 结算结果缓存（降级容错）
	if r := infrds.Client(); r != nil {
		if b, e := common.JsonMarshal(out); e == nil {
			_ = r.Set(ctx, infrds.DrawResultKey(in.DrawNumber), b, drawResultTTL).Err()
		}
	}

	return out, nil
}

// userCredit 单用户的派彩汇总（分组后逐笔写账本）
type userCredit struct {
	userID int64
	items  []creditItem
}

type creditItem struct {
	billNo string
	amount decimal.Decimal
}

// creditWinners 按用户分组派彩：同一用户的多张中奖注单只加一次行锁，
// 余额以账本流水为准逐笔推进，保证 before/after 金额可对账。
func (s *drawService) creditWinners(ctx context.Context, tx *sqlx.Tx, in SettleInput,
	pending []model.PendingBet, report *lottery.SettlementReport) error {

	billUser := make(map[string]int64, len(pending))
	for i := range pending {
		billUser[pending[i].BillNo] = pending[i].UserID
	}

	grouped := make(map[int64]*userCredit)
	order := make([]int64, 0)
	for i := range report.Outcomes {
		oc := &report.Outcomes[i]
		if oc.Outcome != lottery.OutcomeWon || !oc.Amount.IsPositive() {
			continue
		}
		uid := billUser[oc.BillNo]
		uc, ok := grouped[uid]
		if !ok {
			uc = &userCredit{userID: uid}
			grouped[uid] = uc
			order = append(order, uid)
		}
		uc.items = append(uc.items, creditItem{billNo: oc.BillNo, amount: oc.Amount})
	}

	for _, uid := range order {
		uc := grouped[uid]
		user, err := model.GetUserByIDForUpdate(ctx, tx, uc.userID)
		if err != nil {
			fmt.Printf("[Settle] 锁定派彩用户失败: user_id=%d, error=%v, trace_id=%s\n",
				uc.userID, err, in.TraceID)
			return err
		}
		balance := user.Balance
		for _, item := range uc.items {
			before := balance
			balance = balance.Add(item.amount).RoundBank(2)
			ledger := &model.WalletLedger{
				UserID:       uc.userID,
				BizType:      constant.BalanceChangePayout,
				Amount:       item.amount,
				BeforeAmount: before,
				AfterAmount:  balance,
				Currency:     "CNY",
				BillNo:       item.billNo,
				DrawNumber:   in.DrawNumber,
				Remark:       "prize credit",
				TraceID:      in.TraceID,
			}
			if err := ledger.Insert(ctx, tx); err != nil {
				return err
			}
			payload := map[string]any{
				"event":       "prize_credited",
				"bill_no":     item.billNo,
				"user_id":     uc.userID,
				"draw_number": in.DrawNumber,
				"amount":      item.amount.String(),
				"trace_id":    in.TraceID,
			}
			if err := model.CreateOutbox(ctx, tx, rocketmq.TopicPrizeCredits, item.billNo, payload); err != nil {
				return err
			}
		}
		if err := model.UpdateUserBalance(ctx, tx, uc.userID, balance); err != nil {
			return err
		}
	}
	return nil
}

// replaySettleOutput 重复结算场景：还原首次结算的结果并返回已结算错误
func (s *drawService) replaySettleOutput(ctx context.Context, drawNumber int64) (*SettleOutput, error) {
	slog, err := model.GetSettlementLog(ctx, infmysql.SQLX(), drawNumber)
	if err != nil {
		slog = nil
	}
	return replaySettleResult(slog, drawNumber)
}

// replaySettleResult 由结算日志还原首次结算结果；重复结算一律拒绝，
// 结果随错误一起返回供调用方取用。日志缺失（标志位已置但日志丢失）给最小信息。
func replaySettleResult(slog *model.SettlementLog, drawNumber int64) (*SettleOutput, error) {
	if slog == nil {
		return &SettleOutput{DrawNumber: drawNumber, Idempotent: true}, lottery.ErrAlreadySettled
	}
	out := &SettleOutput{
		DrawNumber:      drawNumber,
		TotalBets:       slog.TotalBets,
		TotalPayout:     chelper.TrimDecimal(slog.TotalPayout),
		JackpotRollover: slog.Rollover == 1,
		NextDrawNumber:  drawNumber + 1,
		Idempotent:      true,
	}
	if slog.TierStats != "" {
		_ = json.Unmarshal([]byte(slog.TierStats), &out.Tiers)
	}
	return out, lottery.ErrAlreadySettled
}

// GetDraw 查询期次（Redis 缓存优先，miss 回源 DB 并回填）
func (s *drawService) GetDraw(ctx context.Context, drawNumber int64) (*DrawQueryOutput, error) {
	if drawNumber <= 0 {
		return nil, ErrBadRequest
	}

	if r := infrds.Client(); r != nil {
		if bs, _ := r.Get(ctx, infrds.DrawInfoKey(drawNumber)).Bytes(); len(bs) > 0 {
			var out DrawQueryOutput
			if common.JsonUnmarshal(bs, &out) == nil {
				return &out, nil
			}
		}
	}

	draw, err := model.GetDrawByNumber(ctx, infmysql.SQLX(), drawNumber)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return nil, ErrDrawNotFound
		}
		return nil, err
	}

	out := &DrawQueryOutput{
		DrawNumber:   draw.DrawNumber,
		Status:       state.CodeToState(draw.Status),
		SalesEndTime: chelper.FormatMilliToYMDHMS(draw.SalesEndTime),
		DrawTime:     chelper.FormatMilliToYMDHMS(draw.DrawTime),
		Jackpot:      chelper.TrimDecimal(draw.Jackpot),
		TotalSales:   chelper.TrimDecimal(draw.TotalSales),
	}
	if draw.WinningFront != "" {
		_ = json.Unmarshal([]byte(draw.WinningFront), &out.WinningFront)
	}
	if draw.WinningBack != "" {
		_ = json.Unmarshal([]byte(draw.WinningBack), &out.WinningBack)
	}

	if r := infrds.Client(); r != nil {
		if b, e := common.JsonMarshal(out); e == nil {
			_ = r.Set(ctx, infrds.DrawInfoKey(drawNumber), b, 30*time.Second).Err()
		}
	}
	return out, nil
}

// parseWinningNumbers 解析持久化的开奖号码 JSON 并校验
func parseWinningNumbers(frontJSON, backJSON string) (lottery.NumberSet, lottery.NumberSet, error) {
	var fs, bs []int
	if err := json.Unmarshal([]byte(frontJSON), &fs); err != nil {
		return nil, nil, fmt.Errorf("%w: front %v", lottery.ErrInvalidWinningNumber, err)
	}
	if err := json.Unmarshal([]byte(backJSON), &bs); err != nil {
		return nil, nil, fmt.Errorf("%w: back %v", lottery.ErrInvalidWinningNumber, err)
	}
	front := lottery.NewNumberSet(fs...)
	back := lottery.NewNumberSet(bs...)
	if err := lottery.ValidateWinning(front, back); err != nil {
		return nil, nil, err
	}
	return front, back, nil
}

// buildTierViews 将引擎报表中的奖级统计转换为对外视图（只含有中出的奖级）
func buildTierViews(report *lottery.SettlementReport) []SettleTierView {
	views := make([]SettleTierView, 0, lottery.TierCount)
	for tier := 1; tier <= lottery.TierCount; tier++ {
		st := report.Tiers[tier]
		if st.Winners == 0 {
			continue
		}
		views = append(views, SettleTierView{
			Tier:    tier,
			Winners: st.Winners,
			Payout:  chelper.TrimDecimal(st.Payout),
		})
	}
	return views
}
