package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
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

// BetInput 输入参数
// DrawNumber 为 0 时投当前最新期次；Selection 为选号原始 JSON
type BetInput struct {
	DrawNumber     int64
	PlatformID     int8   // 平台ID
	PlatformUserID string // 平台用户ID
	UserName       string // 平台用户名（可选）
	Selection      []byte
	Multiplier     int64
	IdempotencyKey string
	TraceID        string
}

type BetOutput struct {
	BillNo           string `json:"bill_no"`
	DrawNumber       int64  `json:"draw_number"`
	CombinationCount uint64 `json:"combination_count"`
	TotalStake       string `json:"total_stake"`
	RemainAmount     string `json:"remain_amount"` // 剩余金额
}

type BetService interface {
	PlaceBet(ctx context.Context, in BetInput) (*BetOutput, error)
}

type betService struct{}

func NewBetService() BetService { return &betService{} }

const (
	// Redis 进行中锁 TTL：吸收瞬时重复请求，应小于正常投注处理耗时上限
	idemLockTTL = 45 * time.Second
	// 结果缓存 TTL：用于重复请求直接返回第一次成功结果；应覆盖到大多数“短时重试”窗口
	idemResultTTL = 1 * time.Minute
)

// 默认事务超时时间，防止长事务占用资源影响并发（若上游已有 deadline，则沿用上游）
const defaultTxTimeout = 3 * time.Second

// PlaceBet 处理投注主流程：
// 选号校验 → 注数展开与上限检查 → 幂等保护 → 扣款/账本/注单落库（同事务）→ Outbox
func (s *betService) PlaceBet(ctx context.Context, in BetInput) (*BetOutput, error) {

	start := time.Now()
	result := "fail"
	btLabel := "unknown"
	defer func() { metrics.RecordBet(result, btLabel, start) }()

	if len(in.Selection) == 0 || in.IdempotencyKey == "" || in.PlatformUserID == "" {
		return nil, ErrBadRequest
	}

	// 选号解析与玩法校验（单式/复式/胆拖）
	sel, err := lottery.ParseSelection(in.Selection)
	if err != nil {
		fmt.Printf("[Bet] 选号非法: error=%v, trace_id=%s\n", err, in.TraceID)
		return nil, err
	}
	btLabel = sel.Type.String()

	cfg := config.GetPrizeConfig()

	// 倍数校验
	if in.Multiplier <= 0 {
		in.Multiplier = 1
	}
	if in.Multiplier > cfg.MaxMultiplier {
		fmt.Printf("[Bet] 倍数超限: multiplier=%d, max=%d, trace_id=%s\n",
			in.Multiplier, cfg.MaxMultiplier, in.TraceID)
		return nil, fmt.Errorf("%w: multiplier exceeds %d", lottery.ErrInvalidSelection, cfg.MaxMultiplier)
	}

	// 注数展开与上限保护
	combos := sel.Combinations()
	if combos == 0 {
		return nil, lottery.ErrInvalidSelection
	}
	if combos > cfg.MaxCombinations {
		fmt.Printf("[Bet] 注数超过上限: combos=%d, max=%d, trace_id=%s\n",
			combos, cfg.MaxCombinations, in.TraceID)
		return nil, lottery.ErrCombinationOverflow
	}
	metrics.RecordBetCombinations(combos)

	// 总投注额 = 注数 × 单注价格 × 倍数
	totalStake := cfg.UnitPrice.
		Mul(decimal.NewFromInt(int64(combos))).
		Mul(decimal.NewFromInt(in.Multiplier)).
		RoundBank(2)

	fmt.Printf("[Bet] 收到投注请求: draw_number=%d, platform_id=%d, platform_user_id=%s, bet_type=%s, combos=%d, multiplier=%d, total_stake=%s, idem_key=%s, trace_id=%s\n",
		in.DrawNumber, in.PlatformID, in.PlatformUserID, btLabel, combos, in.Multiplier,
		totalStake.String(), in.IdempotencyKey, in.TraceID)

	// Redis 快路径：若已有结果缓存，直接返回
	if r := infrds.Client(); r != nil {
		if bs, _ := r.Get(ctx, infrds.IdemResultKey(in.IdempotencyKey)).Bytes(); len(bs) > 0 {
			var out BetOutput
			if common.JsonUnmarshal(bs, &out) == nil {
				fmt.Printf("[Bet] Redis 缓存命中: idem_key=%s, bill_no=%s, trace_id=%s\n",
					in.IdempotencyKey, out.BillNo, in.TraceID)
				result = "success"
				return &out, nil
			}
		}

		// 生成唯一锁值，防止误删其他请求的锁
		lockValue := uuid.New().String()
		lockKey := infrds.IdemLockKey(in.IdempotencyKey)

		// 进行中锁，吸收瞬时重复
		ok, _ := r.SetNX(ctx, lockKey, lockValue, idemLockTTL).Result()
		if !ok {
			// 检查是否有缓存的结果
			if bs, _ := r.Get(ctx, infrds.IdemResultKey(in.IdempotencyKey)).Bytes(); len(bs) > 0 {
				var out BetOutput
				if common.JsonUnmarshal(bs, &out) == nil {
					result = "success"
					return &out, nil
				}
			}
			fmt.Printf("[Bet] 重复请求进行中: idem_key=%s, trace_id=%s\n",
				in.IdempotencyKey, in.TraceID)
			return nil, ErrDuplicateInFlight
		}

		// 使用 Lua 脚本原子释放锁（仅当锁值匹配时删除）
		defer func() {
			script := `
				if redis.call("get", KEYS[1]) == ARGV[1] then
					return redis.call("del", KEYS[1])
				else
					return 0
				end
			`
			if _, err := r.Eval(ctx, script, []string{lockKey}, lockValue).Result(); err != nil {
				fmt.Printf("[Bet] 释放分布式锁失败: idem_key=%s, error=%v, trace_id=%s\n",
					in.IdempotencyKey, err, in.TraceID)
			}
		}()
	}

	// 开启 MySQL 事务（带默认超时，防止长事务影响并发）。
	// 若上游 ctx 已设置 deadline，则沿用；否则使用默认 defaultTxTimeout。
	txCtx := ctx
	if _, has := ctx.Deadline(); !has {
		c, cancel := context.WithTimeout(ctx, defaultTxTimeout)
		txCtx = c
		defer cancel()
	}
	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		fmt.Printf("[Bet] 开启事务失败: error=%v, trace_id=%s\n", err, in.TraceID)
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// 获取或创建用户（自动注册）
	user, err := getOrCreateUserInTx(txCtx, tx, in.PlatformID, in.PlatformUserID, in.UserName)
	if err != nil {
		fmt.Printf("[Bet] 获取或创建用户失败: error=%v, platform_id=%d, platform_user_id=%s, trace_id=%s\n",
			err, in.PlatformID, in.PlatformUserID, in.TraceID)
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	// 期号解析：0 表示当前最新期次
	drawNumber := in.DrawNumber
	if drawNumber == 0 {
		n, err := model.GetLatestDrawNumber(txCtx, tx)
		if err != nil || n == 0 {
			return nil, ErrDrawNotFound
		}
		drawNumber = n
	}

	// 获取期次并锁定
	draw, err := model.GetDrawForUpdate(txCtx, tx, drawNumber)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return nil, ErrDrawNotFound
		}
		fmt.Printf("[Bet] 查询期次失败: error=%v, draw_number=%d, trace_id=%s\n",
			err, drawNumber, in.TraceID)
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}

	// 校验期次状态：仅在 open 状态允许投注
	currentState := state.CodeToState(draw.Status)
	if currentState != state.StateOpen {
		fmt.Printf("[Bet] 期次状态不允许投注: current_state=%s(%d), draw_number=%d, trace_id=%s\n",
			currentState, draw.Status, drawNumber, in.TraceID)
		return nil, ErrInvalidStateBet
	}

	// 验证销售窗口（状态机未及时封盘时的兜底）
	now := time.Now().UnixMilli()
	if draw.SalesEndTime > 0 && now > draw.SalesEndTime {
		fmt.Printf("[Bet] 销售已截止: now=%d, sales_end=%d, draw_number=%d, trace_id=%s\n",
			now, draw.SalesEndTime, drawNumber, in.TraceID)
		return nil, ErrSalesClosed
	}

	// 生成注单号（使用内部用户ID）
	billNo := generateBillNo(user.ID)

	// 幂等：先占幂等键，ref 记录 bill_no
	if err := (&model.IdempotencyKey{IdempotencyKey: in.IdempotencyKey, Purpose: "bet", Ref: billNo}).Insert(txCtx, tx); err != nil {
		// 若幂等冲突：尝试返回上次结果
		if isMySQLDuplicateKeyError(err) {
			fmt.Printf("[Bet] 幂等键冲突，尝试返回上次结果: idem_key=%s, trace_id=%s\n",
				in.IdempotencyKey, in.TraceID)
			_ = tx.Rollback()
			// Redis 先查
			if r := infrds.Client(); r != nil {
				if bs, _ := r.Get(ctx, infrds.IdemResultKey(in.IdempotencyKey)).Bytes(); len(bs) > 0 {
					var out BetOutput
					if common.JsonUnmarshal(bs, &out) == nil {
						result = "success"
						return &out, nil
					}
				}
			}
			// DB 回源：根据幂等键查 bill_no，再查用户余额
			ref, e1 := model.SelectRefByIdemKey(ctx, infmysql.SQLX(), in.IdempotencyKey)
			if e1 == nil && ref != "" {
				u, e2 := model.GetUserByPlatformUser(ctx, infmysql.SQLX(), in.PlatformID, in.PlatformUserID)
				if e2 == nil {
					result = "success"
					return &BetOutput{
						BillNo:           ref,
						DrawNumber:       drawNumber,
						CombinationCount: combos,
						TotalStake:       chelper.TrimDecimal(totalStake),
						RemainAmount:     chelper.TrimDecimal(u.Balance),
					}, nil
				}
			}
		}
		fmt.Printf("[Bet] 插入幂等键失败: error=%v, idem_key=%s, trace_id=%s\n",
			err, in.IdempotencyKey, in.TraceID)
		return nil, fmt.Errorf("idempotency conflict or insert failed: %w", err)
	}

	// 校验用户状态（user 已经在事务中加锁）
	if user.Status != constant.StatusNormal {
		fmt.Printf("[Bet] 用户状态异常: user_id=%d, status=%d, trace_id=%s\n",
			user.ID, user.Status, in.TraceID)
		return nil, ErrUserDisabled
	}
	// 校验余额
	if user.Balance.Cmp(totalStake) < 0 {
		return nil, ErrInsufficientBalance
	}

	beforeDec := user.Balance
	afterDec := beforeDec.Sub(totalStake).RoundBank(2)

	// 更新余额
	if err := model.UpdateUserBalance(txCtx, tx, user.ID, afterDec); err != nil {
		return nil, err
	}

	// 写账本，此处为扣款
	ledger := &model.WalletLedger{
		UserID:       user.ID,
		BizType:      constant.BalanceChangeBet,
		Amount:       totalStake,
		BeforeAmount: beforeDec,
		AfterAmount:  afterDec,
		Currency:     "CNY",
		BillNo:       billNo,
		DrawNumber:   drawNumber,
		Remark:       "bet deduct",
		TraceID:      in.TraceID,
	}
	if err := ledger.Insert(txCtx, tx); err != nil {
		fmt.Printf("[Bet] 写入账本失败: error=%v, bill_no=%s, trace_id=%s\n",
			err, billNo, in.TraceID)
		return nil, err
	}

	// 选号落库采用规整化后的 JSON（号码有序、无多余字段）
	selJSON, err := sel.Marshal()
	if err != nil {
		return nil, err
	}

	// 落注单（bill_status:1待结算）
	bet := &model.Bet{
		BillNo:           billNo,
		DrawNumber:       drawNumber,
		UserID:           user.ID,
		PlatformID:       in.PlatformID,
		PlatformUserID:   in.PlatformUserID,
		UserName:         user.Username,
		BetType:          int8(sel.Type),
		BetTypeStr:       btLabel,
		Selection:        string(selJSON),
		Multiplier:       in.Multiplier,
		CombinationCount: combos,
		StakePerCombo:    cfg.UnitPrice,
		TotalStake:       totalStake,
		BillStatus:       model.BillStatusPending,
		Currency:         "CNY",
		IdempotencyKey:   in.IdempotencyKey,
		TraceID:          in.TraceID,
	}
	if err := bet.Insert(txCtx, tx); err != nil {
		fmt.Printf("[Bet] 创建注单失败: error=%v, bill_no=%s, trace_id=%s\n",
			err, billNo, in.TraceID)
		return nil, err
	}

	// 累加本期销售额
	if err := model.AddDrawSales(txCtx, tx, drawNumber, totalStake); err != nil {
		return nil, err
	}

	// Outbox 消息（异步投递）
	payload := map[string]any{
		"event":            "bet_placed",
		"bill_no":          billNo,
		"draw_number":      drawNumber,
		"user_id":          user.ID,
		"platform_id":      in.PlatformID,
		"platform_user_id": in.PlatformUserID,
		"bet_type":         btLabel,
		"combinations":     combos,
		"total_stake":      totalStake.String(),
		"trace_id":         in.TraceID,
	}
	if err := model.CreateOutbox(txCtx, tx, rocketmq.TopicBetPlaced, billNo, payload); err != nil {
		fmt.Printf("[Bet] 写入 Outbox 失败: error=%v, bill_no=%s, trace_id=%s\n",
			err, billNo, in.TraceID)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		fmt.Printf("[Bet] 提交事务失败: error=%v, bill_no=%s, trace_id=%s\n",
			err, billNo, in.TraceID)
		return nil, err
	}

	result = "success"
	out := &BetOutput{
		BillNo:           billNo,
		DrawNumber:       drawNumber,
		CombinationCount: combos,
		TotalStake:       chelper.TrimDecimal(totalStake),
		RemainAmount:     chelper.TrimDecimal(afterDec),
	}

	// 写入 Redis 结果缓存（降级容错）
	if r := infrds.Client(); r != nil {
		if b, e := common.JsonMarshal(out); e == nil {
			_ = r.Set(ctx, infrds.IdemResultKey(in.IdempotencyKey), b, idemResultTTL).Err()
		}
	}

	return out, nil
}

// generateBillNo 生成可读的注单号
// 格式：LT{YYYYMMDD}{HHmmss}{UserID后4位}{随机3位十六进制}
// 可读、大致按时间有序，时间+用户+随机数保证唯一
func generateBillNo(userID int64) string {
	now := time.Now()
	dateTime := now.Format("20060102150405")
	userSuffix := fmt.Sprintf("%04d", userID%10000)
	randomBytes := make([]byte, 2)
	_, _ = rand.Read(randomBytes)
	randomHex := strings.ToUpper(hex.EncodeToString(randomBytes)[:3])

	return fmt.Sprintf("LT%s%s%s", dateTime, userSuffix, randomHex)
}

// getOrCreateUserInTx 在事务中获取或创建用户
// 如果用户不存在，自动创建；如果存在，返回现有用户并加锁
func getOrCreateUserInTx(ctx context.Context, tx *sqlx.Tx, platformID int8, platformUserID, username string) (*model.Customers, error) {
	// 1. 先尝试加锁查询
	user, err := model.GetUserByPlatformUserForUpdate(ctx, tx, platformID, platformUserID)
	if err == nil {
		return user, nil // 用户已存在
	}

	// 2. 如果用户不存在，创建用户
	if strings.Contains(err.Error(), "no rows") {
		newUser := &model.Customers{
			PlatformID:     platformID,
			PlatformUserID: platformUserID,
			Username:       username,
			Balance:        decimal.Zero,
			Status:         constant.StatusNormal,
		}
		if err := newUser.Insert(ctx, tx); err != nil {
			// 处理并发创建的情况（唯一索引冲突）
			if isMySQLDuplicateKeyError(err) {
				return model.GetUserByPlatformUserForUpdate(ctx, tx, platformID, platformUserID)
			}
			return nil, err
		}
		return newUser, nil
	}

	return nil, err
}
