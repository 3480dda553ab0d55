package api

import (
	"errors"
	"strings"

	helper "lotto-server/internal/common/helper"
	"lotto-server/internal/common/response"
	"lotto-server/internal/lottery"
	"lotto-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"

	mysqlerr "github.com/go-sql-driver/mysql"
)

var newBetService = service.NewBetService

// BetController 处理投注接口：POST /api/bet
//
// 幂等约定：客户端生成 idempotency_key 并随请求传入，同一次投注的所有重试
// 使用相同的 key；业务语义不同（选号/倍数/期次/用户不同）的请求必须换 key。
// 服务端三层防护：Redis 进行中锁（并发重复返回 202 + Retry-After: 1）、
// MySQL 幂等键唯一索引（历史重复返回首次的 bill_no 与余额）、结果短期缓存。
type BetController struct{ beego.Controller }

func (c *BetController) Bet() {
	// 参数在此严格校验，service 不再重复校验
	bp, ok, msg := helper.ParseAndValidateBet(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newBetService()
	traceID := helper.GetTraceID(c.Ctx)

	out, err := svc.PlaceBet(c.Ctx.Request.Context(), service.BetInput{
		DrawNumber:     bp.DrawNumber,
		PlatformID:     int8(bp.Platform),
		PlatformUserID: bp.PlatformUserID,
		UserName:       bp.UserName,
		Selection:      []byte(bp.Selection),
		Multiplier:     bp.Multiplier,
		IdempotencyKey: bp.IdempotencyKey,
		TraceID:        traceID,
	})
	if err != nil {
		// MySQL 唯一键冲突
		if me, ok := err.(*mysqlerr.MySQLError); ok && me.Number == 1062 {
			response.Conflict(&c.Controller, response.CodeDuplicateKey, traceID)
			return
		}
		// 重复请求进行中
		if errors.Is(err, service.ErrDuplicateInFlight) {
			response.Accepted(&c.Controller, "重复请求进行中，请稍后重试", traceID)
			return
		}
		// 选号非法（玩法/号码范围/重复号码）
		if errors.Is(err, lottery.ErrInvalidSelection) {
			response.BadRequest(&c.Controller, err.Error(), traceID)
			return
		}
		// 注数超过上限
		if errors.Is(err, lottery.ErrCombinationOverflow) {
			response.ErrorWithMessage(&c.Controller, 400, response.CodeCombinationOverflow,
				"注数超过单票上限", traceID)
			return
		}
		// 期次不存在
		if errors.Is(err, service.ErrDrawNotFound) {
			response.NotFound(&c.Controller, "期次不存在", traceID)
			return
		}
		// 状态不允许投注
		if errors.Is(err, service.ErrInvalidStateBet) {
			response.Conflict(&c.Controller, response.CodeInvalidState, traceID)
			return
		}
		// 销售已截止
		if errors.Is(err, service.ErrSalesClosed) {
			response.Conflict(&c.Controller, response.CodeSalesClosed, traceID)
			return
		}
		// 余额不足
		if errors.Is(err, service.ErrInsufficientBalance) {
			response.ErrorWithMessage(&c.Controller, 400, response.CodeInsufficientBalance,
				"余额不足", traceID)
			return
		}
		// 用户状态异常
		if errors.Is(err, service.ErrUserDisabled) {
			response.BadRequest(&c.Controller, "用户状态异常", traceID)
			return
		}
		if errors.Is(err, service.ErrBadRequest) || strings.Contains(err.Error(), "multiplier") {
			response.BadRequest(&c.Controller, "invalid request", traceID)
			return
		}
		// 系统错误
		response.InternalError(&c.Controller, traceID)
		return
	}

	// 成功响应
	response.Success(&c.Controller, map[string]interface{}{
		"bill_no":           out.BillNo,
		"draw_number":       out.DrawNumber,
		"combination_count": out.CombinationCount,
		"total_stake":       out.TotalStake,
		"remain_amount":     out.RemainAmount,
	}, traceID)
}

// UserBetsController 查询用户投注记录：GET /api/user/bets
type UserBetsController struct{ beego.Controller }

var newQueryService = service.NewQueryService

func (c *UserBetsController) List() {
	traceID := helper.GetTraceID(c.Ctx)

	platform, _ := c.GetInt("platform", 0)
	platformUserID := c.GetString("platform_user_id")
	if platformUserID == "" {
		response.BadRequest(&c.Controller, "platform_user_id is required", traceID)
		return
	}
	drawNumber, _ := c.GetInt64("draw_number", 0)
	billStatus, _ := c.GetInt("bill_status", 0)
	limit, _ := c.GetInt("limit", 10)

	out, err := newQueryService().ListUserBets(c.Ctx.Request.Context(), service.ListBetsInput{
		PlatformID:     int8(platform),
		PlatformUserID: platformUserID,
		DrawNumber:     drawNumber,
		BillStatus:     int8(billStatus),
		StartTime:      c.GetString("start_time"),
		EndTime:        c.GetString("end_time"),
		Limit:          limit,
	})
	if err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			response.BadRequest(&c.Controller, "invalid request", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}
