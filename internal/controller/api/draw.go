package api

import (
	"errors"

	helper "lotto-server/internal/common/helper"
	"lotto-server/internal/common/response"
	"lotto-server/internal/lottery"
	"lotto-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newDrawService = service.NewDrawService
var newLifecycleService = service.NewLifecycleService

// operatorFromCtx 提取管理操作人（由认证过滤器注入），未启用认证时回退 system
func operatorFromCtx(c *beego.Controller) string {
	if v := c.Ctx.Input.GetData("operator"); v != nil {
		if op, ok := v.(string); ok && op != "" {
			return op
		}
	}
	return "system"
}

// DrawNumbersController 处理开奖号码录入接口：POST /api/draw/numbers
// 正式开奖号码来自外部摇奖（人工录入或官方消息源），auto=true 仅用于演练环境
type DrawNumbersController struct{ beego.Controller }

func (c *DrawNumbersController) Submit() {
	dp, ok, msg := helper.ParseAndValidateDrawNumbers(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newDrawService()
	traceID := helper.GetTraceID(c.Ctx)

	out, err := svc.SubmitDrawNumbers(c.Ctx.Request.Context(), service.DrawNumbersInput{
		DrawNumber: dp.DrawNumber,
		Front:      dp.Front,
		Back:       dp.Back,
		Auto:       dp.Auto,
		Operator:   operatorFromCtx(&c.Controller),
		Source:     "manual",
		TraceID:    traceID,
	})
	if err != nil {
		if errors.Is(err, lottery.ErrInvalidWinningNumber) {
			response.BadRequest(&c.Controller, err.Error(), traceID)
			return
		}
		if errors.Is(err, service.ErrDrawNotFound) {
			response.NotFound(&c.Controller, "期次不存在", traceID)
			return
		}
		if errors.Is(err, lottery.ErrAlreadySettled) {
			response.Conflict(&c.Controller, response.CodeAlreadySettled, traceID)
			return
		}
		if errors.Is(err, service.ErrInvalidStateDraw) {
			response.Conflict(&c.Controller, response.CodeInvalidState, traceID)
			return
		}
		if errors.Is(err, service.ErrBadRequest) {
			response.BadRequest(&c.Controller, "invalid request", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}

// SettleController 处理整期结算接口：POST /api/draw/settle
// 重复结算同一期返回 409（already settled），不会二次派彩
type SettleController struct{ beego.Controller }

func (c *SettleController) Settle() {
	traceID := helper.GetTraceID(c.Ctx)

	drawNumber, err := c.GetInt64("draw_number", 0)
	if err != nil || drawNumber <= 0 {
		// 兼容 JSON body
		var body struct {
			DrawNumber int64 `json:"draw_number"`
		}
		if e := c.BindJSON(&body); e != nil || body.DrawNumber <= 0 {
			response.BadRequest(&c.Controller, "draw_number is required", traceID)
			return
		}
		drawNumber = body.DrawNumber
	}

	svc := newDrawService()
	out, err := svc.Settle(c.Ctx.Request.Context(), service.SettleInput{
		DrawNumber: drawNumber,
		Operator:   operatorFromCtx(&c.Controller),
		TraceID:    traceID,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateInFlight) {
			response.Accepted(&c.Controller, "结算进行中，请稍后重试", traceID)
			return
		}
		if errors.Is(err, lottery.ErrAlreadySettled) {
			response.Conflict(&c.Controller, response.CodeAlreadySettled, traceID)
			return
		}
		if errors.Is(err, service.ErrDrawNotFound) {
			response.NotFound(&c.Controller, "期次不存在", traceID)
			return
		}
		if errors.Is(err, service.ErrInvalidStateSettle) {
			response.Conflict(&c.Controller, response.CodeInvalidState, traceID)
			return
		}
		if errors.Is(err, lottery.ErrInvalidWinningNumber) {
			response.Conflict(&c.Controller, response.CodeInvalidState, traceID)
			return
		}
		if errors.Is(err, service.ErrBadRequest) {
			response.BadRequest(&c.Controller, "invalid request", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}

// DrawEventController 处理期次生命周期事件接口：POST /api/draw/event
// 只受理封盘事件（event_type=1）；开奖与结算走各自的专用接口
type DrawEventController struct{ beego.Controller }

func (c *DrawEventController) DrawEvent() {
	ep, ok, msg := helper.ParseAndValidateDrawEvent(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, helper.GetTraceID(c.Ctx))
		return
	}

	svc := newLifecycleService()
	traceID := helper.GetTraceID(c.Ctx)

	out, err := svc.HandleEvent(c.Ctx.Request.Context(), service.DrawEventInput{
		DrawNumber: ep.DrawNumber,
		EventType:  int8(ep.EventType),
		Operator:   operatorFromCtx(&c.Controller),
		Source:     "api",
		TraceID:    traceID,
	})
	if err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			response.BadRequest(&c.Controller, err.Error(), traceID)
			return
		}
		if errors.Is(err, service.ErrDrawNotFound) {
			response.NotFound(&c.Controller, "期次不存在", traceID)
			return
		}
		response.Conflict(&c.Controller, response.CodeInvalidState, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}

// DrawController 期次信息查询：GET /api/draw/:draw_number
type DrawController struct{ beego.Controller }

func (c *DrawController) Get() {
	traceID := helper.GetTraceID(c.Ctx)

	drawNumber, err := c.GetInt64(":draw_number", 0)
	if err != nil || drawNumber <= 0 {
		response.BadRequest(&c.Controller, "invalid draw_number", traceID)
		return
	}

	out, err := newDrawService().GetDraw(c.Ctx.Request.Context(), drawNumber)
	if err != nil {
		if errors.Is(err, service.ErrDrawNotFound) {
			response.NotFound(&c.Controller, "期次不存在", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}

// AdminDrawController 创建首期：POST /api/admin/draw
// 仅系统初始化引导使用，后续期次由结算流程自动滚动生成
type AdminDrawController struct{ beego.Controller }

// Stats 一期注单的聚合统计：GET /api/admin/draw/stats?draw_number=
func (c *AdminDrawController) Stats() {
	traceID := helper.GetTraceID(c.Ctx)

	drawNumber, err := c.GetInt64("draw_number", 0)
	if err != nil || drawNumber <= 0 {
		response.BadRequest(&c.Controller, "draw_number is required", traceID)
		return
	}

	out, err := service.NewQueryService().GetDrawStats(c.Ctx.Request.Context(), drawNumber)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, out, traceID)
}

func (c *AdminDrawController) Create() {
	traceID := helper.GetTraceID(c.Ctx)

	var body struct {
		DrawNumber int64 `json:"draw_number"`
	}
	if err := c.BindJSON(&body); err != nil || body.DrawNumber <= 0 {
		response.BadRequest(&c.Controller, "draw_number is required", traceID)
		return
	}

	out, err := newLifecycleService().CreateDraw(c.Ctx.Request.Context(), service.CreateDrawInput{
		DrawNumber: body.DrawNumber,
		Operator:   operatorFromCtx(&c.Controller),
		TraceID:    traceID,
	})
	if err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			response.BadRequest(&c.Controller, err.Error(), traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, out, traceID)
}
