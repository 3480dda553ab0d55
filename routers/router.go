package routers

import (
	"lotto-server/internal/config"
	"lotto-server/internal/controller/api"
	"lotto-server/internal/metrics"
	"lotto-server/internal/middleware"

	beego "github.com/beego/beego/v2/server/web"
)

// init 注册HTTP路由与全局过滤器
func init() {
	cfg := config.GetCurrent()

	// 全局过滤器（按执行顺序）
	// 1. Panic Recovery（最先执行，捕获所有 panic）
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RecoveryFilter)

	// 2. 请求ID注入
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RequestIDFilter)

	// 3. CORS 处理（如果启用）
	if cfg != nil && cfg.CORS.Enabled {
		beego.InsertFilter("/*", beego.BeforeExec, middleware.CORSFilter)
	}

	// 4. HTTP 指标收集
	beego.InsertFilter("/*", beego.BeforeExec, metrics.HTTPMetricsFilter)
	beego.InsertFilter("/*", beego.FinishRouter, metrics.HTTPMetricsAfter)

	// 健康检查（无需认证）
	beego.Router("/healthz", &api.HealthController{}, "get:Healthz")
	beego.Router("/readyz", &api.HealthController{}, "get:Readyz")

	// ========== 业务 API ==========

	// 投注接口：限流
	if cfg != nil && cfg.RateLimit.Enabled {
		beego.InsertFilter("/api/bet", beego.BeforeExec, middleware.RateLimitFilter)
	}
	beego.Router("/api/bet", &api.BetController{}, "post:Bet")

	// 期次查询与用户投注记录查询
	beego.Router("/api/draw/:draw_number", &api.DrawController{}, "get:Get")
	beego.Router("/api/user/bets", &api.UserBetsController{}, "get:List")

	// ========== 管理 API（需要管理员认证） ==========

	adminRoutes := []string{
		"/api/draw/event",
		"/api/draw/numbers",
		"/api/draw/settle",
		"/api/admin/*",
	}
	if cfg != nil && cfg.Auth.Admin.Enabled {
		for _, route := range adminRoutes {
			beego.InsertFilter(route, beego.BeforeExec, middleware.AdminAuthFilter)
		}
	}

	// 期次生命周期事件（封盘）
	beego.Router("/api/draw/event", &api.DrawEventController{}, "post:DrawEvent")

	// 开奖号码录入
	beego.Router("/api/draw/numbers", &api.DrawNumbersController{}, "post:Submit")

	// 整期结算
	beego.Router("/api/draw/settle", &api.SettleController{}, "post:Settle")

	// 创建首期（系统初始化引导）与对账统计
	beego.Router("/api/admin/draw", &api.AdminDrawController{}, "post:Create")
	beego.Router("/api/admin/draw/stats", &api.AdminDrawController{}, "get:Stats")
}
