package middleware

import (
	"time"

	"lotto-server/common/logger"
	"lotto-server/internal/auth"
	"lotto-server/internal/common/helper"
	"lotto-server/internal/common/response"
	"lotto-server/internal/config"

	beegocontext "github.com/beego/beego/v2/server/web/context"
	"go.uber.org/zap"
)

// AdminAuthFilter 管理员认证过滤器（JWT Bearer Token）
// 用于保护运营接口（开期、录入开奖号码、触发结算等）
func AdminAuthFilter(ctx *beegocontext.Context) {
	cfg := config.GetCurrent()
	traceID := helper.GetTraceID(ctx)

	// 如果未启用管理员认证，跳过
	if cfg == nil || !cfg.Auth.Admin.Enabled {
		logger.Debug("admin auth disabled, skip", zap.String("trace_id", traceID))
		return
	}

	returnAuthError := func(code int, message string) {
		ctx.Output.SetStatus(401)
		ctx.Output.JSON(response.APIResponse{
			Code:      code,
			Message:   message,
			Data:      nil,
			TraceID:   traceID,
			Timestamp: time.Now().UnixMilli(),
		}, false, false)
		ctx.Abort(401, "unauthorized")
	}

	claims, err := auth.VerifyJWTToken(ctx)
	if err != nil {
		logger.Warn("admin token verify failed",
			zap.String("trace_id", traceID),
			zap.Error(err))
		switch err {
		case auth.ErrMissingToken:
			returnAuthError(response.CodeUnauthorized, "缺少认证信息")
		case auth.ErrTokenRevoked:
			returnAuthError(response.CodeInvalidToken, "Token 已撤销")
		default:
			returnAuthError(response.CodeInvalidToken, "Token 无效")
		}
		return
	}

	if claims.Role != auth.RoleAdmin {
		logger.Warn("non-admin token on admin route",
			zap.String("trace_id", traceID),
			zap.String("operator", claims.Operator),
			zap.String("role", claims.Role))
		returnAuthError(response.CodeForbidden, "无管理权限")
		return
	}

	// 标记为管理员请求，操作员写入审计
	ctx.Input.SetData("is_admin", true)
	ctx.Input.SetData("operator", claims.Operator)

	logger.Debug("admin authentication successful",
		zap.String("trace_id", traceID),
		zap.String("operator", claims.Operator))
}
