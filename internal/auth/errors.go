package auth

import "errors"

// 认证相关错误定义
var (
	ErrMissingToken         = errors.New("missing authorization token")
	ErrInvalidTokenFormat   = errors.New("invalid token format")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenRevoked         = errors.New("token revoked")
	ErrInvalidSigningMethod = errors.New("invalid signing method")

	ErrNotAdmin          = errors.New("token subject is not an admin")
	ErrAdminAuthDisabled = errors.New("admin authentication is disabled")
)
