package lottery

import "errors"

// 引擎错误定义（与 service 层的业务错误区分：这里只描述计算与状态约束）
var (
	ErrInvalidSelection     = errors.New("invalid selection")
	ErrInvalidState         = errors.New("operation not allowed in current draw state")
	ErrAlreadySettled       = errors.New("draw already settled")
	ErrConfigMissing        = errors.New("prize config missing")
	ErrCombinationOverflow  = errors.New("combination count exceeds configured limit")
	ErrInvalidWinningNumber = errors.New("invalid winning numbers")
)
