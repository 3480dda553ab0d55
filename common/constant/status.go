package constant

// user status
const (
	StatusNormal  = 1 // 状态：正常
	StatusDeleted = 2 // 状态：已删除
)

// user 业务
const (
	UserRealName         = 1 //1用户已经实名
	UserBaned            = 2 //禁止登录
	UserNotAllowWithdraw = 3 //禁止提款
)

// 期次生命周期事件类型（draw_event_audit.event_type）
const (
	DrawEventSalesClose  = 1 // 封盘
	DrawEventDrawNumbers = 2 // 开奖号码录入
	DrawEventSettle      = 3 // 结算
)
