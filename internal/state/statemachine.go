package state

import "fmt"

// State 期次状态
const (
	StateOpen    = "open"    // 销售中
	StateClosed  = "closed"  // 已封盘(到达销售截止时间)
	StateDrawn   = "drawn"   // 已开奖(开奖号码已固定)
	StateSettled = "settled" // 已结算(终态，不再流转)
)

// Event 期次事件
const (
	EvtSalesClose  = "sales_close"
	EvtDrawNumbers = "draw_numbers"
	EvtSettle      = "settle"
)

// NextState 根据当前状态与事件计算下一个状态，非法转换报错
// settled 为终态，任何事件都不再接受
func NextState(cur, evt string) (string, error) {
	switch cur {
	case StateOpen:
		if evt == EvtSalesClose {
			return StateClosed, nil
		}
	case StateClosed:
		if evt == EvtDrawNumbers {
			return StateDrawn, nil
		}
	case StateDrawn:
		if evt == EvtSettle {
			return StateSettled, nil
		}
	}
	return cur, fmt.Errorf("invalid transition: %s --%s--> ?", cur, evt)
}

// 状态码与字符串互转（入库为数值枚举，模型与日志用字符串）
// 1=open 2=closed 3=drawn 4=settled

func StateToCode(s string) int8 {
	switch s {
	case StateOpen:
		return 1
	case StateClosed:
		return 2
	case StateDrawn:
		return 3
	case StateSettled:
		return 4
	default:
		return 0
	}
}

func CodeToState(c int8) string {
	switch c {
	case 1:
		return StateOpen
	case 2:
		return StateClosed
	case 3:
		return StateDrawn
	case 4:
		return StateSettled
	default:
		return ""
	}
}
