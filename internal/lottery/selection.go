package lottery

import (
	"encoding/json"
	"fmt"
)

// BetType 投注方式
// 1=single 单式 2=complex 复式 3=system 胆拖
type BetType int8

const (
	BetSingle  BetType = 1
	BetComplex BetType = 2
	BetSystem  BetType = 3
)

// String 返回投注方式的冗余字符串（入库与日志用）
func (t BetType) String() string {
	switch t {
	case BetSingle:
		return "single"
	case BetComplex:
		return "complex"
	case BetSystem:
		return "system"
	default:
		return ""
	}
}

// ParseBetType 字符串转投注方式
func ParseBetType(s string) (BetType, error) {
	switch s {
	case "single":
		return BetSingle, nil
	case "complex":
		return BetComplex, nil
	case "system":
		return BetSystem, nil
	default:
		return 0, fmt.Errorf("%w: unknown bet type %q", ErrInvalidSelection, s)
	}
}

// Selection 投注选号（封闭的三变体联合）
// - single: Front(5) + Back(2)
// - complex: Front(≥5) + Back(≥2)，表示所有 5+2 子组合
// - system: 前区胆码(0..4)+拖码、后区胆码(0..1)+拖码；胆码强制出现在每注组合中
//
// 以 JSON 持久化在注单表的 selection 字段；ParseSelection 在构造时完成全部校验，
// 避免松散 JSON 带来的脏数据在结算期才暴露。
type Selection struct {
	Type        BetType   `json:"bet_type"`
	Front       NumberSet `json:"front,omitempty"`
	Back        NumberSet `json:"back,omitempty"`
	FrontAnchor NumberSet `json:"front_anchor,omitempty"`
	FrontFollow NumberSet `json:"front_follow,omitempty"`
	BackAnchor  NumberSet `json:"back_anchor,omitempty"`
	BackFollow  NumberSet `json:"back_follow,omitempty"`
}

// ParseSelection 解析并校验投注选号
func ParseSelection(raw []byte) (*Selection, error) {
	var sel Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	// 反序列化后重建排序不变式
	sel.Front = NewNumberSet(sel.Front...)
	sel.Back = NewNumberSet(sel.Back...)
	sel.FrontAnchor = NewNumberSet(sel.FrontAnchor...)
	sel.FrontFollow = NewNumberSet(sel.FrontFollow...)
	sel.BackAnchor = NewNumberSet(sel.BackAnchor...)
	sel.BackFollow = NewNumberSet(sel.BackFollow...)
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	return &sel, nil
}

// Marshal 序列化为入库 JSON
func (sel *Selection) Marshal() ([]byte, error) {
	return json.Marshal(sel)
}

// Validate 按投注方式校验区界、个数与重复
func (sel *Selection) Validate() error {
	switch sel.Type {
	case BetSingle:
		if err := FrontZone.ValidatePick(sel.Front); err != nil {
			return err
		}
		return BackZone.ValidatePick(sel.Back)

	case BetComplex:
		if err := FrontZone.ValidatePool(sel.Front, FrontZone.Pick); err != nil {
			return err
		}
		return BackZone.ValidatePool(sel.Back, BackZone.Pick)

	case BetSystem:
		return sel.validateSystem()

	default:
		return fmt.Errorf("%w: unknown bet type %d", ErrInvalidSelection, sel.Type)
	}
}

// validateSystem 胆拖校验
// 约束：胆码个数必须严格小于目标注数（前区<5，后区<2）；胆+拖 ≥ 目标；胆拖不相交
func (sel *Selection) validateSystem() error {
	if len(sel.FrontAnchor) >= FrontZone.Pick {
		return fmt.Errorf("%w: front anchor size %d must be below %d",
			ErrInvalidSelection, len(sel.FrontAnchor), FrontZone.Pick)
	}
	if len(sel.BackAnchor) >= BackZone.Pick {
		return fmt.Errorf("%w: back anchor size %d must be below %d",
			ErrInvalidSelection, len(sel.BackAnchor), BackZone.Pick)
	}
	if len(sel.FrontAnchor)+len(sel.FrontFollow) < FrontZone.Pick {
		return fmt.Errorf("%w: front anchor+follow %d below %d",
			ErrInvalidSelection, len(sel.FrontAnchor)+len(sel.FrontFollow), FrontZone.Pick)
	}
	if len(sel.BackAnchor)+len(sel.BackFollow) < BackZone.Pick {
		return fmt.Errorf("%w: back anchor+follow %d below %d",
			ErrInvalidSelection, len(sel.BackAnchor)+len(sel.BackFollow), BackZone.Pick)
	}
	// 区界与重复：胆拖合并后整体校验，同时覆盖“胆拖交叉重复”的情况
	if err := FrontZone.ValidatePool(sel.FrontAnchor.Union(sel.FrontFollow), FrontZone.Pick); err != nil {
		return err
	}
	if err := BackZone.ValidatePool(sel.BackAnchor.Union(sel.BackFollow), BackZone.Pick); err != nil {
		return err
	}
	return nil
}
