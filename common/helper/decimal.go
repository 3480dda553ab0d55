package helper

import (
	"github.com/shopspring/decimal"
)

var (
	OneDecimal = decimal.NewFromInt(1)
)

// TrimDecimal 金额对外展示统一保留两位小数
func TrimDecimal(val decimal.Decimal) string {
	return val.StringFixed(2)
}

// TrimDecimalRate 比例类数值（利润率、奖池占比）保留四位小数
func TrimDecimalRate(val decimal.Decimal) string {
	return val.StringFixed(4)
}
