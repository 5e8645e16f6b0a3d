package service

import (
	"github.com/shopspring/decimal"
)

// RequiredQuantity 计算构建 buildQty 个成品对某组件的需求量：
// quantity * buildQty * (1 + wastagePercent/100)，先做精确乘法再向上取整
func RequiredQuantity(quantity, wastagePercent, buildQty float64) int64 {
	required := decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(buildQty)).
		Mul(decimal.NewFromInt(100).Add(decimal.NewFromFloat(wastagePercent))).
		Div(decimal.NewFromInt(100))
	return required.Ceil().IntPart()
}

// ShortfallQuantity 计算缺口：max(0, required - available)，向上取整到整数单位
func ShortfallQuantity(required int64, available float64) int64 {
	shortfall := decimal.NewFromInt(required).
		Sub(decimal.NewFromFloat(available)).
		Ceil().IntPart()
	if shortfall < 0 {
		return 0
	}
	return shortfall
}
