package money

import "github.com/shopspring/decimal"

// ToMinor переводит сумму в основных единицах в минимальные (центы).
// Дробные центы округляются по правилу half away from zero: 0.005 -> 1
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// ValidPrice - цена неотрицательна и содержит не больше двух знаков после запятой
func ValidPrice(amount decimal.Decimal) bool {
	return !amount.IsNegative() && amount.Equal(amount.Round(2))
}
