package utils

import "math"

// AmountEpsilon is half a minor currency unit. Two amounts closer than this are
// considered equal, which absorbs float rounding without masking real mismatches.
const AmountEpsilon = 0.005

// RoundMoney rounds an amount to minor-unit (two decimal) precision.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// AmountsEqual compares two monetary amounts at minor-unit precision.
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) < AmountEpsilon
}
