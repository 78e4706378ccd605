package pricing

import "github.com/shopspring/decimal"

// Round2 rounds v to two decimal places, halves away from zero.
//
// The value goes through its shortest decimal representation first, so
// 724.9275 rounds to 724.93 even though its binary form sits just below.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
