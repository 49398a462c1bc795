// Package utils provides shared utility functions.
package utils

import "fmt"

// FormatUSD formats a dollar amount with two decimals and a sign.
func FormatUSD(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatStrike renders a strike price without trailing zeros.
func FormatStrike(strike float64) string {
	if strike == float64(int64(strike)) {
		return fmt.Sprintf("%d", int64(strike))
	}
	return fmt.Sprintf("%.2f", strike)
}
