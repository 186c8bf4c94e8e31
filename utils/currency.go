package utils

import (
	"fmt"
	"math"
	"strings"
)

// Round2 rounds to two decimal places, the minor unit of the baht.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatAmount formats an amount with thousands separators and two decimals,
// e.g. 15000.5 -> "15,000.50".
func FormatAmount(amount float64) string {
	formatted := fmt.Sprintf("%.2f", amount)

	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	negative := strings.HasPrefix(integerPart, "-")
	if negative {
		integerPart = integerPart[1:]
	}

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	result := strings.Join(groups, ",") + "." + decimalPart
	if negative {
		result = "-" + result
	}
	return result
}
