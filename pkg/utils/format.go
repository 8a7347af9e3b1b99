// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatIndianCurrency formats a number in Indian currency format (lakhs, crores).
func FormatIndianCurrency(amount float64) string {
	return "₹" + FormatIndianNumber(amount)
}

// FormatIndianNumber formats a number with two decimals and Indian digit
// grouping: 1,00,00,000.00 rather than 10,000,000.00.
func FormatIndianNumber(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")

	result := groupIndian(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// groupIndian formats an integer string in Indian numbering system.
func groupIndian(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	// First group of 3 from right
	result := s[n-3:]
	s = s[:n-3]

	// Then groups of 2
	for len(s) > 0 {
		if len(s) >= 2 {
			result = s[len(s)-2:] + "," + result
			s = s[:len(s)-2]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatOI formats open interest as a grouped whole number.
func FormatOI(oi float64) string {
	n := int64(math.Round(oi))
	if n < 0 {
		return "-" + groupIndian(fmt.Sprintf("%d", -n))
	}
	return groupIndian(fmt.Sprintf("%d", n))
}
