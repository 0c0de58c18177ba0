// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing signed monetary amounts from
// user or CSV input and rendering them back for export.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a signed amount.
//
// It accepts dot (12.34) and comma (12,34) decimal separators, a leading
// sign, thousands separators when both separators are present (1,234.56 or
// 1.234,56),
// common currency symbols and accounting parentheses for negatives.
//
// Examples:
//
//	ParseAmount("-4.75")     -> -4.75, nil
//	ParseAmount("12,34")     -> 12.34, nil
//	ParseAmount("$1,234.56") -> 1234.56, nil
//	ParseAmount("1.234,56")  -> 1234.56, nil
//	ParseAmount("(20.00)")   -> -20, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	s = strings.TrimLeft(s, "$€£ ")
	// "$-4.75" style
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}

	s = normalizeSeparators(s)
	if s == "" || s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case !unicode.IsDigit(r):
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if dots > 1 {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites thousands/decimal separators to a plain
// dot-decimal representation. When both separators appear, the last one is
// the decimal separator (1,234.56 and 1.234,56).
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastComma < 0:
		return s
	case lastDot > lastComma:
		return strings.ReplaceAll(s, ",", "")
	case lastDot >= 0:
		// A second comma is left in place and rejected by the caller.
		return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	case strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2:
		return strings.Replace(s, ",", ".", 1)
	default:
		return strings.ReplaceAll(s, ",", "")
	}
}

// FormatAmount renders an amount with two fixed decimals, e.g. "-4.75".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

