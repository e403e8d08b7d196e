package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const currencySymbol = "₱"

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FormatPeso renders an amount with two decimals, e.g. ₱61.98.
func FormatPeso(d decimal.Decimal) string {
	return currencySymbol + d.StringFixed(2)
}

// FormatPesoWhole renders an amount rounded to whole pesos.
func FormatPesoWhole(d decimal.Decimal) string {
	return currencySymbol + d.StringFixed(0)
}

// FormatOrderTime renders a timestamp the way order lists show it.
func FormatOrderTime(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 03:04 PM")
}

// FormatMemberSince renders a join date as "May 2024".
func FormatMemberSince(t time.Time) string {
	if t.IsZero() {
		return "Recently"
	}
	return t.Local().Format("January 2006")
}

// SplitArgs splits a command line into fields, keeping "quoted text" together.
func SplitArgs(line string) []string {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case (r == ' ' || r == '\t') && !quoted:
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, current.String())
	}
	return args
}
