// Package units provides shared unit labels and formatting for radio
// measurements quoted in evidence and narrative text.
package units

import (
	"fmt"
	"strconv"
)

// Unit constants
const (
	DBm     = "dBm"
	DB      = "dB"
	Percent = "%"
	Seconds = "s"
)

// NotAvailable is printed in place of a missing measurement.
const NotAvailable = "n/a"

// Fixed formats v with prec decimals, or "n/a" when v is nil.
func Fixed(v *float64, prec int) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

// WithUnit formats v with prec decimals followed by the unit, e.g.
// "-80.1 dBm". It reports false when v is nil.
func WithUnit(v *float64, unit string, prec int) (string, bool) {
	if v == nil {
		return "", false
	}
	if unit == "" {
		return strconv.FormatFloat(*v, 'f', prec, 64), true
	}
	return fmt.Sprintf("%s %s", strconv.FormatFloat(*v, 'f', prec, 64), unit), true
}

// RatioPercent renders a 0..1 ratio as a whole percentage such as "42%".
func RatioPercent(r *float64) string {
	if r == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*r*100, 'f', 0, 64) + Percent
}

// Plain prints the shortest decimal form of v, or "null" when v is nil.
func Plain(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// PlainInt is Plain for integer codes.
func PlainInt(v *int) string {
	if v == nil {
		return "null"
	}
	return strconv.Itoa(*v)
}
