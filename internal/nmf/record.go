package nmf

import (
	"math"
	"strconv"
	"strings"
)

// Record is one timestamped log line. Fields holds every raw value including
// the header at index 0 and the time text at index 1.
type Record struct {
	Line     int
	Header   string
	DeviceID string
	TS       int64
	Fields   []string
}

// Kind returns the routing kind of the record's header.
func (r Record) Kind() Kind { return KindOf(r.Header) }

// Raw rejoins the fields with commas.
func (r Record) Raw() string { return strings.Join(r.Fields, ",") }

// Value returns the raw text of field f, if the layout defines it and the
// record is long enough.
func (r Record) Value(f Field) (string, bool) {
	idx, ok := FieldIndex(r.Header, f)
	if !ok || idx >= len(r.Fields) {
		return "", false
	}
	return r.Fields[idx], true
}

// Text returns field f trimmed with surrounding quotes removed; missing
// fields are empty.
func (r Record) Text(f Field) string {
	v, _ := r.Value(f)
	return Unquote(v)
}

// Number parses field f; missing or non-numeric values are nil.
func (r Record) Number(f Field) *float64 {
	v, ok := r.Value(f)
	if !ok {
		return nil
	}
	return ParseNumber(v)
}

// Int parses field f as an integral code; fractional values are nil.
func (r Record) Int(f Field) *int {
	return ToInt(r.Number(f))
}

// Tail returns the fields from the start index of f onwards.
func (r Record) Tail(f Field) []string {
	idx, ok := FieldIndex(r.Header, f)
	if !ok || idx >= len(r.Fields) {
		return nil
	}
	return r.Fields[idx:]
}

// ParseNumber parses a decimal value. Empty, non-numeric and non-finite
// values are nil.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

// ToInt converts an integral number to int.
func ToInt(n *float64) *int {
	if n == nil || *n != math.Trunc(*n) {
		return nil
	}
	v := int(*n)
	return &v
}

// Unquote trims whitespace and one pair of surrounding double quotes.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
