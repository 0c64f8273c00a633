package timeutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

var todPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(?:\.(\d{1,3}))?$`)

// ParseTimeOfDay converts "HH:MM:SS[.mmm]" into milliseconds since midnight.
// Fractions shorter than three digits are right-padded, so ".5" is 500 ms.
func ParseTimeOfDay(text string) (int64, bool) {
	m := todPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss, _ := strconv.Atoi(m[3])
	frac := m[4]
	if frac == "" {
		frac = "0"
	}
	for len(frac) < 3 {
		frac += "0"
	}
	ms, _ := strconv.Atoi(frac)
	return int64(((hh*60+mm)*60+ss)*1000 + ms), true
}

// Reconstructor turns per-record time-of-day text into absolute unix
// milliseconds. It needs one anchor date; a time-of-day that jumps back by
// more than the rollover threshold is taken as the log crossing midnight.
type Reconstructor struct {
	rollover  int64
	base      int64
	hasBase   bool
	prevTod   int64
	hasPrev   bool
	dayOffset int64
}

// NewReconstructor returns a Reconstructor with no anchor date. A
// non-positive rollover falls back to six hours.
func NewReconstructor(rollover time.Duration) *Reconstructor {
	if rollover <= 0 {
		rollover = 6 * time.Hour
	}
	return &Reconstructor{rollover: rollover.Milliseconds()}
}

// SetBaseDate anchors the reconstructor at midnight UTC of date and resets
// the rollover state.
func (r *Reconstructor) SetBaseDate(date time.Time) {
	y, m, d := date.Date()
	r.base = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli()
	r.hasBase = true
	r.hasPrev = false
	r.dayOffset = 0
}

// HasBase reports whether an anchor date has been set.
func (r *Reconstructor) HasBase() bool { return r.hasBase }

// DayOffset returns the number of midnight rollovers observed since the
// last anchor.
func (r *Reconstructor) DayOffset() int64 { return r.dayOffset }

// Absolute returns the instant for text. It fails without an anchor date or
// on unparsable text; failed calls leave the rollover state untouched.
func (r *Reconstructor) Absolute(text string) (int64, bool) {
	if !r.hasBase {
		return 0, false
	}
	tod, ok := ParseTimeOfDay(text)
	if !ok {
		return 0, false
	}
	if r.hasPrev && tod < r.prevTod-r.rollover {
		r.dayOffset++
	}
	r.prevTod = tod
	r.hasPrev = true
	return r.base + r.dayOffset*dayMillis + tod, true
}

// FormatMillis renders unix milliseconds as an RFC 3339 UTC timestamp with
// millisecond precision.
func FormatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// FormatMillisPtr is FormatMillis for optional instants; nil stays nil.
func FormatMillisPtr(ms *int64) *string {
	if ms == nil {
		return nil
	}
	s := FormatMillis(*ms)
	return &s
}
