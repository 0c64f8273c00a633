package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"00:00:00", 0, true},
		{"00:00:01.5", 1500, true},
		{"00:00:01.05", 1050, true},
		{"00:00:01.005", 1005, true},
		{"23:59:59.999", 86399999, true},
		{" 12:00:00.000 ", 43200000, true},
		{"1:00:00", 0, false},
		{"12:00", 0, false},
		{"12:00:00.1234", 0, false},
		{"", 0, false},
		{"garbage", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimeOfDay(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestReconstructorNeedsAnchor(t *testing.T) {
	t.Parallel()

	r := NewReconstructor(6 * time.Hour)
	_, ok := r.Absolute("10:00:00.000")
	assert.False(t, ok)
	assert.False(t, r.HasBase())
}

func TestReconstructorAbsolute(t *testing.T) {
	t.Parallel()

	r := NewReconstructor(6 * time.Hour)
	r.SetBaseDate(time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC))

	ts, ok := r.Absolute("23:00:10.000")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 23, 23, 0, 10, 0, time.UTC).UnixMilli(), ts)
	assert.Equal(t, "2025-12-23T23:00:10.000Z", FormatMillis(ts))
}

func TestReconstructorMidnightRollover(t *testing.T) {
	t.Parallel()

	r := NewReconstructor(6 * time.Hour)
	base := time.Date(2025, 12, 23, 0, 0, 0, 0, time.UTC)
	r.SetBaseDate(base)

	before, ok := r.Absolute("23:59:59.900")
	require.True(t, ok)
	after, ok := r.Absolute("00:00:00.100")
	require.True(t, ok)

	assert.Equal(t, int64(200), after-before)
	assert.Equal(t, int64(1), r.DayOffset())

	// Small backwards jitter is not a rollover.
	jitter, ok := r.Absolute("00:00:00.050")
	require.True(t, ok)
	assert.Equal(t, int64(1), r.DayOffset())
	assert.Equal(t, after-50, jitter)
}

func TestReconstructorBadTextKeepsState(t *testing.T) {
	t.Parallel()

	r := NewReconstructor(0)
	r.SetBaseDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	_, ok := r.Absolute("22:00:00")
	require.True(t, ok)

	_, ok = r.Absolute("not-a-time")
	assert.False(t, ok)

	next, ok := r.Absolute("01:00:00")
	require.True(t, ok)
	assert.Equal(t, "2025-01-02T01:00:00.000Z", FormatMillis(next))
}

func TestSetBaseDateResetsRollover(t *testing.T) {
	t.Parallel()

	r := NewReconstructor(6 * time.Hour)
	r.SetBaseDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	r.Absolute("23:00:00")
	r.Absolute("01:00:00")
	require.Equal(t, int64(1), r.DayOffset())

	r.SetBaseDate(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, int64(0), r.DayOffset())
	ts, ok := r.Absolute("01:00:00")
	require.True(t, ok)
	assert.Equal(t, "2025-03-01T01:00:00.000Z", FormatMillis(ts))
}

func TestFormatMillisPtr(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FormatMillisPtr(nil))
	ms := int64(0)
	got := FormatMillisPtr(&ms)
	require.NotNil(t, got)
	assert.Equal(t, "1970-01-01T00:00:00.000Z", *got)
}
