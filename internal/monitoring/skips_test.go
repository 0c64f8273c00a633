package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkipCounter(t *testing.T) {
	c := NewSkipCounter()
	assert.Equal(t, 0, c.Total())
	assert.Equal(t, "none", c.Summary())

	c.Add(SkipBadTime)
	c.Add(SkipBadTime)
	c.Add(SkipMissingCallID)

	assert.Equal(t, 3, c.Total())
	assert.Equal(t, map[string]int{SkipBadTime: 2, SkipMissingCallID: 1}, c.Counts())
	assert.Equal(t, "bad_time=2 missing_call_id=1", c.Summary())
}

func TestSkipCounterCountsIsACopy(t *testing.T) {
	c := NewSkipCounter()
	c.Add(SkipTokenize)
	counts := c.Counts()
	counts[SkipTokenize] = 99
	assert.Equal(t, 1, c.Counts()[SkipTokenize])
}

func TestSkipCounterNilSafe(t *testing.T) {
	var c *SkipCounter
	c.Add(SkipBadTime)
	assert.Equal(t, 0, c.Total())
	assert.Empty(t, c.Counts())
}

func TestSkipCounterReport(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})

	c := NewSkipCounter()
	c.Report("empty.nmf")
	assert.Empty(t, lines, "nothing skipped, nothing logged")

	c.Add(SkipNoAnchor)
	c.Report("drive.nmf")
	if assert.Len(t, lines, 1) {
		assert.Equal(t, "[callrca] drive.nmf: skipped 1 records (no_anchor=1)", lines[0])
	}
}
