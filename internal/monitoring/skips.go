package monitoring

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Skip reasons recorded while ingesting a drive-test log.
const (
	SkipTokenize      = "tokenize"
	SkipNoAnchor      = "no_anchor"
	SkipBadAnchor     = "bad_anchor"
	SkipBadTime       = "bad_time"
	SkipMissingCallID = "missing_call_id"
	SkipMissingDevice = "missing_device"
	SkipEmptyRadioRow = "empty_radio_row"
)

// SkipCounter tallies records dropped during ingestion by reason. The engine
// never logs per record; it reports one summary line at the end of a run.
type SkipCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewSkipCounter returns an empty counter.
func NewSkipCounter() *SkipCounter {
	return &SkipCounter{counts: make(map[string]int)}
}

// Add records one skipped record for reason.
func (c *SkipCounter) Add(reason string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.counts[reason]++
	c.mu.Unlock()
}

// Total returns the number of skipped records across all reasons.
func (c *SkipCounter) Total() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// Counts returns a copy of the per-reason tallies.
func (c *SkipCounter) Counts() map[string]int {
	out := make(map[string]int)
	if c == nil {
		return out
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Summary renders the tallies as "reason=n" pairs in reason order.
func (c *SkipCounter) Summary() string {
	counts := c.Counts()
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

// Report logs the summary through Logf when anything was skipped.
func (c *SkipCounter) Report(source string) {
	if c.Total() == 0 {
		return
	}
	Logf("[callrca] %s: skipped %d records (%s)", source, c.Total(), c.Summary())
}
