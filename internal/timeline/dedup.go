package timeline

import (
	"strconv"

	"github.com/zeebo/xxh3"
)

// Key hashes the identity of an event: its time, header and raw text.
func Key(e Event) uint64 {
	buf := make([]byte, 0, 32+len(e.Header)+len(e.Raw))
	buf = strconv.AppendInt(buf, e.TS, 10)
	buf = append(buf, '|')
	buf = append(buf, e.Header...)
	buf = append(buf, '|')
	buf = append(buf, e.Raw...)
	return xxh3.Hash(buf)
}

// Dedup drops repeated events, keeping the first occurrence.
func Dedup(events []Event) []Event {
	seen := make(map[uint64][]Event, len(events))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		k := Key(e)
		dup := false
		for _, prev := range seen[k] {
			if prev.TS == e.TS && prev.Header == e.Header && prev.Raw == e.Raw {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[k] = append(seen[k], e)
		out = append(out, e)
	}
	return out
}
