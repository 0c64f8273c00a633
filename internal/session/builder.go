package session

import (
	"slices"
	"strconv"

	"github.com/banshee-data/callrca/internal/monitoring"
	"github.com/banshee-data/callrca/internal/nmf"
)

// Builder collects sessions during the forward pass over a log.
type Builder struct {
	sessions map[string]*Session
	order    []*Session
	skips    *monitoring.SkipCounter
}

// NewBuilder returns an empty builder. skips may be nil.
func NewBuilder(skips *monitoring.SkipCounter) *Builder {
	return &Builder{
		sessions: make(map[string]*Session),
		skips:    skips,
	}
}

// Ingest applies a call-control record to the session it names, creating the
// session on first sight. Records of other kinds are ignored; call-control
// records without a call id or device id are counted as skipped.
func (b *Builder) Ingest(rec nmf.Record) (*Session, bool) {
	if rec.Kind() != nmf.KindCallControl {
		return nil, false
	}
	callID := rec.Text(nmf.FieldCallID)
	if callID == "" {
		b.skips.Add(monitoring.SkipMissingCallID)
		return nil, false
	}
	deviceID := rec.DeviceID
	if deviceID == "" {
		b.skips.Add(monitoring.SkipMissingDevice)
		return nil, false
	}

	key := Key(deviceID, callID)
	s, ok := b.sessions[key]
	if !ok {
		s = newSession(deviceID, callID)
		b.sessions[key] = s
		b.order = append(b.order, s)
	}
	s.apply(rec)
	return s, true
}

// Len returns the number of sessions seen.
func (b *Builder) Len() int { return len(b.order) }

// Get returns the session for a device and call id.
func (b *Builder) Get(deviceID, callID string) (*Session, bool) {
	s, ok := b.sessions[Key(deviceID, callID)]
	return s, ok
}

// Finalize finalizes every session and returns them ordered by start time,
// sessions without a start last, then by numeric call id.
func (b *Builder) Finalize() []*Session {
	out := make([]*Session, len(b.order))
	copy(out, b.order)
	for _, s := range out {
		s.Finalize()
	}
	slices.SortStableFunc(out, compareSessions)
	return out
}

func compareSessions(a, b *Session) int {
	switch {
	case a.StartTs == nil && b.StartTs != nil:
		return 1
	case a.StartTs != nil && b.StartTs == nil:
		return -1
	case a.StartTs != nil && *a.StartTs != *b.StartTs:
		if *a.StartTs < *b.StartTs {
			return -1
		}
		return 1
	}
	ai, aerr := strconv.Atoi(a.CallID)
	bi, berr := strconv.Atoi(b.CallID)
	if aerr == nil && berr == nil {
		return ai - bi
	}
	return 0
}
