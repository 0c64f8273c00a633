// Package timeline keeps the per-device signalling history used to put a
// call's end in context: handovers, releases and congestion markers.
package timeline

import (
	"slices"
	"sync"

	"github.com/banshee-data/callrca/internal/nmf"
	"github.com/banshee-data/callrca/internal/radio"
)

// Event is one log line seen on a device, kept as raw text.
type Event struct {
	TS       int64  `json:"ts"`
	Header   string `json:"header"`
	Raw      string `json:"raw"`
	DeviceID string `json:"-"`
	// CallID is set for call-control events only.
	CallID string `json:"-"`
}

func (e Event) Timestamp() int64 { return e.TS }

// IsCallControl reports whether the event is a CAA/CAC/CAD/CAF/CARE line.
func (e Event) IsCallControl() bool { return nmf.IsCallControl(e.Header) }

// FromRecord converts rec to an Event.
func FromRecord(rec nmf.Record) Event {
	e := Event{
		TS:       rec.TS,
		Header:   rec.Header,
		Raw:      rec.Raw(),
		DeviceID: rec.DeviceID,
	}
	if rec.Kind() == nmf.KindCallControl {
		e.CallID = rec.Text(nmf.FieldCallID)
	}
	return e
}

// Log holds events per device. Events may be added in any order; reads
// return them sorted by time with ties in arrival order.
type Log struct {
	mu       sync.Mutex
	byDevice map[string][]Event
	dirty    map[string]bool
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{
		byDevice: make(map[string][]Event),
		dirty:    make(map[string]bool),
	}
}

// Add records rec under its device. Timeline headers without a device id
// are dropped; it reports whether the event was kept.
func (l *Log) Add(rec nmf.Record) bool {
	if rec.Kind() == nmf.KindTimeline && rec.DeviceID == "" {
		return false
	}
	l.Append(FromRecord(rec))
	return true
}

// Append adds e under e.DeviceID.
func (l *Log) Append(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := l.byDevice[e.DeviceID]
	if n := len(events); n > 0 && events[n-1].TS > e.TS {
		l.dirty[e.DeviceID] = true
	}
	l.byDevice[e.DeviceID] = append(events, e)
}

// Events returns the time-sorted events of a device. The result must not be
// modified.
func (l *Log) Events(deviceID string) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := l.byDevice[deviceID]
	if l.dirty[deviceID] {
		slices.SortStableFunc(events, func(a, b Event) int {
			switch {
			case a.TS < b.TS:
				return -1
			case a.TS > b.TS:
				return 1
			}
			return 0
		})
		l.dirty[deviceID] = false
	}
	return events
}

// Len returns the number of events stored for a device.
func (l *Log) Len(deviceID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byDevice[deviceID])
}

// Between returns the sorted events with from <= ts <= to.
func Between(events []Event, from, to int64) []Event {
	return radio.Window(events, from, to)
}
