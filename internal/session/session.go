// Package session groups call-control records into calls keyed by device and
// call id and decides how each call ended.
package session

import (
	"github.com/banshee-data/callrca/internal/nmf"
	"github.com/banshee-data/callrca/internal/timeline"
)

// ResultType is the outcome of a finalized call.
type ResultType string

const (
	Success          ResultType = "SUCCESS"
	CallSetupFailure ResultType = "CALL_SETUP_FAILURE"
	DropCall         ResultType = "DROP_CALL"
	IncompleteEnd    ResultType = "INCOMPLETE_OR_UNKNOWN_END"
	Unclassified     ResultType = "UNCLASSIFIED"

	// SetupFailureAlias is the legacy summary key counted alongside
	// CallSetupFailure. No session carries it.
	SetupFailureAlias ResultType = "SETUP_FAILURE"
)

// ResultTypes lists the outcomes in report order, alias included.
var ResultTypes = []ResultType{
	Success, CallSetupFailure, SetupFailureAlias, DropCall, IncompleteEnd, Unclassified,
}

// Disconnect codes with fixed meaning.
const (
	StatusNormal       = 1
	StatusFailed       = 2
	CauseNormalClear   = 16
	CauseNoUserReply   = 18
	CauseSetupTimerExp = 102
)

// Session is one call attempt on one device.
type Session struct {
	Key          string  `json:"sessionKey"`
	CallID       string  `json:"callId"`
	DeviceID     string  `json:"deviceId"`
	DialedNumber *string `json:"dialedNumber"`

	StartTs     *int64 `json:"startTs"`
	ConnectedTs *int64 `json:"connectedTs"`
	EndTsCad    *int64 `json:"endTsCad"`
	EndTsCaf    *int64 `json:"endTsCaf"`
	EndTsCare   *int64 `json:"endTsCare"`
	EndTsReal   *int64 `json:"endTsReal"`

	CadStatus *int `json:"cadStatus"`
	CadCause  *int `json:"cadCause"`
	CafReason *int `json:"cafReason"`

	ResultType    ResultType       `json:"resultType"`
	EventTimeline []timeline.Entry `json:"eventTimeline"`

	finalized bool
}

// Key returns the identity of a call.
func Key(deviceID, callID string) string { return deviceID + ":" + callID }

func newSession(deviceID, callID string) *Session {
	return &Session{
		Key:           Key(deviceID, callID),
		CallID:        callID,
		DeviceID:      deviceID,
		EventTimeline: []timeline.Entry{},
	}
}

// Connected reports whether the call ever reached the connected state.
func (s *Session) Connected() bool { return s.ConnectedTs != nil }

// Finalized reports whether Finalize has run.
func (s *Session) Finalized() bool { return s.finalized }

// apply folds one call-control record into the session. Records after
// finalization are ignored.
func (s *Session) apply(rec nmf.Record) {
	if s.finalized {
		return
	}
	ts := rec.TS
	switch rec.Header {
	case nmf.HeaderCallAttempt:
		if s.StartTs == nil || ts < *s.StartTs {
			s.StartTs = &ts
		}
		if dialed := rec.Text(nmf.FieldDialedNumber); dialed != "" {
			s.DialedNumber = &dialed
		}
	case nmf.HeaderCallConnect:
		if state := rec.Int(nmf.FieldCallState); state != nil && *state == nmf.CallStateConnected && s.ConnectedTs == nil {
			s.ConnectedTs = &ts
		}
	case nmf.HeaderCallDisconnect:
		keep(&s.CadStatus, rec.Int(nmf.FieldDisconnectStatus))
		keep(&s.CadCause, rec.Int(nmf.FieldDisconnectCause))
		s.EndTsCad = &ts
	case nmf.HeaderCallFailure:
		keep(&s.CafReason, rec.Int(nmf.FieldFailureReason))
		s.EndTsCaf = &ts
	case nmf.HeaderCallRelease:
		s.EndTsCare = &ts
	}
}

// keep overwrites dst only with a parsed value.
func keep(dst **int, v *int) {
	if v != nil {
		*dst = v
	}
}

// Finalize derives EndTsReal and ResultType. It runs once; later calls are
// no-ops.
func (s *Session) Finalize() {
	if s.finalized {
		return
	}
	s.finalized = true

	switch {
	case s.EndTsCare != nil:
		s.EndTsReal = s.EndTsCare
	case s.EndTsCaf != nil:
		s.EndTsReal = s.EndTsCaf
	default:
		s.EndTsReal = s.EndTsCad
	}
	s.ResultType = s.outcome()
}

func (s *Session) outcome() ResultType {
	status, cause := s.CadStatus, s.CadCause
	is := func(v *int, want int) bool { return v != nil && *v == want }

	switch {
	case is(status, StatusNormal) && is(cause, CauseNormalClear):
		return Success
	case !s.Connected() && (s.EndTsCaf != nil || is(status, StatusFailed) || is(cause, CauseSetupTimerExp)):
		return CallSetupFailure
	case s.Connected() && (s.EndTsCare != nil || is(status, StatusFailed) || (cause != nil && *cause != CauseNormalClear)):
		return DropCall
	case s.Connected() && s.EndTsCad == nil && s.EndTsCaf == nil && s.EndTsCare == nil:
		return IncompleteEnd
	default:
		return Unclassified
	}
}

// DurationSeconds is the time from attempt to end, when both are known and
// ordered.
func (s *Session) DurationSeconds() (float64, bool) {
	if s.StartTs == nil || s.EndTsReal == nil || *s.EndTsReal < *s.StartTs {
		return 0, false
	}
	return float64(*s.EndTsReal-*s.StartTs) / 1000, true
}

// AttachTimeline sets the session's event timeline from the device's sorted
// events: everything within [StartTs, EndTsReal] except call-control lines
// that belong to another call, deduplicated.
func (s *Session) AttachTimeline(deviceEvents []timeline.Event) {
	if s.StartTs == nil || s.EndTsReal == nil {
		s.EventTimeline = []timeline.Entry{}
		return
	}
	window := timeline.Between(deviceEvents, *s.StartTs, *s.EndTsReal)
	own := make([]timeline.Event, 0, len(window))
	for _, e := range window {
		if e.IsCallControl() && (e.CallID != s.CallID || e.DeviceID != s.DeviceID) {
			continue
		}
		own = append(own, e)
	}
	s.EventTimeline = timeline.Entries(timeline.Dedup(own))
}
