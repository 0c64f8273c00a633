package timeline

import (
	"regexp"
	"strings"

	"github.com/banshee-data/callrca/internal/nmf"
	"github.com/banshee-data/callrca/internal/timeutil"
)

// Entry is an event rendered for a session's timeline.
type Entry struct {
	TS      int64  `json:"ts"`
	Time    string `json:"time"`
	Event   string `json:"event"`
	Details string `json:"details"`
}

// Text is what the keyword heuristics look at.
func (e Entry) Text() string { return e.Event + " " + e.Details }

// Entries renders events in order.
func Entries(events []Event) []Entry {
	out := make([]Entry, len(events))
	for i, e := range events {
		out[i] = Entry{TS: e.TS, Time: timeutil.FormatMillis(e.TS), Event: e.Header, Details: e.Raw}
	}
	return out
}

var (
	// HandoverPattern matches soft/hard handover markers as whole words.
	HandoverPattern = regexp.MustCompile(`(?i)\b(SHO|HO|HANDOVER)\b`)
	// ReleasePattern matches release or reject wording in signalling text.
	ReleasePattern = regexp.MustCompile(`(?i)(REJECT|RELEASE|CAUSE|FAIL)`)
	// CongestionPattern matches admission and resource shortage wording.
	CongestionPattern = regexp.MustCompile(`(?i)(NO[_\s-]?RESOURCE|ADMISSION|CONGEST|POWER LIMIT|CODE LIMIT|CE FULL|CHANNEL ALLOCATION FAILURE|NO RADIO RESOURCE)`)
	// DirectTransferPattern matches RRC direct transfer messages.
	DirectTransferPattern = regexp.MustCompile(`(?i)DIRECT_TRANSFER`)

	releaseNearEndPattern = regexp.MustCompile(`(?i)(RELEASE|REJECT|FAIL)`)
	callControlEndPattern = regexp.MustCompile(`(?i)(CAD|CAF|CARE)`)
)

// AnyMatch reports whether any entry's text matches re.
func AnyMatch(entries []Entry, re *regexp.Regexp) bool {
	for _, e := range entries {
		if re.MatchString(e.Text()) {
			return true
		}
	}
	return false
}

// LastHandoverDelta returns the seconds between the last handover entry at
// or before endTs and endTs.
func LastHandoverDelta(entries []Entry, endTs int64) (float64, bool) {
	var last int64
	found := false
	for _, e := range entries {
		if e.TS > endTs || !HandoverPattern.MatchString(e.Text()) {
			continue
		}
		if !found || e.TS > last {
			last, found = e.TS, true
		}
	}
	if !found {
		return 0, false
	}
	return float64(endTs-last) / 1000, true
}

// IsRRCOrHandover reports whether e is an RRC state or soft handover line.
func IsRRCOrHandover(e Event) bool {
	h := strings.ToUpper(e.Header)
	return h == nmf.HeaderRRCState || h == nmf.HeaderSoftHO
}

// IsReleaseOrReject reports whether e looks like the end of a signalling
// exchange: release/reject wording or a call-control end header.
func IsReleaseOrReject(e Event) bool {
	return ReleasePattern.MatchString(e.Raw) || callControlEndPattern.MatchString(e.Header)
}

// IsReleaseNearEnd reports whether raw text names a release, reject or
// failure.
func IsReleaseNearEnd(raw string) bool {
	return releaseNearEndPattern.MatchString(raw)
}
