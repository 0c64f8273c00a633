// Package testutil provides shared test utilities and fixtures.
//
// The NMF builders write log lines in the same field layout a drive-test
// tool produces, so package tests can exercise the full parsing path
// instead of constructing records by hand.
package testutil

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Pilot is one MIMOMEAS pilot block.
type Pilot struct {
	CellID int
	UARFCN int
	PSC    int
	RSCP   float64
	EcNo   float64
	RSSI   float64
}

// Log accumulates NMF lines.
type Log struct {
	lines []string
}

// NewLog starts a log with a #START anchor carrying date (DD.MM.YYYY).
func NewLog(date string) *Log {
	l := &Log{}
	return l.Line("#START", "00:00:00.000", "", strconv.Quote(date))
}

// Line appends a raw line built from fields joined by commas.
func (l *Log) Line(fields ...string) *Log {
	l.lines = append(l.lines, strings.Join(fields, ","))
	return l
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// CAA appends a call attempt.
func (l *Log) CAA(ts, device, callID, dialed string) *Log {
	return l.Line("CAA", ts, "1", callID, device, "1", "1", strconv.Quote(dialed), "", "30000", "", "")
}

// CAC appends a call state change.
func (l *Log) CAC(ts, device, callID string, state int) *Log {
	return l.Line("CAC", ts, "1", callID, device, "1", strconv.Itoa(state), "0", "1")
}

// CAD appends a call disconnect.
func (l *Log) CAD(ts, device, callID string, status, cause int) *Log {
	return l.Line("CAD", ts, "1", callID, device, "1", strconv.Itoa(status), strconv.Itoa(cause))
}

// CAF appends a call setup failure.
func (l *Log) CAF(ts, device, callID string, reason int) *Log {
	return l.Line("CAF", ts, "1", callID, device, "1", strconv.Itoa(reason))
}

// CARE appends a call release.
func (l *Log) CARE(ts, device, callID string) *Log {
	return l.Line("CARE", ts, "1", callID, device, "1")
}

// Mimo appends a MIMOMEAS row with 8-field pilot blocks.
func (l *Log) Mimo(ts, device string, pilots ...Pilot) *Log {
	fields := []string{"MIMOMEAS", ts, "", device, "5", "1", "0"}
	for _, p := range pilots {
		fields = append(fields,
			strconv.Itoa(p.CellID), strconv.Itoa(p.UARFCN), strconv.Itoa(p.PSC), "0", "",
			num(p.RSCP), num(p.EcNo), num(p.RSSI))
	}
	return l.Line(fields...)
}

// TXPC appends an uplink transmit power sample.
func (l *Log) TXPC(ts, device string, tx float64) *Log {
	return l.Line("TXPC", ts, "", device, num(tx))
}

// RLCBLER appends a BLER report. Values are written with one decimal so
// they read as percentages.
func (l *Log) RLCBLER(ts, device string, bler ...float64) *Log {
	fields := []string{"RLCBLER", ts, "", device}
	for _, b := range bler {
		fields = append(fields, strconv.FormatFloat(b, 'f', 1, 64))
	}
	return l.Line(fields...)
}

// Event appends a signalling timeline line such as RRCSM or SHO.
func (l *Log) Event(header, ts, device string, detail ...string) *Log {
	return l.Line(append([]string{header, ts, "", device}, detail...)...)
}

// String renders the log with a trailing newline.
func (l *Log) String() string {
	return strings.Join(l.lines, "\n") + "\n"
}

// Reader returns the log as an io.Reader.
func (l *Log) Reader() io.Reader {
	return strings.NewReader(l.String())
}

// Clock formats a time of day from seconds past midnight, e.g. 3.5 gives
// "00:00:03.500".
func Clock(seconds float64) string {
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}
