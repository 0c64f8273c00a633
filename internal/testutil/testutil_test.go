package testutil

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	// Verify nil error doesn't cause issues
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	AssertError(t, errors.New("expected"))
}

func TestNewLogStartsWithAnchor(t *testing.T) {
	t.Parallel()

	got := NewLog("23.12.2025").String()
	if got != "#START,00:00:00.000,,\"23.12.2025\"\n" {
		t.Errorf("NewLog() = %q", got)
	}
}

func TestCallControlLines(t *testing.T) {
	t.Parallel()

	got := NewLog("23.12.2025").
		CAA("23:32:40.100", "5", "11", "0537547011").
		CAC("23:32:43.200", "5", "11", 3).
		CAD("23:32:45.400", "5", "9", 1, 16).
		CAF("23:32:46.000", "5", "12", 7).
		CARE("23:32:47.000", "5", "12").
		String()

	want := []string{
		`#START,00:00:00.000,,"23.12.2025"`,
		`CAA,23:32:40.100,1,11,5,1,1,"0537547011",,30000,,`,
		`CAC,23:32:43.200,1,11,5,1,3,0,1`,
		`CAD,23:32:45.400,1,9,5,1,1,16`,
		`CAF,23:32:46.000,1,12,5,1,7`,
		`CARE,23:32:47.000,1,12,5,1`,
	}
	if got != strings.Join(want, "\n")+"\n" {
		t.Errorf("log mismatch:\n%s", got)
	}
}

func TestRadioLines(t *testing.T) {
	t.Parallel()

	got := NewLog("01.01.2026").
		Mimo("00:00:01.000", "1", Pilot{CellID: 7, UARFCN: 10700, PSC: 100, RSCP: -70.5, EcNo: -6, RSSI: -60}).
		TXPC("00:00:01.000", "1", 12.5).
		RLCBLER("00:00:01.000", "1", 2, 100).
		Event("SHO", "00:00:02.000", "1", "ADD").
		String()

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	if lines[1] != "MIMOMEAS,00:00:01.000,,1,5,1,0,7,10700,100,0,,-70.5,-6,-60" {
		t.Errorf("mimo line = %q", lines[1])
	}
	if lines[2] != "TXPC,00:00:01.000,,1,12.5" {
		t.Errorf("txpc line = %q", lines[2])
	}
	if lines[3] != "RLCBLER,00:00:01.000,,1,2.0,100.0" {
		t.Errorf("rlcbler line = %q", lines[3])
	}
	if lines[4] != "SHO,00:00:02.000,,1,ADD" {
		t.Errorf("event line = %q", lines[4])
	}
}

func TestReader(t *testing.T) {
	t.Parallel()

	data, err := io.ReadAll(NewLog("01.01.2026").Reader())
	AssertNoError(t, err)
	if !strings.HasPrefix(string(data), "#START") {
		t.Errorf("reader content = %q", data)
	}
}

func TestClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{3.5, "00:00:03.500"},
		{61.25, "00:01:01.250"},
		{3600 + 0.001, "01:00:00.001"},
		{86399.999, "23:59:59.999"},
	}
	for _, tt := range tests {
		if got := Clock(tt.seconds); got != tt.want {
			t.Errorf("Clock(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
