package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/callrca/internal/nmf"
	"github.com/banshee-data/callrca/internal/testutil"
)

func records(t *testing.T, log *testutil.Log) []nmf.Record {
	t.Helper()
	recs, err := nmf.ReadAll(nmf.NewReader(log.Reader(), 0, nil))
	require.NoError(t, err)
	return recs
}

func TestLogSortsStablyByTime(t *testing.T) {
	l := NewLog()
	l.Append(Event{TS: 3000, Header: "RRCSM", Raw: "a", DeviceID: "1"})
	l.Append(Event{TS: 1000, Header: "SHO", Raw: "b", DeviceID: "1"})
	l.Append(Event{TS: 3000, Header: "RRCSM", Raw: "c", DeviceID: "1"})
	l.Append(Event{TS: 2000, Header: "L3MM", Raw: "d", DeviceID: "2"})

	got := l.Events("1")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{got[0].Raw, got[1].Raw, got[2].Raw})
	assert.Equal(t, 1, l.Len("2"))
	assert.Empty(t, l.Events("unknown"))
}

func TestAddFromRecords(t *testing.T) {
	log := testutil.NewLog("01.01.2026").
		Event("RRCSM", "00:00:01.000", "1", "CONNECTED").
		Event("RRCSM", "00:00:02.000", "").
		CAA("00:00:03.000", "1", "7", "123").
		TXPC("00:00:04.000", "", 10)

	l := NewLog()
	var kept []bool
	for _, rec := range records(t, log) {
		if rec.Kind() == nmf.KindAnchor {
			continue
		}
		kept = append(kept, l.Add(rec))
	}
	assert.Equal(t, []bool{true, false, true, true}, kept)

	dev := l.Events("1")
	require.Len(t, dev, 2)
	assert.Equal(t, "RRCSM,00:00:01.000,,1,CONNECTED", dev[0].Raw)
	assert.Equal(t, "", dev[0].CallID)
	assert.True(t, dev[1].IsCallControl())
	assert.Equal(t, "7", dev[1].CallID)
	assert.Equal(t, 1, l.Len(""))
}

func TestBetweenIsInclusive(t *testing.T) {
	events := []Event{{TS: 1000}, {TS: 2000}, {TS: 2000}, {TS: 3000}}
	assert.Len(t, Between(events, 2000, 2000), 2)
	assert.Len(t, Between(events, 1000, 3000), 4)
	assert.Empty(t, Between(events, 3001, 4000))
	assert.Empty(t, Between(events, 3000, 1000))
}

func TestDedup(t *testing.T) {
	events := []Event{
		{TS: 1, Header: "SHO", Raw: "x"},
		{TS: 1, Header: "SHO", Raw: "x"},
		{TS: 1, Header: "SHO", Raw: "y"},
		{TS: 2, Header: "SHO", Raw: "x"},
	}
	got := Dedup(events)
	require.Len(t, got, 3)
	assert.Equal(t, "y", got[1].Raw)
	assert.Equal(t, int64(2), got[2].TS)
	assert.Equal(t, Key(events[0]), Key(events[1]))
	assert.NotEqual(t, Key(events[0]), Key(events[2]))
}

func TestEntries(t *testing.T) {
	got := Entries([]Event{{TS: 1767225600000, Header: "SHO", Raw: "SHO,00:00:00.000,,1"}})
	require.Len(t, got, 1)
	assert.Equal(t, "2026-01-01T00:00:00.000Z", got[0].Time)
	assert.Equal(t, "SHO", got[0].Event)
	assert.Equal(t, "SHO SHO,00:00:00.000,,1", got[0].Text())
}

func TestHandoverPatternMatchesWholeWords(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"SHO SHO,00:00:01.000,,1,ADD", true},
		{"L3MM HANDOVER_COMMAND", false},
		{"L3MM handover complete", true},
		{"RRCSM HO,1", true},
		{"MIMOMEAS MIMOMEAS,00:00:01.000", false},
		{"L3SM PHONE_NUMBER", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HandoverPattern.MatchString(tt.text), tt.text)
	}
}

func TestLastHandoverDelta(t *testing.T) {
	entries := []Entry{
		{TS: 1000, Event: "SHO", Details: "SHO,1"},
		{TS: 4000, Event: "SHO", Details: "SHO,2"},
		{TS: 5000, Event: "RRCSM", Details: "RRCSM,3"},
		{TS: 9000, Event: "SHO", Details: "SHO,4"},
	}
	got, ok := LastHandoverDelta(entries, 6500)
	require.True(t, ok)
	assert.InDelta(t, 2.5, got, 1e-9)

	_, ok = LastHandoverDelta(entries, 500)
	assert.False(t, ok)
}

func TestAnyMatch(t *testing.T) {
	entries := []Entry{
		{Event: "L3SM", Details: "L3SM,RRC_CONNECTION_SETUP"},
		{Event: "L3SM", Details: "L3SM,NO RESOURCE AVAILABLE"},
	}
	assert.True(t, AnyMatch(entries, CongestionPattern))
	assert.False(t, AnyMatch(entries, DirectTransferPattern))
	assert.False(t, AnyMatch(entries[:1], ReleasePattern))
	assert.False(t, AnyMatch(nil, ReleasePattern))
}

func TestEventPredicates(t *testing.T) {
	assert.True(t, IsRRCOrHandover(Event{Header: "RRCSM"}))
	assert.True(t, IsRRCOrHandover(Event{Header: "sho"}))
	assert.False(t, IsRRCOrHandover(Event{Header: "L3MM"}))

	assert.True(t, IsReleaseOrReject(Event{Header: "CARE", Raw: "CARE,00:00:01.000"}))
	assert.True(t, IsReleaseOrReject(Event{Header: "L3MM", Raw: "L3MM,CM_SERVICE_REJECT"}))
	assert.False(t, IsReleaseOrReject(Event{Header: "RRCSM", Raw: "RRCSM,CONNECTED"}))

	assert.True(t, IsReleaseNearEnd("RRC_CONNECTION_RELEASE"))
	assert.False(t, IsReleaseNearEnd("CAUSE 16"))
}
