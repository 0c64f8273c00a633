package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/callrca/internal/monitoring"
	"github.com/banshee-data/callrca/internal/nmf"
	"github.com/banshee-data/callrca/internal/testutil"
	"github.com/banshee-data/callrca/internal/timeline"
)

func records(t *testing.T, log *testutil.Log) []nmf.Record {
	t.Helper()
	recs, err := nmf.ReadAll(nmf.NewReader(log.Reader(), 0, nil))
	require.NoError(t, err)
	return recs
}

func build(t *testing.T, log *testutil.Log) (*Builder, []*Session) {
	t.Helper()
	b := NewBuilder(nil)
	for _, rec := range records(t, log) {
		b.Ingest(rec)
	}
	return b, b.Finalize()
}

func only(t *testing.T, log *testutil.Log) *Session {
	t.Helper()
	_, sessions := build(t, log)
	require.Len(t, sessions, 1)
	return sessions[0]
}

func TestOutcomes(t *testing.T) {
	tests := []struct {
		name string
		log  *testutil.Log
		want ResultType
	}{
		{
			name: "normal clearing",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAC("10:00:02.000", "5", "1", 3).
				CAD("10:00:30.000", "5", "1", 1, 16),
			want: Success,
		},
		{
			name: "normal clearing wins over release",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAC("10:00:02.000", "5", "1", 3).
				CAD("10:00:30.000", "5", "1", 1, 16).
				CARE("10:00:30.100", "5", "1"),
			want: Success,
		},
		{
			name: "setup failure marker",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAF("10:00:05.000", "5", "1", 2),
			want: CallSetupFailure,
		},
		{
			name: "setup timer expiry",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAD("10:00:30.000", "5", "1", 1, 102),
			want: CallSetupFailure,
		},
		{
			name: "failed status before connect",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAD("10:00:30.000", "5", "1", 2, 16),
			want: CallSetupFailure,
		},
		{
			name: "release after connect",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAC("10:00:02.000", "5", "1", 3).
				CARE("10:00:40.000", "5", "1"),
			want: DropCall,
		},
		{
			name: "abnormal cause after connect",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAC("10:00:02.000", "5", "1", 3).
				CAD("10:00:40.000", "5", "1", 1, 41),
			want: DropCall,
		},
		{
			name: "connected without end marker",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAC("10:00:02.000", "5", "1", 3),
			want: IncompleteEnd,
		},
		{
			name: "attempt only",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600"),
			want: Unclassified,
		},
		{
			name: "non-connect call state",
			log: testutil.NewLog("23.12.2025").
				CAA("10:00:00.000", "5", "1", "0600").
				CAC("10:00:01.000", "5", "1", 1).
				CARE("10:00:04.000", "5", "1"),
			want: Unclassified,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, only(t, tt.log).ResultType)
		})
	}
}

func TestCallControlIsolation(t *testing.T) {
	log := testutil.NewLog("23.12.2025").
		Line("CAA", "23:32:40.100", "1", "11", "5", "1", "1", `"0537547011"`, "", "30000", "", "").
		Line("CAC", "23:32:43.200", "1", "11", "5", "1", "3", "0", "1").
		Line("CAD", "23:32:45.400", "1", "9", "5", "1", "1", "16")

	b, sessions := build(t, log)
	require.Len(t, sessions, 2)

	call11, ok := b.Get("5", "11")
	require.True(t, ok)
	assert.NotNil(t, call11.ConnectedTs)
	assert.Equal(t, IncompleteEnd, call11.ResultType)
	assert.Nil(t, call11.CadStatus)
	assert.Nil(t, call11.CadCause)
	assert.Nil(t, call11.EndTsCad)
	assert.Nil(t, call11.EndTsCaf)
	assert.Nil(t, call11.EndTsCare)
	require.NotNil(t, call11.DialedNumber)
	assert.Equal(t, "0537547011", *call11.DialedNumber)

	call9, ok := b.Get("5", "9")
	require.True(t, ok)
	assert.Equal(t, Success, call9.ResultType)
	assert.Nil(t, call9.StartTs)
}

func TestSameCallIDOnOtherDevice(t *testing.T) {
	log := testutil.NewLog("23.12.2025").
		CAA("10:00:00.000", "5", "1", "0600").
		CAA("10:00:00.500", "6", "1", "0700").
		CAC("10:00:02.000", "5", "1", 3).
		CAF("10:00:03.000", "6", "1", 2)

	b, _ := build(t, log)
	five, _ := b.Get("5", "1")
	six, _ := b.Get("6", "1")
	assert.Equal(t, IncompleteEnd, five.ResultType)
	assert.Equal(t, CallSetupFailure, six.ResultType)
	assert.Nil(t, six.ConnectedTs)
}

func TestCodesKeepLastParsedValue(t *testing.T) {
	log := testutil.NewLog("23.12.2025").
		CAA("10:00:00.000", "5", "1", "0600").
		CAD("10:00:10.000", "5", "1", 2, 102).
		Line("CAD", "10:00:11.000", "1", "1", "5", "1", "", "x")

	s := only(t, log)
	require.NotNil(t, s.CadStatus)
	require.NotNil(t, s.CadCause)
	assert.Equal(t, 2, *s.CadStatus)
	assert.Equal(t, 102, *s.CadCause)
	require.NotNil(t, s.EndTsCad)
	assert.Equal(t, *s.StartTs+11000, *s.EndTsCad)
}

func TestStartIsEarliestAttemptAndConnectIsFirst(t *testing.T) {
	log := testutil.NewLog("23.12.2025").
		CAA("10:00:05.000", "5", "1", "").
		CAA("10:00:01.000", "5", "1", "0600").
		CAC("10:00:06.000", "5", "1", 3).
		CAC("10:00:07.000", "5", "1", 3)

	s := only(t, log)
	first := records(t, testutil.NewLog("23.12.2025").CAA("10:00:01.000", "5", "1", ""))[0].TS
	assert.Equal(t, first, *s.StartTs)
	assert.Equal(t, first+5000, *s.ConnectedTs)
	assert.Equal(t, "0600", *s.DialedNumber)
}

func TestEndTsRealPriority(t *testing.T) {
	log := testutil.NewLog("23.12.2025").
		CAA("10:00:00.000", "5", "1", "0600").
		CAD("10:00:09.000", "5", "1", 2, 17).
		CARE("10:00:10.000", "5", "1").
		CAF("10:00:08.000", "5", "1", 3)

	s := only(t, log)
	require.NotNil(t, s.EndTsReal)
	assert.Equal(t, *s.EndTsCare, *s.EndTsReal)

	d, ok := s.DurationSeconds()
	require.True(t, ok)
	assert.InDelta(t, 10.0, d, 1e-9)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	s := only(t, testutil.NewLog("23.12.2025").
		CAA("10:00:00.000", "5", "1", "0600").
		CAF("10:00:05.000", "5", "1", 2))
	require.True(t, s.Finalized())

	late := records(t, testutil.NewLog("23.12.2025").CAC("10:00:06.000", "5", "1", 3))[0]
	s.apply(late)
	s.Finalize()
	assert.Nil(t, s.ConnectedTs)
	assert.Equal(t, CallSetupFailure, s.ResultType)
}

func TestSkipsIncompleteCallControl(t *testing.T) {
	skips := monitoring.NewSkipCounter()
	b := NewBuilder(skips)
	log := testutil.NewLog("23.12.2025").
		CAA("10:00:00.000", "5", "", "0600").
		CAA("10:00:00.000", "", "3", "0600").
		TXPC("10:00:01.000", "5", 3)

	for _, rec := range records(t, log) {
		_, ok := b.Ingest(rec)
		assert.False(t, ok)
	}
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, map[string]int{
		monitoring.SkipMissingCallID: 1,
		monitoring.SkipMissingDevice: 1,
	}, skips.Counts())
}

func TestFinalizeOrder(t *testing.T) {
	log := testutil.NewLog("23.12.2025").
		CAD("09:00:00.000", "5", "4", 1, 16).
		CAA("10:00:05.000", "5", "10", "").
		CAA("10:00:00.000", "5", "12", "").
		CAA("10:00:00.000", "5", "2", "")

	_, sessions := build(t, log)
	var got []string
	for _, s := range sessions {
		got = append(got, s.CallID)
	}
	assert.Equal(t, []string{"2", "12", "10", "4"}, got)
}

func TestAttachTimeline(t *testing.T) {
	log := testutil.NewLog("23.12.2025").
		Event("RRCSM", "09:59:59.000", "5", "IDLE").
		CAA("10:00:00.000", "5", "1", "0600").
		CAA("10:00:01.000", "5", "2", "0700").
		Event("SHO", "10:00:02.000", "5", "ADD").
		Event("SHO", "10:00:02.000", "5", "ADD").
		TXPC("10:00:03.000", "5", 4).
		CAF("10:00:04.000", "5", "1", 2).
		Event("RRCSM", "10:00:05.000", "5", "IDLE")

	b := NewBuilder(nil)
	events := timeline.NewLog()
	for _, rec := range records(t, log) {
		if rec.Kind() == nmf.KindCallControl {
			if _, ok := b.Ingest(rec); ok {
				events.Add(rec)
			}
			continue
		}
		events.Add(rec)
	}
	b.Finalize()

	s, _ := b.Get("5", "1")
	s.AttachTimeline(events.Events("5"))
	var got []string
	for _, e := range s.EventTimeline {
		got = append(got, e.Event)
	}
	assert.Equal(t, []string{"CAA", "SHO", "TXPC", "CAF"}, got)
	assert.Equal(t, "2025-12-23T10:00:00.000Z", s.EventTimeline[0].Time)

	open, _ := b.Get("5", "2")
	open.AttachTimeline(events.Events("5"))
	assert.NotNil(t, open.EventTimeline)
	assert.Empty(t, open.EventTimeline)
}
