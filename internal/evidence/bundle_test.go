package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/nmf"
	"github.com/banshee-data/callrca/internal/radio"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/testutil"
	"github.com/banshee-data/callrca/internal/timeline"
)

type fixture struct {
	sessions *session.Builder
	store    *radio.Store
	events   *timeline.Log
}

func load(t *testing.T, log *testutil.Log) fixture {
	t.Helper()
	recs, err := nmf.ReadAll(nmf.NewReader(log.Reader(), 0, nil))
	require.NoError(t, err)

	f := fixture{session.NewBuilder(nil), radio.NewStore(), timeline.NewLog()}
	for _, rec := range recs {
		switch rec.Kind() {
		case nmf.KindCallControl:
			if _, ok := f.sessions.Ingest(rec); ok {
				f.events.Add(rec)
			}
		case nmf.KindRadio:
			f.store.Add(rec)
			f.events.Add(rec)
		case nmf.KindTimeline:
			f.events.Add(rec)
		}
	}
	f.sessions.Finalize()
	return f
}

func setupFailureLog() *testutil.Log {
	return testutil.NewLog("23.12.2025").
		Line("CAA", "23:00:10.000", "1", "77", "5", "1", "1", `"0600000077"`, "", "30000", "", "").
		Line("RRCSM", "23:00:12.000", "", "5", "STATE", "CONNECTING").
		Line("MIMOMEAS", "23:00:15.000", "", "5", "0", "2", "8",
			"50008", "3032", "28", "0", "0", "-89.0", "-12.0", "-80.0",
			"50008", "3032", "28", "1", "0", "-87.0", "-11.0", "-79.0").
		Line("TXPC", "23:00:18.000", "", "5", "11.0", "0", "1.0", "0", "348", "402", "46.4").
		Line("L3SM", "23:00:22.000", "", "5", "RRC CONNECTION SETUP").
		Line("MIMOMEAS", "23:00:24.000", "", "5", "0", "2", "8",
			"50008", "3032", "28", "0", "0", "-88.0", "-13.0", "-81.0",
			"50008", "3032", "28", "1", "0", "-86.0", "-12.0", "-80.0").
		Line("RLCBLER", "23:00:29.000", "", "5", "10.0", "30", "17", "2", "4", "1", "12.0", "29", "16", "2", "8.0", "1", "1").
		Line("CAF", "23:00:30.000", "1", "77", "5", "1", "2", "").
		Line("SHO", "23:00:31.000", "", "5", "EVENT", "ACTIVE_SET_UPDATE")
}

func TestBuildSetupFailureBundle(t *testing.T) {
	f := load(t, setupFailureLog())
	s, ok := f.sessions.Get("5", "77")
	require.True(t, ok)
	require.Equal(t, session.CallSetupFailure, s.ResultType)

	b := Build(s, f.store.Device("5"), f.events.Events("5"), config.DefaultThresholds())
	require.NotNil(t, b)

	assert.Equal(t, BundleType, b.Type)
	assert.Equal(t, 20.0, b.Windows.RadioPreEndSec)
	assert.Equal(t, 20.0, b.Windows.SignalingAroundEndSec)
	assert.Equal(t, "2025-12-23T23:00:10.000Z", b.Windows.RadioWindowStartIso)
	assert.Equal(t, "2025-12-23T23:00:50.000Z", b.Windows.SignalingWindowEndIso)

	rc := b.Radio
	assert.Equal(t, 2, rc.MimoSampleCount)
	require.NotNil(t, rc.RSCPMedian)
	assert.InDelta(t, -87.5, *rc.RSCPMedian, 1e-9)
	assert.InDelta(t, -88.0, *rc.RSCPMin, 1e-9)
	assert.InDelta(t, -87.0, *rc.RSCPMax, 1e-9)
	require.NotNil(t, rc.TxLast)
	assert.Equal(t, 11.0, *rc.TxLast)
	require.NotNil(t, rc.BlerMax)
	assert.Equal(t, 12.0, *rc.BlerMax)
	assert.Nil(t, rc.BlerTrend)
	require.Len(t, rc.BestServerSeries, 2)
	assert.Equal(t, 28, rc.BestServerSeries[0].PSC)

	sc := b.Signaling
	assert.Equal(t, 9, sc.TotalEventsInWindow)
	assert.Len(t, sc.Last20EventsBeforeEnd, 8)
	assert.Len(t, sc.First10EventsAfterStart, 9)
	require.NotNil(t, sc.ClosestRrcOrHoBeforeEnd)
	assert.Equal(t, "RRCSM", sc.ClosestRrcOrHoBeforeEnd.Header)
	require.NotNil(t, sc.ClosestReleaseRejectCause)
	assert.Equal(t, "CAF", sc.ClosestReleaseRejectCause.Header)

	cc := b.CallControl
	assert.False(t, cc.ConnectedEver)
	require.NotNil(t, cc.CAA)
	assert.True(t, strings.HasSuffix(*cc.CAA, "23:00:10.000Z"))
	require.NotNil(t, cc.CAF)
	assert.True(t, strings.HasSuffix(*cc.CAF, "23:00:30.000Z"))
	assert.Nil(t, cc.CAD)
	require.NotNil(t, cc.CafReason)
	assert.Equal(t, 2, *cc.CafReason)

	sum := b.Summarize()
	assert.False(t, sum.DirectTransfer)
	assert.False(t, sum.ReleaseNearEnd)
	assert.False(t, sum.CongestionHints)
	assert.False(t, sum.MobilityNearEnd)
}

func TestBuildWithoutEnd(t *testing.T) {
	f := load(t, testutil.NewLog("23.12.2025").CAA("10:00:00.000", "5", "1", "0600"))
	s, _ := f.sessions.Get("5", "1")
	assert.Nil(t, Build(s, nil, nil, config.DefaultThresholds()))
	assert.Nil(t, Build(nil, nil, nil, config.DefaultThresholds()))

	var b *Bundle
	assert.Equal(t, SignalingSummary{}, b.Summarize())
}

func TestClosestReleaseAndWindowLimits(t *testing.T) {
	log := testutil.NewLog("23.12.2025").
		CAA("10:00:00.000", "5", "1", "0600")
	for i := 0; i < 25; i++ {
		log.Event("L3SM", testutil.Clock(36000+float64(i)*0.5), "5", "DIRECT_TRANSFER")
	}
	log.Event("L3SM", "10:00:20.000", "5", "RRC_CONNECTION_RELEASE").
		Event("SHO", "10:00:21.000", "5", "ADD").
		CAD("10:00:22.000", "5", "1", 2, 34).
		Event("L3MM", "10:00:23.000", "5", "CM_SERVICE_REJECT").
		Event("L3SM", "10:00:30.000", "5", "NO RESOURCE")

	f := load(t, log)
	s, _ := f.sessions.Get("5", "1")
	require.Equal(t, session.CallSetupFailure, s.ResultType)
	b := Build(s, f.store.Device("5"), f.events.Events("5"), config.DefaultThresholds())
	require.NotNil(t, b)

	sc := b.Signaling
	assert.Len(t, sc.Last20EventsBeforeEnd, 20)
	assert.Equal(t, "CAD", sc.Last20EventsBeforeEnd[19].Header)
	assert.Len(t, sc.First10EventsAfterStart, 10)
	assert.Equal(t, "CAA", sc.First10EventsAfterStart[0].Header)
	require.NotNil(t, sc.ClosestReleaseRejectCause)
	assert.Equal(t, "CAD", sc.ClosestReleaseRejectCause.Header)
	require.NotNil(t, sc.ClosestRrcOrHoBeforeEnd)
	assert.Equal(t, "SHO", sc.ClosestRrcOrHoBeforeEnd.Header)

	sum := b.Summarize()
	assert.True(t, sum.DirectTransfer)
	assert.True(t, sum.MobilityNearEnd)
	assert.False(t, sum.ReleaseNearEnd)
	assert.False(t, sum.CongestionHints)
}
