package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/radio"
)

type pilot struct {
	psc        int
	rscp, ecno float64
}

func mimo(ts int64, pilots ...pilot) radio.MimoRow {
	row := radio.MimoRow{TS: ts}
	for _, p := range pilots {
		row.Samples = append(row.Samples, radio.PilotSample{PSC: p.psc, RSCP: p.rscp, EcNo: p.ecno})
	}
	return row
}

func blerRows(ts ...int64) []radio.RlcRow {
	out := make([]radio.RlcRow, len(ts))
	for i, v := range ts {
		out[i] = radio.RlcRow{TS: v, BlerMax: 100, BlerMean: 90, Samples: []float64{80, 100}}
	}
	return out
}

// dominantSeries has two pilots per row, 3 dB apart, with one serving cell.
func dominantSeries() *radio.DeviceSeries {
	dev := &radio.DeviceSeries{}
	for i := 0; i < 10; i++ {
		off := float64(i % 2)
		dev.Mimo = append(dev.Mimo, mimo(int64(i)*1000,
			pilot{100, -70 - off, -6},
			pilot{101, -73 - off, -9},
		))
	}
	return dev
}

func TestBuildEmptyDevice(t *testing.T) {
	th := config.DefaultThresholds()
	snap := Build(nil, 50_000, th)

	assert.Equal(t, int64(40_000), snap.WindowStartTs)
	assert.Equal(t, int64(50_000), snap.WindowEndTs)
	assert.Zero(t, snap.MimoSampleCount)
	assert.Nil(t, snap.RSCPMedian)
	assert.Nil(t, snap.TxP90)
	assert.Nil(t, snap.BlerMax)
	assert.False(t, snap.BlerEvidence)
	assert.Nil(t, snap.RSCPTrendDelta)
	assert.Equal(t, "No MIMOMEAS samples in last 10s.", snap.TrendMessage)

	pp := snap.PilotPollution
	require.NotNil(t, pp)
	assert.False(t, pp.DominanceAvailable)
	assert.Nil(t, pp.DominanceScore)
	assert.Equal(t, LevelNotAvailable, pp.DominanceLevel)
	assert.True(t, pp.DeltaStats.ConfidenceLow)
	assert.Equal(t, LabelDominanceNoSignal, pp.FinalLabel)
	assert.Equal(t, LevelNotAvailable, snap.PollutionLevel)
	assert.Nil(t, pp.CoverageRatio())
	assert.Contains(t, pp.DetailsText, "Dominance evidence unavailable: no timestamps with >=2 pilots were found in this window.")
}

func TestBuildDominantServer(t *testing.T) {
	th := config.DefaultThresholds()
	snap := Build(dominantSeries(), 9000, th)

	assert.Equal(t, 10, snap.MimoSampleCount)
	assert.Equal(t, -70.5, *snap.RSCPMedian)
	assert.Equal(t, -71.0, *snap.RSCPMin)
	assert.Equal(t, -71.0, *snap.RSCPLast)
	assert.Equal(t, 100, *snap.LastPSC)
	assert.Equal(t, 1, snap.UniquePSCCount)
	assert.Zero(t, snap.PSCSwitchCount)
	assert.Equal(t, 10, snap.PilotDominanceSampleCount)
	assert.Equal(t, 3.0, *snap.PilotDominanceDeltaMedian)
	assert.Zero(t, snap.PilotDominanceLowCount)
	assert.Equal(t, 2.0, *snap.ActiveSetSizeMean)
	assert.Equal(t, 2, *snap.ActiveSetSizeMax)
	assert.Equal(t, -1.0, *snap.RSCPTrendDelta)
	assert.Equal(t, 9.0, *snap.TrendDurationSec)

	pp := snap.PilotPollution
	assert.True(t, pp.DominanceAvailable)
	assert.False(t, pp.DeltaStats.ConfidenceLow)
	assert.Equal(t, 10, pp.DeltaStats.SamplesWith2Pilots)
	assert.Equal(t, 10, pp.DeltaStats.TotalMimoSamples)
	require.NotNil(t, pp.DominanceScore)
	assert.Equal(t, 10, *pp.DominanceScore)
	assert.Equal(t, LabelLowOverlap, pp.FinalLabel)
	assert.Equal(t, "Low", snap.PollutionLevel)
	assert.False(t, pp.Detected)
	assert.Equal(t, 1.0, *pp.CoverageRatio())
	assert.Contains(t, pp.DetailsText, "ΔRSCP(best-2nd): computed only on timestamps with >=2 pilots (10/10).")
	assert.Contains(t, snap.PilotPollutionEvidence, "ΔRSCP confidence is acceptable for scoring.")
}

func TestBuildWindowIsCausal(t *testing.T) {
	th := config.DefaultThresholds()
	dev := &radio.DeviceSeries{}
	for _, ts := range []int64{9_999, 10_000, 15_000, 20_000, 20_001} {
		dev.Mimo = append(dev.Mimo, mimo(ts, pilot{100, -80, -8}))
		dev.Tx = append(dev.Tx, radio.TxRow{TS: ts, Tx: float64(ts) / 1000})
	}
	dev.Rlc = blerRows(9_999, 10_000, 20_001)

	snap := Build(dev, 20_000, th)
	require.Len(t, snap.BestServerSamples, 3)
	for _, p := range snap.BestServerSamples {
		assert.GreaterOrEqual(t, p.TS, snap.WindowStartTs)
		assert.LessOrEqual(t, p.TS, snap.WindowEndTs)
	}
	assert.Equal(t, []float64{10, 15, 20}, snap.TxSamples)
	assert.Equal(t, 20.0, *snap.TxLast)
	assert.Equal(t, int64(20_000), *snap.LastTxTs)
	assert.Equal(t, 1, snap.BlerRowCount)
	assert.False(t, snap.BlerEvidence)
}

func TestBuildAveragesDuplicatePilots(t *testing.T) {
	th := config.DefaultThresholds()
	dev := &radio.DeviceSeries{Mimo: []radio.MimoRow{
		mimo(1000, pilot{100, -70, -6}, pilot{101, -80, -9}, pilot{100, -72, -8}),
	}}
	snap := Build(dev, 1000, th)
	require.Len(t, snap.BestServerSamples, 1)
	best := snap.BestServerSamples[0]
	assert.Equal(t, 100, best.PSC)
	assert.Equal(t, -71.0, best.RSCP)
	assert.Equal(t, -7.0, best.EcNo)
	assert.Equal(t, 9.0, *snap.PilotDominanceDeltaMedian)
	assert.Equal(t, 1, *snap.ActiveSetSizeMax, "the second pilot is 9 dB down")
}

func TestConfidenceLowTracksCoverage(t *testing.T) {
	th := config.DefaultThresholds()
	for _, tt := range []struct {
		multi int
		low   bool
	}{
		{0, true},
		{2, true},
		{3, false},
		{10, false},
	} {
		dev := &radio.DeviceSeries{}
		for i := 0; i < 10; i++ {
			pilots := []pilot{{100, -80, -8}}
			if i < tt.multi {
				pilots = append(pilots, pilot{101, -82, -9})
			}
			dev.Mimo = append(dev.Mimo, mimo(int64(i)*1000, pilots...))
		}
		pp := Build(dev, 9000, th).PilotPollution
		assert.Equal(t, tt.low, pp.DeltaStats.ConfidenceLow, "%d/10 rows with two pilots", tt.multi)
		assert.Equal(t, tt.multi > 0, pp.DominanceAvailable)
		assert.Equal(t, tt.multi == 0, pp.DominanceScore == nil)
	}
}

func TestBuildTxAndBler(t *testing.T) {
	th := config.DefaultThresholds()
	dev := &radio.DeviceSeries{}
	for i := 1; i <= 10; i++ {
		dev.Tx = append(dev.Tx, radio.TxRow{TS: int64(i) * 100, Tx: float64(i)})
	}
	dev.Rlc = blerRows(100, 200, 300)

	snap := Build(dev, 1000, th)
	assert.Equal(t, 9.0, *snap.TxP90)
	assert.Equal(t, 10.0, *snap.TxMax)
	assert.Equal(t, 10, snap.TxSampleCountValid)
	assert.True(t, snap.BlerEvidence)
	assert.Equal(t, 100.0, *snap.BlerMax)
	assert.Equal(t, 90.0, *snap.BlerMean)
}

func interferenceSeries(pilotsPerRow int) *radio.DeviceSeries {
	dev := &radio.DeviceSeries{}
	for i := 0; i < 10; i++ {
		pilots := []pilot{{200, -80, -13}}
		if pilotsPerRow > 1 {
			pilots = append(pilots, pilot{201, -88, -16})
		}
		ts := int64(i) * 1000
		dev.Mimo = append(dev.Mimo, mimo(ts, pilots...))
		dev.Tx = append(dev.Tx, radio.TxRow{TS: ts, Tx: 5})
	}
	dev.Rlc = blerRows(7000, 8000, 9000)
	return dev
}

func TestPollutionLabelDLInterference(t *testing.T) {
	th := config.DefaultThresholds()

	pp := Build(interferenceSeries(2), 9000, th).PilotPollution
	assert.Equal(t, 100, pp.InterferenceScore)
	assert.Equal(t, LabelPilotPollutionDL, pp.FinalLabel)
	assert.Equal(t, 100, pp.Score)
	assert.Equal(t, "High", pp.PollutionLevel)
	assert.True(t, pp.Detected)

	pp = Build(interferenceSeries(1), 9000, th).PilotPollution
	assert.Equal(t, LabelDLInterference, pp.FinalLabel)
	assert.Equal(t, LevelNotAvailable, pp.PollutionLevel)
}

func TestPollutionLabelWeakOverlap(t *testing.T) {
	th := config.DefaultThresholds()
	dev := &radio.DeviceSeries{}
	for i := 0; i < 10; i++ {
		a, b := -90.0, -91.0
		if i%2 == 1 {
			a, b = b, a
		}
		dev.Mimo = append(dev.Mimo, mimo(int64(i)*1000,
			pilot{100, a, -8}, pilot{101, b, -8}, pilot{102, -91.5, -9}))
	}
	snap := Build(dev, 9000, th)
	pp := snap.PilotPollution
	assert.Equal(t, 9, snap.PSCSwitchCount)
	assert.Equal(t, 100, *pp.DominanceScore)
	assert.Equal(t, 0.0, *pp.StrongRSCPShare)
	assert.Equal(t, LabelWeakOverlap, pp.FinalLabel)
	assert.Equal(t, "High", snap.PollutionLevel)
	assert.Equal(t, 3, pp.ActiveSet.Max)
}

func TestPollutionLabelOverlapRisk(t *testing.T) {
	th := config.DefaultThresholds()
	dev := &radio.DeviceSeries{}
	for i := 0; i < 10; i++ {
		dev.Mimo = append(dev.Mimo, mimo(int64(i)*1000,
			pilot{100, -70, -6}, pilot{101, -71, -7}))
	}
	snap := Build(dev, 9000, th)
	pp := snap.PilotPollution
	// delta median 1 dB, every delta low, active-set mean 2.
	assert.Equal(t, 70, *pp.DominanceScore)
	assert.Equal(t, LabelOverlapRisk, pp.FinalLabel)
	assert.Equal(t, "High", pp.DominanceLevel)
}

func TestStrongRSCPBadEcNo(t *testing.T) {
	th := config.DefaultThresholds()
	dev := &radio.DeviceSeries{Mimo: []radio.MimoRow{
		mimo(1000, pilot{100, -60, -15}),
		mimo(2000, pilot{100, -60, -10}),
		mimo(3000, pilot{100, -95, -20}),
		mimo(4000, pilot{100, -70, -16}),
	}}
	snap := Build(dev, 4000, th)
	assert.Equal(t, 4, snap.ValidBestCount)
	assert.Equal(t, 2, snap.StrongBadCount)
	assert.InDelta(t, 2.0/3.0, *snap.BadEcNoStrongRSCPRatio, 1e-9)

	sb := snap.PilotPollution.StrongRSCPBadEcNo
	assert.Equal(t, 3, sb.StrongCount)
	assert.Equal(t, 0.75, *sb.RatioStrongShare)
	assert.Equal(t, -95.0, *sb.RSCPMinDbm)
	assert.Equal(t, -60.0, *sb.RSCPMaxDbm)
}

func TestTrendMessageSingleSample(t *testing.T) {
	th := config.DefaultThresholds()
	dev := &radio.DeviceSeries{Mimo: []radio.MimoRow{mimo(1000, pilot{100, -60, -5})}}
	snap := Build(dev, 1000, th)
	assert.Equal(t, "Only 1 MIMOMEAS samples in last 10s; trend not computed.", snap.TrendMessage)
	assert.Nil(t, snap.RSCPTrendDelta)
}
