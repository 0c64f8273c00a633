// Package snapshot computes the causal radio-quality picture of one device
// over the window that ends when a call ended: best-server RSCP/EcNo, uplink
// Tx, BLER and the pilot dominance and pollution assessment.
package snapshot

import (
	"fmt"
	"math"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/radio"
)

// SeriesPoint is one timestamped value of a plotted series.
type SeriesPoint struct {
	TS    int64   `json:"ts"`
	Value float64 `json:"value"`
}

// BestServer is the serving pilot seen in the last row of the window.
type BestServer struct {
	PSC    int      `json:"psc"`
	UARFCN *int     `json:"uarfcn"`
	CellID *int     `json:"cellId"`
	RSCP   float64  `json:"rscp"`
	EcNo   float64  `json:"ecno"`
	RSSI   *float64 `json:"rssi"`
}

// Snapshot holds windowed statistics for [WindowStartTs, WindowEndTs].
// Optional statistics are nil when the window holds no usable input.
type Snapshot struct {
	WindowStartTs int64 `json:"windowStartTs"`
	WindowEndTs   int64 `json:"windowEndTs"`

	MimoSampleCount    int `json:"mimoSampleCount"`
	TxSampleCountValid int `json:"txSampleCountValid"`
	BlerRowCount       int `json:"blerRowCount"`
	SampleCount        int `json:"sampleCount"`
	TrendMinSamples    int `json:"trendMinSamples"`

	RSCPMedian *float64 `json:"rscpMedian"`
	RSCPMin    *float64 `json:"rscpMin"`
	RSCPLast   *float64 `json:"rscpLast"`
	EcNoMedian *float64 `json:"ecnoMedian"`
	EcNoMin    *float64 `json:"ecnoMin"`
	EcNoLast   *float64 `json:"ecnoLast"`

	LastPSC        *int        `json:"lastPsc"`
	LastCellID     *int        `json:"lastCellId"`
	LastUARFCN     *int        `json:"lastUarfcn"`
	LastMimoTs     *int64      `json:"lastMimoTs"`
	LastTxTs       *int64      `json:"lastTxTs"`
	LastBestServer *BestServer `json:"lastBestServer"`

	TxP90  *float64 `json:"txP90"`
	TxMax  *float64 `json:"txMax"`
	TxLast *float64 `json:"txLast"`

	BlerMax                *float64 `json:"blerMax"`
	BlerMean               *float64 `json:"blerMean"`
	RlcBlerSamplesCount    int      `json:"rlcBlerSamplesCount"`
	BlerEvidenceMinSamples int      `json:"blerEvidenceMinSamples"`
	BlerEvidence           bool     `json:"blerEvidence"`

	BestServerSamples []Pilot        `json:"bestServerSamples"`
	UniquePSCCount    int            `json:"uniquePscCount"`
	TxSamples         []float64      `json:"txSamples"`
	TxSeries          []SeriesPoint  `json:"txSeries"`
	BlerRows          []radio.RlcRow `json:"blerRows"`
	SeriesRSCP        []SeriesPoint  `json:"seriesRscp"`
	SeriesEcNo        []SeriesPoint  `json:"seriesEcno"`

	RSCPTrendDelta   *float64 `json:"rscpTrendDelta"`
	EcNoTrendDelta   *float64 `json:"ecnoTrendDelta"`
	TrendDurationSec *float64 `json:"trendDurationSec"`
	TrendMessage     string   `json:"trendMessage"`
	TrendBasis       string   `json:"trendBasis,omitempty"`

	PilotDominanceDeltaMedian *float64 `json:"pilotDominanceDeltaMedian"`
	PilotDominanceLowCount    int      `json:"pilotDominanceLowCount"`
	PilotDominanceSampleCount int      `json:"pilotDominanceSampleCount"`
	PilotDominanceLowRatio    *float64 `json:"pilotDominanceLowRatio"`
	PilotDominanceDeltaStd    *float64 `json:"pilotDominanceDeltaStd"`
	ActiveSetSizeMean         *float64 `json:"activeSetSizeMean"`
	ActiveSetSizeMax          *int     `json:"activeSetSizeMax"`
	BadEcNoStrongRSCPRatio    *float64 `json:"badEcnoStrongRscpRatio"`
	StrongBadCount            int      `json:"strongBadCount"`
	ValidBestCount            int      `json:"validBestCount"`
	PSCSwitchCount            int      `json:"pscSwitchCount"`

	PollutionScore         int             `json:"pollutionScore"`
	PollutionLevel         string          `json:"pollutionLevel"`
	PilotPollution         *PilotPollution `json:"pilotPollution"`
	PilotPollutionDetected bool            `json:"pilotPollutionDetected"`
	PilotPollutionEvidence []string        `json:"pilotPollutionEvidence"`
}

const trendMinSamples = 2

// MarkerTs is the last measurement instant in the window: the last MIMOMEAS
// row, else the last TXPC row. A nil snapshot has no marker.
func (s *Snapshot) MarkerTs() *int64 {
	switch {
	case s == nil:
		return nil
	case s.LastMimoTs != nil:
		return s.LastMimoTs
	default:
		return s.LastTxTs
	}
}

// Build computes the snapshot of dev over the causal window ending at endTs.
// No row with a timestamp after endTs or before endTs minus the window is
// read. A nil dev is treated as a device without measurements.
func Build(dev *radio.DeviceSeries, endTs int64, th config.Thresholds) *Snapshot {
	if dev == nil {
		dev = &radio.DeviceSeries{}
	}
	fromTs := endTs - th.WindowMillis()
	snap := &Snapshot{
		WindowStartTs:          fromTs,
		WindowEndTs:            endTs,
		TrendMinSamples:        trendMinSamples,
		BlerEvidenceMinSamples: th.BlerEvidenceMinSamples,
		BestServerSamples:      []Pilot{},
		TxSamples:              []float64{},
		TxSeries:               []SeriesPoint{},
		BlerRows:               []radio.RlcRow{},
		SeriesRSCP:             []SeriesPoint{},
		SeriesEcNo:             []SeriesPoint{},
		PilotPollutionEvidence: []string{},
	}

	var deltas []float64
	var activeSets []int
	for _, row := range radio.Window(dev.Mimo, fromTs, endTs) {
		pilots := AggregateRow(row)
		if len(pilots) == 0 {
			continue
		}
		activeSets = append(activeSets, ActiveSetSize(pilots, th.ActiveSetDeltaDb))
		if d, ok := DominanceDelta(pilots); ok {
			deltas = append(deltas, d)
		}
		snap.BestServerSamples = append(snap.BestServerSamples, pilots[Best(pilots)])
	}

	snap.fillBestServer(th)
	snap.fillDominance(deltas, activeSets, th)
	snap.fillTx(radio.Window(dev.Tx, fromTs, endTs))
	snap.fillBler(radio.Window(dev.Rlc, fromTs, endTs), th)
	snap.fillTrend(th)
	snap.assessPollution(deltas, th)
	return snap
}

func (s *Snapshot) fillBestServer(th config.Thresholds) {
	best := s.BestServerSamples
	s.MimoSampleCount = len(best)
	s.SampleCount = len(best)
	if len(best) == 0 {
		return
	}

	rscp := make([]float64, len(best))
	ecno := make([]float64, len(best))
	seen := make(map[int]struct{})
	for i, p := range best {
		rscp[i], ecno[i] = p.RSCP, p.EcNo
		seen[p.PSC] = struct{}{}
		s.SeriesRSCP = append(s.SeriesRSCP, SeriesPoint{TS: p.TS, Value: p.RSCP})
		s.SeriesEcNo = append(s.SeriesEcNo, SeriesPoint{TS: p.TS, Value: p.EcNo})
		if i > 0 && p.PSC != best[i-1].PSC {
			s.PSCSwitchCount++
		}
	}
	s.UniquePSCCount = len(seen)
	s.RSCPMedian, s.RSCPMin = Median(rscp), Min(rscp)
	s.EcNoMedian, s.EcNoMin = Median(ecno), Min(ecno)

	last := best[len(best)-1]
	s.RSCPLast, s.EcNoLast = ptr(last.RSCP), ptr(last.EcNo)
	s.LastPSC = ptr(last.PSC)
	s.LastCellID, s.LastUARFCN = last.CellID, last.UARFCN
	s.LastMimoTs = ptr(last.TS)
	s.LastBestServer = &BestServer{
		PSC:    last.PSC,
		UARFCN: last.UARFCN,
		CellID: last.CellID,
		RSCP:   last.RSCP,
		EcNo:   last.EcNo,
		RSSI:   last.RSSI,
	}

	strong := 0
	for _, p := range best {
		if math.IsNaN(p.RSCP) || math.IsNaN(p.EcNo) {
			continue
		}
		s.ValidBestCount++
		if p.RSCP > th.StrongRSCPDbm {
			strong++
			if p.EcNo < th.BadEcNoDb {
				s.StrongBadCount++
			}
		}
	}
	if strong > 0 {
		s.BadEcNoStrongRSCPRatio = ptr(float64(s.StrongBadCount) / float64(strong))
	}
}

func (s *Snapshot) fillDominance(deltas []float64, activeSets []int, th config.Thresholds) {
	if len(deltas) > 0 {
		s.PilotDominanceSampleCount = len(deltas)
		s.PilotDominanceDeltaMedian = Median(deltas)
		s.PilotDominanceDeltaStd = StdDev(deltas)
		for _, d := range deltas {
			if d < th.LowDeltaDb {
				s.PilotDominanceLowCount++
			}
		}
		s.PilotDominanceLowRatio = ptr(float64(s.PilotDominanceLowCount) / float64(len(deltas)))
	}
	if len(activeSets) > 0 {
		sum, maxSize := 0, 0
		for _, n := range activeSets {
			sum += n
			maxSize = max(maxSize, n)
		}
		s.ActiveSetSizeMean = ptr(float64(sum) / float64(len(activeSets)))
		s.ActiveSetSizeMax = ptr(maxSize)
	}
}

func (s *Snapshot) fillTx(rows []radio.TxRow) {
	for _, r := range rows {
		if math.IsNaN(r.Tx) || math.IsInf(r.Tx, 0) {
			continue
		}
		s.TxSamples = append(s.TxSamples, r.Tx)
		s.TxSeries = append(s.TxSeries, SeriesPoint{TS: r.TS, Value: r.Tx})
	}
	s.TxSampleCountValid = len(s.TxSamples)
	if len(s.TxSamples) == 0 {
		return
	}
	s.TxP90 = Percentile(s.TxSamples, 0.9)
	s.TxMax = Max(s.TxSamples)
	s.TxLast = ptr(s.TxSamples[len(s.TxSamples)-1])
	s.LastTxTs = ptr(s.TxSeries[len(s.TxSeries)-1].TS)
}

func (s *Snapshot) fillBler(rows []radio.RlcRow, th config.Thresholds) {
	s.BlerRows = append(s.BlerRows, rows...)
	s.BlerRowCount = len(rows)
	s.RlcBlerSamplesCount = len(rows)
	s.BlerEvidence = len(rows) >= th.BlerEvidenceMinSamples
	if len(rows) == 0 {
		return
	}
	maxV, sum := rows[0].BlerMax, 0.0
	for _, r := range rows {
		maxV = max(maxV, r.BlerMax)
		sum += r.BlerMean
	}
	s.BlerMax = ptr(maxV)
	s.BlerMean = ptr(sum / float64(len(rows)))
}

func (s *Snapshot) fillTrend(th config.Thresholds) {
	window := fmt.Sprintf("last %gs", math.Max(1, th.WindowSeconds))
	best := s.BestServerSamples
	switch {
	case len(best) == 0:
		s.TrendMessage = fmt.Sprintf("No MIMOMEAS samples in %s.", window)
		return
	case len(best) < trendMinSamples:
		s.TrendMessage = fmt.Sprintf("Only %d MIMOMEAS samples in %s; trend not computed.", len(best), window)
		return
	}
	s.TrendMessage = fmt.Sprintf("Trend computed from %d MIMOMEAS samples in %s.", len(best), window)
	first, last := best[0], best[len(best)-1]
	s.RSCPTrendDelta = ptr(last.RSCP - first.RSCP)
	s.EcNoTrendDelta = ptr(last.EcNo - first.EcNo)
	s.TrendDurationSec = ptr(math.Max(0.001, float64(last.TS-first.TS)/1000))
}
