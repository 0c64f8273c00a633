// Package evidence assembles the wider radio and signalling picture around
// a failed call setup for audit and export. Nothing here feeds back into
// classification.
package evidence

import (
	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/radio"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/snapshot"
	"github.com/banshee-data/callrca/internal/timeline"
	"github.com/banshee-data/callrca/internal/timeutil"
)

// BundleType tags a setup-failure context bundle.
const BundleType = "SETUP_FAILURE_CONTEXT_BUNDLE"

const (
	lastEventsBeforeEnd   = 20
	firstEventsAfterStart = 10
)

type Windows struct {
	RadioPreEndSec          float64 `json:"radioPreEndSec"`
	SignalingAroundEndSec   float64 `json:"signalingAroundEndSec"`
	RadioWindowStartIso     string  `json:"radioWindowStartIso"`
	RadioWindowEndIso       string  `json:"radioWindowEndIso"`
	SignalingWindowStartIso string  `json:"signalingWindowStartIso"`
	SignalingWindowEndIso   string  `json:"signalingWindowEndIso"`
}

type BestServerPoint struct {
	TsIso  string  `json:"tsIso"`
	PSC    int     `json:"psc"`
	UARFCN *int    `json:"uarfcn"`
	RSCP   float64 `json:"rscp"`
	EcNo   float64 `json:"ecno"`
}

type TxPoint struct {
	TsIso string  `json:"tsIso"`
	Tx    float64 `json:"tx"`
}

type BlerPoint struct {
	TsIso    string  `json:"tsIso"`
	BlerMax  float64 `json:"blerMax"`
	BlerMean float64 `json:"blerMean"`
}

// RadioContext summarises the radio window ending at the call end.
type RadioContext struct {
	MimoSampleCount int      `json:"mimoSampleCount"`
	RSCPMin         *float64 `json:"rscpMin"`
	RSCPMax         *float64 `json:"rscpMax"`
	RSCPMedian      *float64 `json:"rscpMedian"`
	EcNoMin         *float64 `json:"ecnoMin"`
	EcNoMax         *float64 `json:"ecnoMax"`
	EcNoMedian      *float64 `json:"ecnoMedian"`
	TxLast          *float64 `json:"txLast"`
	TxP90           *float64 `json:"txP90"`
	TxMax           *float64 `json:"txMax"`
	BlerMax         *float64 `json:"blerMax"`
	// BlerTrend is last minus first mean BLER; it needs two rows.
	BlerTrend *float64 `json:"blerTrend"`

	BestServerSeries []BestServerPoint `json:"bestServerSeries"`
	TxSeries         []TxPoint         `json:"txSeries"`
	BlerSeries       []BlerPoint       `json:"blerSeries"`
}

// BriefEvent is a signalling event reduced to its time, header and line.
type BriefEvent struct {
	TsIso  string `json:"tsIso"`
	Header string `json:"header"`
	Raw    string `json:"raw"`
}

type SignalingContext struct {
	TotalEventsInWindow       int          `json:"totalEventsInWindow"`
	Last20EventsBeforeEnd     []BriefEvent `json:"last20EventsBeforeEnd"`
	First10EventsAfterStart   []BriefEvent `json:"first10EventsAfterStart"`
	ClosestRrcOrHoBeforeEnd   *BriefEvent  `json:"closestRrcOrHoBeforeEnd"`
	ClosestReleaseRejectCause *BriefEvent  `json:"closestReleaseRejectCause"`
}

type CallControlContext struct {
	DeviceID      string  `json:"deviceId"`
	CallID        string  `json:"callId"`
	ConnectedEver bool    `json:"connectedEver"`
	CAA           *string `json:"cAA"`
	CACConnected  *string `json:"cACConnected"`
	CAD           *string `json:"cAD"`
	CAF           *string `json:"cAF"`
	CARE          *string `json:"cARE"`
	EndTsReal     *string `json:"endTsReal"`
	CadStatus     *int    `json:"cadStatus"`
	CadCause      *int    `json:"cadCause"`
	CafReason     *int    `json:"cafReason"`
}

// Bundle is the setup-failure context for one session.
type Bundle struct {
	Type        string             `json:"type"`
	Windows     Windows            `json:"windows"`
	Radio       RadioContext       `json:"radioContext"`
	Signaling   SignalingContext   `json:"signalingContext"`
	CallControl CallControlContext `json:"callControlContext"`
}

// Build assembles the bundle for s from its device's radio series and its
// device's time-sorted signalling events. It returns nil when the session
// has no end.
func Build(s *session.Session, dev *radio.DeviceSeries, events []timeline.Event, th config.Thresholds) *Bundle {
	if s == nil || s.EndTsReal == nil {
		return nil
	}
	if dev == nil {
		dev = &radio.DeviceSeries{}
	}
	endTs := *s.EndTsReal
	radioFrom := endTs - th.ContextRadioMillis()
	sigFrom := endTs - th.ContextSignalingMillis()
	sigTo := endTs + th.ContextSignalingMillis()

	return &Bundle{
		Type: BundleType,
		Windows: Windows{
			RadioPreEndSec:          th.ContextRadioSeconds,
			SignalingAroundEndSec:   th.ContextSignalingSeconds,
			RadioWindowStartIso:     timeutil.FormatMillis(radioFrom),
			RadioWindowEndIso:       timeutil.FormatMillis(endTs),
			SignalingWindowStartIso: timeutil.FormatMillis(sigFrom),
			SignalingWindowEndIso:   timeutil.FormatMillis(sigTo),
		},
		Radio:       radioContext(dev, radioFrom, endTs),
		Signaling:   signalingContext(s, events, endTs, sigFrom, sigTo),
		CallControl: callControlContext(s),
	}
}

func radioContext(dev *radio.DeviceSeries, from, to int64) RadioContext {
	best := snapshot.BestServers(radio.Window(dev.Mimo, from, to))
	rc := RadioContext{
		MimoSampleCount:  len(best),
		BestServerSeries: make([]BestServerPoint, 0, len(best)),
		TxSeries:         []TxPoint{},
		BlerSeries:       []BlerPoint{},
	}
	rscp := make([]float64, 0, len(best))
	ecno := make([]float64, 0, len(best))
	for _, p := range best {
		rscp = append(rscp, p.RSCP)
		ecno = append(ecno, p.EcNo)
		rc.BestServerSeries = append(rc.BestServerSeries, BestServerPoint{
			TsIso:  timeutil.FormatMillis(p.TS),
			PSC:    p.PSC,
			UARFCN: p.UARFCN,
			RSCP:   p.RSCP,
			EcNo:   p.EcNo,
		})
	}
	rc.RSCPMin, rc.RSCPMax, rc.RSCPMedian = snapshot.Min(rscp), snapshot.Max(rscp), snapshot.Median(rscp)
	rc.EcNoMin, rc.EcNoMax, rc.EcNoMedian = snapshot.Min(ecno), snapshot.Max(ecno), snapshot.Median(ecno)

	txRows := radio.Window(dev.Tx, from, to)
	tx := make([]float64, 0, len(txRows))
	for _, r := range txRows {
		tx = append(tx, r.Tx)
		rc.TxSeries = append(rc.TxSeries, TxPoint{TsIso: timeutil.FormatMillis(r.TS), Tx: r.Tx})
	}
	if n := len(tx); n > 0 {
		last := tx[n-1]
		rc.TxLast = &last
	}
	rc.TxP90, rc.TxMax = snapshot.Percentile(tx, 0.9), snapshot.Max(tx)

	blerRows := radio.Window(dev.Rlc, from, to)
	blerMax := make([]float64, 0, len(blerRows))
	for _, r := range blerRows {
		blerMax = append(blerMax, r.BlerMax)
		rc.BlerSeries = append(rc.BlerSeries, BlerPoint{
			TsIso:    timeutil.FormatMillis(r.TS),
			BlerMax:  r.BlerMax,
			BlerMean: r.BlerMean,
		})
	}
	rc.BlerMax = snapshot.Max(blerMax)
	if n := len(blerRows); n >= 2 {
		trend := blerRows[n-1].BlerMean - blerRows[0].BlerMean
		rc.BlerTrend = &trend
	}
	return rc
}

func signalingContext(s *session.Session, events []timeline.Event, endTs, from, to int64) SignalingContext {
	inWindow := timeline.Between(events, from, to)
	beforeEnd := timeline.Between(events, from, endTs)
	if len(beforeEnd) > lastEventsBeforeEnd {
		beforeEnd = beforeEnd[len(beforeEnd)-lastEventsBeforeEnd:]
	}
	var afterStart []timeline.Event
	if s.StartTs != nil {
		afterStart = timeline.Between(events, *s.StartTs, to)
		if len(afterStart) > firstEventsAfterStart {
			afterStart = afterStart[:firstEventsAfterStart]
		}
	}

	sc := SignalingContext{
		TotalEventsInWindow:     len(inWindow),
		Last20EventsBeforeEnd:   briefAll(beforeEnd),
		First10EventsAfterStart: briefAll(afterStart),
	}

	for i := len(events) - 1; i >= 0; i-- {
		if events[i].TS <= endTs && timeline.IsRRCOrHandover(events[i]) {
			sc.ClosestRrcOrHoBeforeEnd = brief(events[i])
			break
		}
	}

	var closest *timeline.Event
	var closestDist int64
	for i := range inWindow {
		e := &inWindow[i]
		if !timeline.IsReleaseOrReject(*e) {
			continue
		}
		dist := endTs - e.TS
		if dist < 0 {
			dist = -dist
		}
		if closest == nil || dist < closestDist {
			closest, closestDist = e, dist
		}
	}
	if closest != nil {
		sc.ClosestReleaseRejectCause = brief(*closest)
	}
	return sc
}

func brief(e timeline.Event) *BriefEvent {
	return &BriefEvent{TsIso: timeutil.FormatMillis(e.TS), Header: e.Header, Raw: e.Raw}
}

func briefAll(events []timeline.Event) []BriefEvent {
	out := make([]BriefEvent, 0, len(events))
	for _, e := range events {
		out = append(out, *brief(e))
	}
	return out
}

func callControlContext(s *session.Session) CallControlContext {
	return CallControlContext{
		DeviceID:      s.DeviceID,
		CallID:        s.CallID,
		ConnectedEver: s.Connected(),
		CAA:           timeutil.FormatMillisPtr(s.StartTs),
		CACConnected:  timeutil.FormatMillisPtr(s.ConnectedTs),
		CAD:           timeutil.FormatMillisPtr(s.EndTsCad),
		CAF:           timeutil.FormatMillisPtr(s.EndTsCaf),
		CARE:          timeutil.FormatMillisPtr(s.EndTsCare),
		EndTsReal:     timeutil.FormatMillisPtr(s.EndTsReal),
		CadStatus:     s.CadStatus,
		CadCause:      s.CadCause,
		CafReason:     s.CafReason,
	}
}

// SignalingSummary is what the setup-failure deep analysis reads from a
// bundle's signalling context.
type SignalingSummary struct {
	DirectTransfer  bool
	ReleaseNearEnd  bool
	CongestionHints bool
	MobilityNearEnd bool
}

// Summarize scans the first and last events of the bundle for direct
// transfer, congestion wording and the closest release and handover.
// A nil bundle yields the zero summary.
func (b *Bundle) Summarize() SignalingSummary {
	var out SignalingSummary
	if b == nil {
		return out
	}
	sc := b.Signaling
	rows := append(append([]BriefEvent{}, sc.First10EventsAfterStart...), sc.Last20EventsBeforeEnd...)
	for _, e := range rows {
		if timeline.DirectTransferPattern.MatchString(e.Raw) {
			out.DirectTransfer = true
		}
		if timeline.CongestionPattern.MatchString(e.Raw) {
			out.CongestionHints = true
		}
	}
	if sc.ClosestReleaseRejectCause != nil {
		out.ReleaseNearEnd = timeline.IsReleaseNearEnd(sc.ClosestReleaseRejectCause.Raw)
	}
	if sc.ClosestRrcOrHoBeforeEnd != nil {
		out.MobilityNearEnd = timeline.HandoverPattern.MatchString(sc.ClosestRrcOrHoBeforeEnd.Raw)
	}
	return out
}
