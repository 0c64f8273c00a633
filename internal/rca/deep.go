package rca

import (
	"fmt"
	"math"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/evidence"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/snapshot"
	"github.com/banshee-data/callrca/internal/units"
)

var cafReasons = map[int]string{
	0: "Unknown/Not provided",
	1: "User action / call aborted (tool-specific)",
	2: "Setup failed / call attempt aborted (network or radio procedure failed)",
	3: "Call rejected (tool-specific)",
}

// DecodeCafReason labels a CAF setup-failure reason code.
func DecodeCafReason(reason *int) string {
	if reason != nil {
		if label, ok := cafReasons[*reason]; ok {
			return label
		}
	}
	return "Unknown/tool-specific reason"
}

// Terminal markers of a failed setup.
const (
	MarkerCAF     = "CAF"
	MarkerCAD     = "CAD"
	MarkerCARE    = "CARE"
	MarkerUnknown = "UNKNOWN"
)

// Points of the DL interference confidence breakdown.
const (
	pointsBlerVeryHigh       = 50
	pointsULNotLimited       = 20
	pointsCoverageAcceptable = 15
	pointsEcNoDegraded       = 15
)

// RadioMetrics echoes the snapshot values the deep analysis judged.
type RadioMetrics struct {
	RSCPMin             *float64 `json:"rscpMin"`
	RSCPMedian          *float64 `json:"rscpMedian"`
	RSCPMax             *float64 `json:"rscpMax"`
	EcNoMin             *float64 `json:"ecnoMin"`
	EcNoMedian          *float64 `json:"ecnoMedian"`
	EcNoMax             *float64 `json:"ecnoMax"`
	TxP90               *float64 `json:"txP90"`
	BlerMax             *float64 `json:"blerMax"`
	BlerEvidence        bool     `json:"blerEvidence"`
	RlcBlerSamplesCount int      `json:"rlcBlerSamplesCount"`
	MimoSampleCount     int      `json:"mimoSampleCount"`
}

type RadioAssessment struct {
	RadioHealthy bool         `json:"radioHealthy"`
	Metrics      RadioMetrics `json:"metrics"`
	Evaluation   string       `json:"evaluation"`
}

type SignalingAssessment struct {
	RRCEstablished                 bool   `json:"rrcEstablished"`
	DirectTransferObserved         bool   `json:"directTransferObserved"`
	ExplicitL3ReleaseRejectNearEnd bool   `json:"explicitL3ReleaseRejectNearEnd"`
	ImmediateReleaseNearEnd        bool   `json:"immediateReleaseNearEnd"`
	ConnectedEver                  bool   `json:"connectedEver"`
	CadStatus                      *int   `json:"cadStatus"`
	CadCause                       *int   `json:"cadCause"`
	CadCauseLabel                  string `json:"cadCauseLabel"`
	CafReason                      *int   `json:"cafReason"`
	CafReasonLabel                 string `json:"cafReasonLabel"`
	TerminalMarker                 string `json:"terminalMarker"`
	TerminalMarkerLabel            string `json:"terminalMarkerLabel"`
	Evaluation                     string `json:"evaluation"`
}

type Interpretation struct {
	Summary string `json:"summary"`
}

// DLScoreBreakdown itemises the confidence of a DL interference verdict.
type DLScoreBreakdown struct {
	BlerVeryHigh       int `json:"blerVeryHigh"`
	ULNotLimited       int `json:"ulNotLimited"`
	CoverageAcceptable int `json:"coverageAcceptable"`
	EcNoDegraded       int `json:"ecnoDegraded"`
}

// Total sums the breakdown.
func (b DLScoreBreakdown) Total() int {
	return b.BlerVeryHigh + b.ULNotLimited + b.CoverageAcceptable + b.EcNoDegraded
}

// Confidence is the deep-analysis score. Breakdown is a ScoreBreakdown, or
// a DLScoreBreakdown for DL interference verdicts.
type Confidence struct {
	Score      int     `json:"score"`
	Normalized float64 `json:"normalized"`
	Breakdown  any     `json:"breakdown"`
}

// DeepAnalysis is the audit view of one failed setup.
type DeepAnalysis struct {
	RadioAssessment     RadioAssessment     `json:"radioAssessment"`
	SignalingAssessment SignalingAssessment `json:"signalingAssessment"`
	Interpretation      Interpretation      `json:"interpretation"`
	Classification      Classification      `json:"classification"`
	Confidence          Confidence          `json:"confidence"`
	RecommendedActions  []Recommendation    `json:"recommendedActions"`
}

// BuildDeepAnalysis audits a CALL_SETUP_FAILURE session against its
// snapshot and context bundle. Other outcomes return nil.
func BuildDeepAnalysis(s *session.Session, snap *snapshot.Snapshot, bundle *evidence.Bundle, cls Classification, recs []Recommendation, th config.Thresholds) *DeepAnalysis {
	if s == nil || s.ResultType != session.CallSetupFailure {
		return nil
	}
	m := metricsOf(snap)
	sum := bundle.Summarize()
	healthy := radioHealthyForCore(m, th)
	connected := s.Connected()

	da := &DeepAnalysis{
		RadioAssessment: RadioAssessment{
			RadioHealthy: healthy,
			Metrics:      radioMetrics(snap),
			Evaluation:   RadioEvaluation(snap, cls, s.CadCause, th),
		},
		SignalingAssessment: signalingAssessment(s, sum),
		Interpretation:      Interpretation{Summary: interpret(cls.Category, healthy && sum.ReleaseNearEnd && !connected)},
		Classification:      cls,
		RecommendedActions:  recs,
	}
	if da.RecommendedActions == nil {
		da.RecommendedActions = []Recommendation{}
	}

	var score int
	if cls.Category == SetupDLInterference {
		b := dlScoreBreakdown(m, th)
		score, da.Confidence.Breakdown = b.Total(), b
	} else {
		b := scoreBreakdown(healthy, sum.ReleaseNearEnd, connected, sum.MobilityNearEnd, sum.CongestionHints)
		score, da.Confidence.Breakdown = b.Total(), b
	}
	da.Confidence.Score = score
	da.Confidence.Normalized = math.Min(th.CoreConfidenceCap, float64(score)/100)
	return da
}

func radioMetrics(snap *snapshot.Snapshot) RadioMetrics {
	if snap == nil {
		return RadioMetrics{}
	}
	return RadioMetrics{
		RSCPMin:             snap.RSCPMin,
		RSCPMedian:          snap.RSCPMedian,
		RSCPMax:             snap.RSCPLast,
		EcNoMin:             snap.EcNoMin,
		EcNoMedian:          snap.EcNoMedian,
		EcNoMax:             snap.EcNoLast,
		TxP90:               snap.TxP90,
		BlerMax:             snap.BlerMax,
		BlerEvidence:        snap.BlerEvidence,
		RlcBlerSamplesCount: snap.RlcBlerSamplesCount,
		MimoSampleCount:     snap.MimoSampleCount,
	}
}

func dlScoreBreakdown(m metrics, th config.Thresholds) DLScoreBreakdown {
	var b DLScoreBreakdown
	if (m.blerEvidence || atLeast(m.bler, th.BlerExtremePct)) && atLeast(m.bler, th.BlerCollapsePct) {
		b.BlerVeryHigh = pointsBlerVeryHigh
	}
	if atMost(m.tx, th.LowTxP90Dbm) {
		b.ULNotLimited = pointsULNotLimited
	}
	if atLeast(m.rscp, th.AcceptableRSCPDbm) {
		b.CoverageAcceptable = pointsCoverageAcceptable
	}
	if atMost(m.ecno, th.BorderlineEcNoDb) {
		b.EcNoDegraded = pointsEcNoDegraded
	}
	return b
}

func terminalMarker(s *session.Session) string {
	switch {
	case s.EndTsCaf != nil:
		return MarkerCAF
	case s.EndTsCad != nil:
		return MarkerCAD
	case s.EndTsCare != nil:
		return MarkerCARE
	}
	return MarkerUnknown
}

func signalingAssessment(s *session.Session, sum evidence.SignalingSummary) SignalingAssessment {
	marker := terminalMarker(s)
	cafLabel := DecodeCafReason(s.CafReason)
	cafText := "N/A"
	if s.CafReason != nil {
		cafText = units.PlainInt(s.CafReason)
	}
	markerLabel := marker
	if marker == MarkerCAF {
		markerLabel = fmt.Sprintf("CAF reason %s (%s)", cafText, cafLabel)
	}

	var eval string
	switch {
	case s.CadCause != nil && *s.CadCause == session.CauseSetupTimerExp && sum.ReleaseNearEnd:
		eval = "Setup timer expired before call connection (CAD cause 102: timer expiry); explicit release/reject marker observed near setup end."
	case s.CadCause != nil && *s.CadCause == session.CauseSetupTimerExp:
		eval = "Setup timer expired before call connection (CAD cause 102: timer expiry); no explicit release/reject marker was decoded near setup end."
	case sum.DirectTransfer && !sum.ReleaseNearEnd && marker == MarkerCAF:
		eval = fmt.Sprintf("Signaling progressed into NAS/CC exchange (e.g., SETUP + IDENTITY), but no explicit L3 RELEASE/REJECT cause was decoded near the end; "+
			"the termination marker is CAF(reason=%s - %s). Attribution therefore relies primarily on radio DL evidence for this case.", cafText, cafLabel)
	case sum.ReleaseNearEnd:
		eval = "An explicit L3 release/reject was observed near the end, which strengthens core/signaling attribution (especially under healthy radio conditions)."
	default:
		eval = "No explicit L3 release/reject cause was decoded near setup end."
	}

	return SignalingAssessment{
		RRCEstablished:                 sum.DirectTransfer,
		DirectTransferObserved:         sum.DirectTransfer,
		ExplicitL3ReleaseRejectNearEnd: sum.ReleaseNearEnd,
		ImmediateReleaseNearEnd:        sum.ReleaseNearEnd,
		ConnectedEver:                  s.Connected(),
		CadStatus:                      s.CadStatus,
		CadCause:                       s.CadCause,
		CadCauseLabel:                  DecodeCadCause(s.CadCause),
		CafReason:                      s.CafReason,
		CafReasonLabel:                 cafLabel,
		TerminalMarker:                 marker,
		TerminalMarkerLabel:            markerLabel,
		Evaluation:                     eval,
	}
}

func interpret(cat Category, coreSignature bool) string {
	switch {
	case cat == SetupSignalingCore || coreSignature:
		return "Strong and stable radio conditions with immediate release indicate signaling/core-layer rejection."
	case cat == SetupULCoverage:
		return "Setup failed due to uplink margin limitation under weak/unstable radio conditions."
	case cat == SetupDLInterference:
		return "Setup failed under downlink quality/interference degradation."
	case cat == SetupMobility:
		return "Setup failed around mobility transition instability."
	case cat == SetupCongestion:
		return "Setup failed with admission/resource congestion indicators."
	case cat == SetupTimeout:
		return "Setup timer expired before connection could complete."
	}
	return "Setup failure likely originated from mixed radio/signaling factors."
}
