// Package rca assigns a root-cause category, domain, confidence and evidence
// to a finalized call from its outcome, its radio snapshot and its signalling
// timeline. Classification never fails: when nothing matches, the call gets
// the unknown category of its outcome.
package rca

import (
	"fmt"
	"math"
	"strconv"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/snapshot"
	"github.com/banshee-data/callrca/internal/timeline"
	"github.com/banshee-data/callrca/internal/units"
)

// Category is the root-cause verdict of a call.
type Category string

const (
	CategorySuccess      Category = "SUCCESS"
	CategoryIncomplete   Category = "INCOMPLETE_OR_UNKNOWN_END"
	CategoryUnclassified Category = "UNCLASSIFIED"

	SetupULCoverage     Category = "SETUP_FAIL_UL_COVERAGE"
	SetupDLInterference Category = "SETUP_FAIL_DL_INTERFERENCE"
	SetupMobility       Category = "SETUP_FAIL_MOBILITY"
	SetupCongestion     Category = "SETUP_FAIL_CONGESTION"
	SetupTimeout        Category = "SETUP_TIMEOUT"
	SetupSignalingCore  Category = "SETUP_FAIL_SIGNALING_OR_CORE"
	SetupUnknown        Category = "SETUP_FAIL_UNKNOWN"

	DropInterference  Category = "DROP_INTERFERENCE"
	DropCoverageUL    Category = "DROP_COVERAGE_UL"
	DropCoverageDL    Category = "DROP_COVERAGE_DL"
	DropMobility      Category = "DROP_MOBILITY"
	DropCongestion    Category = "DROP_CONGESTION"
	DropCoreTransport Category = "DROP_CORE_TRANSPORT"
	DropUnknown       Category = "DROP_UNKNOWN"
)

// Domains group categories by the part of the network they point at.
const (
	DomainNormal           = "Normal"
	DomainUndetermined     = "Undetermined"
	DomainCoverage         = "Radio/Coverage"
	DomainInterference     = "Radio/Interference"
	DomainMobility         = "Radio/Mobility"
	DomainCongestion       = "Radio/Congestion"
	DomainSignalingTimeout = "Signaling/Timeout"
	DomainCoreSignaling    = "Core/Signaling"
)

const (
	unknownConfidence        = 0.5
	coverageConfidence       = 0.85
	dlInterferenceConfidence = 0.80
	mobilityConfidence       = 0.80
	congestionConfidence     = 0.75
	timeoutConfidence        = 0.85
	dropRuleConfidence       = 0.7

	evidenceNoRuleMatched = "No rule matched"
)

// Classification is the verdict for one call.
type Classification struct {
	ResultType session.ResultType `json:"resultType"`
	Category   Category           `json:"category"`
	Domain     string             `json:"domain"`
	Confidence float64            `json:"confidence"`
	Reason     string             `json:"reason"`
	Evidence   []string           `json:"evidence"`
}

func verdict(rt session.ResultType, cat Category, domain, reason string, confidence float64, evidence ...string) Classification {
	return Classification{
		ResultType: rt,
		Category:   cat,
		Domain:     domain,
		Confidence: math.Max(0, math.Min(1, confidence)),
		Reason:     reason,
		Evidence:   evidence,
	}
}

// metrics are the snapshot values the rules read. A nil snapshot has none.
type metrics struct {
	rscp, ecno, tx, bler *float64
	blerEvidence         bool
	rlcCount             int
	pp                   *snapshot.PilotPollution
}

func metricsOf(snap *snapshot.Snapshot) metrics {
	if snap == nil {
		return metrics{}
	}
	return metrics{
		rscp:         snap.RSCPMedian,
		ecno:         snap.EcNoMedian,
		tx:           snap.TxP90,
		bler:         snap.BlerMax,
		blerEvidence: snap.BlerEvidence,
		rlcCount:     snap.RlcBlerSamplesCount,
		pp:           snap.PilotPollution,
	}
}

func atLeast(v *float64, t float64) bool { return v != nil && *v >= t }
func atMost(v *float64, t float64) bool  { return v != nil && *v <= t }
func above(v *float64, t float64) bool   { return v != nil && *v > t }
func below(v *float64, t float64) bool   { return v != nil && *v < t }

// num prints a threshold the way it is written in configuration.
func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Classify returns the verdict for a finalized session. snap may be nil for
// outcomes that carry no radio window.
func Classify(s *session.Session, snap *snapshot.Snapshot, th config.Thresholds) Classification {
	switch s.ResultType {
	case session.Success:
		return verdict(session.Success, CategorySuccess, DomainNormal,
			"Normal clearing (CAD status=1, cause=16).", 1,
			"CAD status=1 and cause=16")
	case session.CallSetupFailure:
		return classifySetupFailure(s, metricsOf(snap), th)
	case session.DropCall:
		return classifyDrop(metricsOf(snap), th)
	case session.IncompleteEnd:
		return verdict(session.IncompleteEnd, CategoryIncomplete, DomainUndetermined,
			"Call connected but no explicit end marker (CAD/CAF/CARE) in parsed range.", unknownConfidence,
			"Connected without end marker in parsed range")
	default:
		return verdict(session.Unclassified, CategoryUnclassified, DomainUndetermined,
			"No matching call outcome.", unknownConfidence, evidenceNoRuleMatched)
	}
}

// setupSignals are the timeline facts the setup-failure rules use.
type setupSignals struct {
	hoDelta         *float64
	congestion      bool
	releaseOrReject bool
}

func signalsOf(s *session.Session) setupSignals {
	var sig setupSignals
	if s.EndTsReal != nil {
		if d, ok := timeline.LastHandoverDelta(s.EventTimeline, *s.EndTsReal); ok {
			sig.hoDelta = &d
		}
	}
	sig.congestion = timeline.AnyMatch(s.EventTimeline, timeline.CongestionPattern)
	sig.releaseOrReject = timeline.AnyMatch(s.EventTimeline, timeline.ReleasePattern)
	return sig
}

func (sig setupSignals) mobilityNear(th config.Thresholds) bool {
	return atMost(sig.hoDelta, th.MobilityProximitySeconds)
}

func classifySetupFailure(s *session.Session, m metrics, th config.Thresholds) Classification {
	sig := signalsOf(s)
	cause := s.CadCause

	if atLeast(m.tx, th.ULTxP90Dbm) &&
		(atMost(m.rscp, th.WeakRSCPDbm) || atMost(m.ecno, th.SevereEcNoDb) || atLeast(m.bler, th.ULBlerPct)) {
		return verdict(session.CallSetupFailure, SetupULCoverage, DomainCoverage,
			"SETUP_FAIL_UL_COVERAGE: high UE Tx with weak/unstable radio.", coverageConfidence,
			"txP90="+units.Plain(m.tx),
			"rscpMedian="+units.Plain(m.rscp),
			"ecnoMedian="+units.Plain(m.ecno),
			"blerMax="+units.Plain(m.bler))
	}

	if (m.blerEvidence || atLeast(m.bler, th.BlerExtremePct)) &&
		atLeast(m.bler, th.BlerCollapsePct) &&
		(m.tx == nil || *m.tx <= th.LowTxP90Dbm) &&
		atLeast(m.rscp, th.AcceptableRSCPDbm) {
		return verdict(session.CallSetupFailure, SetupDLInterference, DomainInterference,
			"DL decode impairment during setup: BLER is extremely high while UL power is low and RSCP is acceptable. "+
				"This points to downlink quality collapse (interference/noise rise/control-channel decode issues), not UL limitation.",
			dlInterferenceConfidence, dlInterferenceEvidence(m, th)...)
	}

	if sig.mobilityNear(th) {
		return verdict(session.CallSetupFailure, SetupMobility, DomainMobility,
			"SETUP_FAIL_MOBILITY: setup failure occurred shortly after mobility activity.", mobilityConfidence,
			fmt.Sprintf("Last HO/SHO event was %.1fs before setup end", *sig.hoDelta))
	}

	if sig.congestion {
		return verdict(session.CallSetupFailure, SetupCongestion, DomainCongestion,
			"SETUP_FAIL_CONGESTION: resource/admission congestion indicators around setup failure.", congestionConfidence,
			"Resource/admission congestion markers found in signaling timeline")
	}

	if cause != nil && *cause == session.CauseSetupTimerExp {
		marker := "No explicit release/reject marker decoded near setup end"
		if sig.releaseOrReject {
			marker = "Explicit release/reject marker observed near setup end"
		}
		return verdict(session.CallSetupFailure, SetupTimeout, DomainSignalingTimeout,
			"SETUP_TIMEOUT: CAD cause=102 (Setup timeout - timer expiry).", timeoutConfidence,
			"CAD cause=102 (Setup timeout - timer expiry)", marker)
	}

	if c, ok := classifyCore(s, m, sig, th); ok {
		return c
	}

	return verdict(session.CallSetupFailure, SetupUnknown, DomainUndetermined,
		"Setup failed without dominant signature.", unknownConfidence, evidenceNoRuleMatched)
}

func dlInterferenceEvidence(m metrics, th config.Thresholds) []string {
	ev := []string{
		fmt.Sprintf("blerMax=%s >= %s (DL decode failure signature)", units.Plain(m.bler), num(th.BlerCollapsePct)),
		fmt.Sprintf("txP90=%s <= %s (UL margin OK; not UL-limited)", units.Plain(m.tx), num(th.LowTxP90Dbm)),
		fmt.Sprintf("rscpMedian=%s >= %s (coverage OK)", units.Plain(m.rscp), num(th.AcceptableRSCPDbm)),
	}
	if m.ecno != nil {
		quality := "quality OK"
		if *m.ecno <= th.BorderlineEcNoDb {
			quality = "quality degraded"
		}
		ev = append(ev, fmt.Sprintf("ecnoMedian=%s dB (%s)", units.Plain(m.ecno), quality))
	}
	if !m.blerEvidence {
		ev = append(ev, fmt.Sprintf("BLER evidence is limited (<%d RLCBLER rows), but BLER collapse is extreme and retained as supporting evidence.",
			th.BlerEvidenceMinSamples))
	}
	if m.pp != nil && m.pp.DeltaStats.TotalMimoSamples > 0 {
		ds := m.pp.DeltaStats
		ev = append(ev, fmt.Sprintf("ΔRSCP computed on %d/%d timestamps meeting >=2-pilot criterion.",
			ds.SamplesWith2Pilots, ds.TotalMimoSamples))
		if ds.SamplesWith2Pilots == 0 {
			ev = append(ev, "Dominance/overlap inference disabled (no >=2 pilots).")
		}
	}
	return ev
}

func classifyDrop(m metrics, th config.Thresholds) Classification {
	if atLeast(m.rscp, th.StrongRSCPDbm) &&
		(atMost(m.ecno, th.SevereEcNoDb) || atLeast(m.bler, th.DropBlerPct)) &&
		(m.tx == nil || *m.tx <= th.LowTxP90Dbm) {
		return verdict(session.DropCall, DropInterference, DomainInterference,
			"DROP_INTERFERENCE: strong RSCP with degraded quality/BLER and low-to-mid TX.", dropRuleConfidence,
			fmt.Sprintf("rscpMedian=%s >= %s", units.Plain(m.rscp), num(th.StrongRSCPDbm)),
			fmt.Sprintf("ecnoMedian=%s <= %s or blerMax=%s >= %s",
				units.Plain(m.ecno), num(th.SevereEcNoDb), units.Plain(m.bler), num(th.DropBlerPct)),
			fmt.Sprintf("txP90=%s <= %s", units.Plain(m.tx), num(th.LowTxP90Dbm)))
	}
	if atLeast(m.tx, th.ULTxP90Dbm) && atMost(m.rscp, th.WeakRSCPDbm) {
		return verdict(session.DropCall, DropCoverageUL, DomainCoverage,
			"DROP_COVERAGE_UL: high UE Tx with weak RSCP.", dropRuleConfidence,
			fmt.Sprintf("txP90=%s >= %s", units.Plain(m.tx), num(th.ULTxP90Dbm)),
			fmt.Sprintf("rscpMedian=%s <= %s", units.Plain(m.rscp), num(th.WeakRSCPDbm)))
	}
	if atMost(m.rscp, th.DLCoverageRSCPDbm) && atMost(m.ecno, th.BadEcNoDb) {
		return verdict(session.DropCall, DropCoverageDL, DomainCoverage,
			"DROP_COVERAGE_DL: very weak downlink coverage.", dropRuleConfidence,
			fmt.Sprintf("rscpMedian=%s <= %s", units.Plain(m.rscp), num(th.DLCoverageRSCPDbm)),
			fmt.Sprintf("ecnoMedian=%s <= %s", units.Plain(m.ecno), num(th.BadEcNoDb)))
	}
	return verdict(session.DropCall, DropUnknown, DomainUndetermined,
		"Connected call ended abnormally without dominant signature.", unknownConfidence, evidenceNoRuleMatched)
}
