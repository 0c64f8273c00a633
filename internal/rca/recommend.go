package rca

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/snapshot"
	"github.com/banshee-data/callrca/internal/units"
)

// Priority orders recommendations; P0 is most urgent.
type Priority string

const (
	P0 Priority = "P0"
	P1 Priority = "P1"
	P2 Priority = "P2"
)

func (p Priority) rank() int {
	switch p {
	case P0:
		return 0
	case P1:
		return 1
	case P2:
		return 2
	}
	return 9
}

// Recommendation is one remediation action.
type Recommendation struct {
	Priority    Priority `json:"priority"`
	ActionID    string   `json:"actionId"`
	Action      string   `json:"action"`
	Rationale   string   `json:"rationale"`
	OwnerHint   string   `json:"ownerHint"`
	Title       string   `json:"title,omitempty"`
	DetailsText string   `json:"detailsText,omitempty"`
}

// Action ids with behaviour attached.
const (
	ActionResolvePilotPollution  = "RESOLVE_PILOT_POLLUTION"
	ActionSolveInterferenceSites = "SOLVE_INTERFERENCE_STRONG_SIGNAL"
)

var actionAliases = map[string]string{
	"SOLVE_INTERFERENCE_UNDER_STRONG_SIGNAL": ActionSolveInterferenceSites,
}

// CanonicalActionID upper-cases an action id and resolves legacy aliases.
func CanonicalActionID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if canon, ok := actionAliases[id]; ok {
		return canon
	}
	return id
}

// SortRecommendations orders by priority, keeping catalog order within a
// priority.
func SortRecommendations(recs []Recommendation) []Recommendation {
	out := slices.Clone(recs)
	slices.SortStableFunc(out, func(a, b Recommendation) int {
		return a.Priority.rank() - b.Priority.rank()
	})
	return out
}

var catalog = map[Category][]Recommendation{
	DropInterference: {
		{P0, ActionResolvePilotPollution, "Resolve Pilot Pollution", "Pilot Pollution risk is high; apply overlap/dominance remediation to stabilize serving behavior.", "RAN Optimization", "", ""},
		{P0, "VALIDATE_PILOT_DOMINANCE_DROP_CLUSTER", "Validate pilot dominance in drop cluster (ΔRSCP(best-2nd)<3 dB, active set size >=3, CPICH review).", "Weak serving dominance and large active set indicate pilot pollution risk in interference drops.", "RAN Optimization", "", ""},
		{P0, "AUDIT_PILOT_POLLUTION_SHO", "Audit pilot pollution and dominance in the drop area (top pilots, active-set churn, SHO behavior).", "Strong RSCP with poor quality/BLER is a classic interference signature.", "Optimization", "", ""},
		{P0, "CHECK_INTERFERENCE_SOURCES", "Validate external/internal interference sources around the affected cell sector and time bucket.", "Interference is often location/time-specific and repeatable.", "Field", "", ""},
		{P1, "VERIFY_DL_QUALITY_KPIS", "Review DL quality KPIs (EcNo distribution, BLER, SHO failures) per serving/neighbor cells.", "Confirms whether interference is persistent and cell-specific.", "RAN", "", ""},
		{P2, "REPEAT_DRIVE_TEST_POST_CHANGE", "Repeat drive test after optimization changes to verify drop-rate improvement.", "Closes the loop with objective post-change validation.", "Optimization", "", ""},
	},
	DropCoverageUL: {
		{P0, "INVEST_UL_TX_SAT_ZONES", "Investigate uplink coverage limits and UE Tx saturation zones.", "High UE Tx near max indicates UL-limited coverage; cluster these zones to target RAN fixes.", "RAN", "", ""},
		{P1, "OPT_NEIGHBOR_LAYER_WEAK_COVERAGE", "Optimize neighbor/layer fallback strategy (including IRAT where applicable).", "Improves call robustness at cell edge.", "Optimization", "", ""},
		{P2, "PLAN_COVERAGE_DENSIFICATION", "Evaluate coverage expansion/densification in repeated weak-UL zones.", "Persistent edge drops may require structural coverage improvement.", "Optimization", "", ""},
	},
	DropCoverageDL: {
		{P0, "CHECK_DL_COVERAGE_AZIMUTH_TILT", "Investigate DL coverage weakness (RSCP/EcNo), including tilt, azimuth, and overshooting sectors.", "Very weak downlink quality directly drives call drops.", "RAN", "", ""},
		{P1, "TUNE_NEIGHBOR_SHO_PARAMETERS", "Tune neighbor relations and SHO parameters for smoother serving transition.", "Coverage holes are amplified by mobility misalignment.", "Optimization", "", ""},
		{P2, "FIELD_VERIFY_DROP_GEOGRAPHY", "Plan targeted field verification across the repeated drop geography.", "Confirms spatial persistence and validates remediation impact.", "Field", "", ""},
	},
	DropMobility: {
		{P0, "AUDIT_NEIGHBORS_HO_PRIORITIES", "Audit missing/wrong neighbors and HO priorities between serving and candidate cells.", "Mobility defects cause abrupt radio release after HO attempts.", "Optimization", "", ""},
		{P0, "RETUNE_HO_THRESHOLDS", "Retune HO thresholds, hysteresis, and TTT to reduce ping-pong and late HO.", "Threshold misconfiguration is a major mobility-drop driver.", "Optimization", "", ""},
		{P1, "VALIDATE_IFHO_IRAT_CONFIG", "Validate IFHO/IRAT handover configuration and target-layer readiness.", "Cross-layer mobility failures often surface as drops.", "RAN", "", ""},
	},
	DropCongestion: {
		{P0, "CHECK_DROP_RESOURCE_UTILIZATION", "Check admission/code/power utilization at drop timestamps and busy-hour overlap.", "Resource saturation can trigger abnormal release.", "RAN", "", ""},
		{P1, "APPLY_DROP_LOAD_BALANCING", "Apply load balancing/capacity tuning on overloaded sectors.", "Reduces resource-driven call terminations.", "Optimization", "", ""},
		{P2, "TIGHTEN_CONGESTION_ALERTS", "Enable tighter congestion monitoring thresholds and alerts.", "Prevents recurrence through proactive control.", "Optimization", "", ""},
	},
	DropCoreTransport: {
		{P0, "CHECK_IUB_IU_TRANSPORT", "Check Iub/Iu transport stability and correlate link resets/alarms at drop time.", "Transport instability can terminate otherwise healthy calls.", "Transport", "", ""},
		{P1, "ANALYZE_CORE_RELEASE_CAUSES", "Analyze core release causes with MSC/RNC traces for matching sessions.", "Validates network-side release origin.", "Core", "", ""},
		{P2, "IMPROVE_PATH_RESILIENCY", "Improve resiliency and alarming on affected path elements.", "Reduces impact of transient transport/core faults.", "Transport", "", ""},
	},
	DropUnknown: {
		{P0, "CAPTURE_EVIDENCE_BUNDLE", "Capture full evidence bundle (last 50 events + last 10s radio series) for clustered drops.", "Unknown drops need richer context to isolate root cause.", "Optimization", "", ""},
		{P1, "EXPAND_PARSER_RELEASE_CAUSES", "Expand parser coverage for missing release causes and signaling markers.", "Classification quality depends on signaling completeness.", "RAN", "", ""},
		{P2, "REFINE_RULE_THRESHOLDS", "Refine rule thresholds after additional labeled samples.", "Improves deterministic category precision.", "Optimization", "", ""},
	},
	SetupTimeout: {
		{P0, "TRACE_SETUP_TIMEOUT_PATH", "Trace setup timer expiry path (CAD cause 102) across RNC/core signaling.", "Timer expiry indicates control-plane setup did not complete in time.", "Core", "", ""},
		{P1, "CHECK_SIGNALING_LATENCY_RETX", "Check signaling latency spikes and retransmission counters around failure time.", "Excessive signaling delay commonly causes setup timeout.", "Transport", "", ""},
	},
	SetupULCoverage: {
		{P0, "INVEST_UL_TX_SAT_ZONES", "Investigate uplink coverage limits and UE Tx saturation zones.", "High UE Tx near max indicates UL-limited coverage; cluster these zones to target RAN fixes.", "RAN", "", ""},
		{P1, "OPT_NEIGHBOR_LAYER_WEAK_COVERAGE", "Tune neighbor/layer reselection options in weak-coverage areas.", "Improves setup success probability at edge locations.", "Optimization", "", ""},
	},
	SetupDLInterference: {
		{P0, ActionSolveInterferenceSites, "Solve interference-under-strong-signal.", "BLER high under acceptable RSCP with low UL Tx indicates downlink interference/noise-rise decode impairment.", "RAN Optimization", "", ""},
		{P1, "COLLECT_DOMINANCE_CONTEXT", "Collect additional dominance context (CELLMEAS neighbors + >=2 pilot availability).", "When overlap is not measurable, multi-pilot evidence is required before dominance remediation.", "Optimization", "", ""},
		{P1, "VERIFY_DL_QUALITY_KPIS", "Review EcNo/BLER distributions on serving/overlapping cells for persistent impairment.", "Confirms whether issue is local and recurrent.", "RAN", "", ""},
		{P1, "MAP_CAF_REASON_CODES", "Decode/map CAF reason codes for setup failures.", "CAF is the terminal marker; mapping reason values improves attribution consistency.", "Optimization", "", ""},
	},
	SetupMobility: {
		{P0, "AUDIT_SETUP_MOBILITY", "Audit mobility events and neighbor readiness around setup failure.", "Setup failed shortly after HO/SHO activity.", "Optimization", "", ""},
		{P1, "TUNE_SETUP_HO_THRESHOLDS", "Tune HO thresholds/hysteresis/TTT to reduce late mobility transitions during setup.", "Late mobility transitions can destabilize setup completion.", "Optimization", "", ""},
	},
	SetupCongestion: {
		{P0, "CHECK_SETUP_RESOURCE_LIMITS", "Check code/power/admission resource limits at setup failure time.", "Resource shortage can block setup completion.", "RAN", "", ""},
		{P1, "APPLY_SETUP_LOAD_BALANCING", "Apply load balancing/capacity optimization on impacted cells.", "Reduces setup blocking during busy periods.", "Optimization", "", ""},
	},
	SetupSignalingCore: {
		{P0, "TRACE_SETUP_CORE_SIGNALING", "Trace setup signaling path across RNC/core for reject/release causes.", "Radio appears healthy; signaling/core path is most likely.", "Core", "", ""},
		{P1, "CHECK_CONTROL_PLANE_LATENCY", "Check control-plane latency/retransmissions around setup end.", "Timing and retransmission issues commonly affect setup completion.", "Transport", "", ""},
	},
	SetupUnknown: {
		{P0, "CAPTURE_EVIDENCE_BUNDLE", "Collect expanded signaling/radio context for failed setup attempts.", "Unknown setup failures need richer cause visibility.", "Optimization", "", ""},
		{P1, "EXPAND_PARSER_RELEASE_CAUSES", "Add missing parser hooks for release/reject causes if available in logs.", "Improves deterministic setup-failure attribution.", "RAN", "", ""},
	},
}

// Recommend returns the catalog actions for a category, falling back to the
// unknown category of drops and setup failures, limited and sorted by
// priority. Outcomes without a catalog entry get none.
func Recommend(rt session.ResultType, cat Category, snap *snapshot.Snapshot, th config.Thresholds) []Recommendation {
	recs, ok := catalog[cat]
	if !ok {
		switch rt {
		case session.DropCall:
			recs = catalog[DropUnknown]
		case session.CallSetupFailure:
			recs = catalog[SetupUnknown]
		}
	}
	if len(recs) > th.MaxRecommendations {
		recs = recs[:th.MaxRecommendations]
	}
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		r.ActionID = CanonicalActionID(r.ActionID)
		if r.ActionID == ActionSolveInterferenceSites {
			r.Title = "Solve interference-under-strong-signal"
			r.DetailsText = interferenceDetails(snap, th)
		}
		out = append(out, r)
	}
	return SortRecommendations(out)
}

func seriesRange(series []snapshot.SeriesPoint, lo, hi *float64) (*float64, *float64) {
	if len(series) == 0 {
		return lo, hi
	}
	vals := make([]float64, len(series))
	for i, p := range series {
		vals[i] = p.Value
	}
	return snapshot.Min(vals), snapshot.Max(vals)
}

func pct(n, d int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * 100))
}

// interferenceDetails is the verification checklist attached to the
// interference-under-strong-signal action.
func interferenceDetails(snap *snapshot.Snapshot, th config.Thresholds) string {
	if snap == nil {
		snap = &snapshot.Snapshot{}
	}
	rscpMin, rscpMax := seriesRange(snap.SeriesRSCP, snap.RSCPMin, snap.RSCPLast)
	ecnoMin, ecnoMax := seriesRange(snap.SeriesEcNo, snap.EcNoMin, snap.EcNoLast)

	var strong snapshot.StrongRSCPBadEcNo
	var ds snapshot.DeltaStats
	if snap.PilotPollution != nil {
		strong = snap.PilotPollution.StrongRSCPBadEcNo
		ds = snap.PilotPollution.DeltaStats
	}
	validBest, totalMimo := strong.DenomBestValid, strong.DenomTotalMimo
	k, y := ds.SamplesWith2Pilots, ds.TotalMimoSamples
	if snap.PilotPollution == nil {
		y = totalMimo
	}
	badDenom := validBest
	if badDenom == 0 {
		badDenom = totalMimo
	}

	lines := []string{
		"DL interference-under-strong-signal verification:",
		fmt.Sprintf("- RSCP (min/median/max): %s / %s / %s dBm", units.Fixed(rscpMin, 1), units.Fixed(snap.RSCPMedian, 1), units.Fixed(rscpMax, 1)),
		fmt.Sprintf("- EcNo (min/median/max): %s / %s / %s dB", units.Fixed(ecnoMin, 1), units.Fixed(snap.EcNoMedian, 1), units.Fixed(ecnoMax, 1)),
		fmt.Sprintf("- BLER max: %s %%", units.Fixed(snap.BlerMax, 1)),
		fmt.Sprintf("- UE Tx p90: %s dBm", units.Fixed(snap.TxP90, 1)),
		fmt.Sprintf("- Strong RSCP share (> %s dBm): %d%% (%d/%d)", num(th.StrongRSCPDbm), pct(strong.StrongCount, validBest), strong.StrongCount, validBest),
		fmt.Sprintf("- Strong RSCP+bad EcNo ratio: %d%% (%d/%d)", pct(strong.StrongBadCount, validBest), strong.StrongBadCount, strong.StrongCount),
		fmt.Sprintf("- ΔRSCP computed on %d/%d timestamps meeting the ≥2-pilot criterion.", k, y),
		fmt.Sprintf("- Strong RSCP+bad EcNo computed on %d/%d best-server samples.", strong.StrongBadCount, badDenom),
	}
	if k == 0 {
		lines = append(lines, fmt.Sprintf("- ΔRSCP not computable (0/%d ≥2-pilot timestamps). Dominance inference disabled.", y))
	}
	lines = append(lines, fmt.Sprintf("- Best-server denominator: %d/%d", validBest, totalMimo))
	return strings.Join(lines, "\n")
}
