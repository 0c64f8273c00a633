// Package narrative turns a classified call into the explanation block, the
// gated recommendation list and the one-paragraph summary shown to
// engineers.
package narrative

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/rca"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/snapshot"
	"github.com/banshee-data/callrca/internal/timeline"
	"github.com/banshee-data/callrca/internal/units"
)

const (
	maxWhyWhileBuilding = 5
	maxWhy              = 6
	maxSummaryEvidence  = 3
	maxSummaryActions   = 2
)

// KeySignals are the headline numbers of the final radio window. Absent
// values are omitted.
type KeySignals struct {
	RSCP           *float64 `json:"rscp,omitempty"`
	EcNo           *float64 `json:"ecno,omitempty"`
	BlerMax        *float64 `json:"blerMax,omitempty"`
	TxP90          *float64 `json:"txP90,omitempty"`
	LastPSC        string   `json:"lastPsc,omitempty"`
	LastUARFCN     string   `json:"lastUarfcn,omitempty"`
	PollutionScore *int     `json:"pollutionScore,omitempty"`
	PollutionLevel string   `json:"pollutionLevel,omitempty"`
}

func (k KeySignals) empty() bool { return k == KeySignals{} }

type Explanation struct {
	WhatHappened string      `json:"whatHappened"`
	WhyWeThinkSo []string    `json:"whyWeThinkSo"`
	KeySignals   *KeySignals `json:"keySignals,omitempty"`
}

// Narrative is the rendered view of one classified call.
type Narrative struct {
	Explanation         Explanation              `json:"explanation"`
	PilotPollution      *snapshot.PilotPollution `json:"pilotPollution"`
	Recommendations     []rca.Recommendation     `json:"recommendations"`
	OneParagraphSummary string                   `json:"oneParagraphSummary"`
}

// Input is everything the narrative reads. Snapshot may be nil.
// ReportedActiveSetSize is the RRC-reported active set size when the log
// carried one.
type Input struct {
	Session               *session.Session
	Classification        rca.Classification
	Snapshot              *snapshot.Snapshot
	ReportedActiveSetSize *int
}

// Build renders the narrative for one call.
func Build(in Input, th config.Thresholds) Narrative {
	cls, snap := in.Classification, in.Snapshot
	var pp *snapshot.PilotPollution
	if snap != nil {
		pp = snap.PilotPollution
	}

	why := make([]string, 0, maxWhy)
	for _, e := range cls.Evidence {
		if e != "" {
			why = append(why, e)
		}
	}
	for _, b := range signalBullets(in, pp) {
		if len(why) < maxWhyWhileBuilding {
			why = append(why, b)
		}
	}
	if len(why) > maxWhy {
		why = why[:maxWhy]
	}

	recs := gateRecommendations(rca.Recommend(cls.ResultType, cls.Category, snap, th), pp, th)

	n := Narrative{
		Explanation: Explanation{
			WhatHappened: whatHappened(cls.ResultType, cls.Category),
			WhyWeThinkSo: why,
		},
		PilotPollution:      pp,
		Recommendations:     recs,
		OneParagraphSummary: summary(in, pp, why, recs),
	}
	if ks := keySignals(snap, pp); !ks.empty() {
		n.Explanation.KeySignals = &ks
	}
	return n
}

func riskLevel(pp *snapshot.PilotPollution) string {
	switch {
	case pp.RiskLevel != "":
		return pp.RiskLevel
	case pp.PollutionLevel != "":
		return pp.PollutionLevel
	}
	return "Unknown"
}

func withUnit(v *float64, unit string) (string, bool) {
	return units.WithUnit(v, unit, 1)
}

func signalBullets(in Input, pp *snapshot.PilotPollution) []string {
	snap := in.Snapshot
	if snap == nil {
		snap = &snapshot.Snapshot{}
	}
	var out []string
	if txt, ok := withUnit(snap.RSCPMedian, units.DBm); ok {
		out = append(out, "RSCP median: "+txt)
	}
	if txt, ok := withUnit(snap.EcNoMedian, units.DB); ok {
		out = append(out, "Ec/No median: "+txt)
	}
	if snap.BlerEvidence {
		if txt, ok := withUnit(snap.BlerMax, units.Percent); ok {
			out = append(out, "BLER max: "+txt)
		}
	} else if in.Snapshot != nil {
		out = append(out, fmt.Sprintf("BLER: not informative (insufficient RLC BLER samples during setup: %d)", snap.RlcBlerSamplesCount))
	}
	if txt, ok := withUnit(snap.TxP90, units.DBm); ok {
		out = append(out, "UE Tx p90: "+txt)
	}

	if pp != nil {
		out = append(out, fmt.Sprintf("Pilot pollution risk: %s (%d/100)", riskLevel(pp), pp.Score))
		ds := pp.DeltaStats
		if ds.ConfidenceLow {
			out = append(out, "ΔRSCP confidence is low (<30% of samples with >=2 pilots), so it was not used as primary root-cause evidence.")
		} else {
			ratio := units.NotAvailable
			if ds.LowDeltaRatio != nil {
				ratio = strconv.FormatFloat(*ds.LowDeltaRatio*100, 'f', 0, 64)
			}
			out = append(out, fmt.Sprintf("ΔRSCP median=%s dB, ΔRSCP<3dB ratio=%s%%", units.Fixed(ds.MedianDb, 2), ratio))
		}
	}
	if r := in.ReportedActiveSetSize; r != nil && pp != nil && math.Abs(float64(*r)-pp.ActiveSet.Mean) >= 1 {
		out = append(out, "Note: RRC Active Set Size (reported) may differ from Active-set proxy (<=3 dB) because the proxy counts only near-equal-strength pilots.")
	}
	return out
}

func whatHappened(rt session.ResultType, cat rca.Category) string {
	switch rt {
	case session.DropCall:
		switch cat {
		case rca.DropInterference:
			return "Call dropped while signal strength remained good but radio quality degraded."
		case rca.DropCoverageUL:
			return "Call dropped with uplink-limited coverage conditions."
		case rca.DropCoverageDL:
			return "Call dropped under very weak downlink coverage."
		}
		return "Call dropped after connection with abnormal end behavior."
	case session.CallSetupFailure:
		switch cat {
		case rca.SetupTimeout:
			return "Call setup failed due to signaling timeout."
		case rca.SetupDLInterference:
			return "Call setup failed under downlink quality/interference conditions."
		case rca.SetupMobility:
			return "Call setup failed around a mobility transition (HO/SHO proximity)."
		case rca.SetupCongestion:
			return "Call setup failed with congestion/resource-admission indicators."
		case rca.SetupSignalingCore:
			return "Call setup failed with healthy radio and signaling/core indicators."
		}
		return "Call setup failed before connection was established."
	case session.IncompleteEnd:
		return "Call connected but no explicit end marker was found in parsed range."
	}
	return "Session analyzed."
}

// pollutionActionAllowed requires a High or Moderate risk backed by enough
// rows with two or more pilots.
func pollutionActionAllowed(pp *snapshot.PilotPollution, th config.Thresholds) bool {
	ratio := pp.CoverageRatio()
	if ratio == nil {
		return false
	}
	level := strings.TrimSpace(riskLevel(pp))
	return (level == config.LevelHigh || level == config.LevelModerate) && *ratio >= th.DominanceCoverageMin
}

func gateRecommendations(recs []rca.Recommendation, pp *snapshot.PilotPollution, th config.Thresholds) []rca.Recommendation {
	if !pollutionActionAllowed(pp, th) {
		out := make([]rca.Recommendation, 0, len(recs))
		for _, r := range recs {
			if rca.CanonicalActionID(r.ActionID) != rca.ActionResolvePilotPollution {
				out = append(out, r)
			}
		}
		return out
	}
	for _, r := range recs {
		if rca.CanonicalActionID(r.ActionID) == rca.ActionResolvePilotPollution {
			return recs
		}
	}
	out := rca.SortRecommendations(append([]rca.Recommendation{{
		Priority:  rca.P0,
		ActionID:  rca.ActionResolvePilotPollution,
		Action:    "Resolve Pilot Pollution",
		Rationale: "Pilot Pollution/overlap risk is high; resolve dominance collapse before or alongside category-specific actions.",
		OwnerHint: "RAN Optimization",
	}}, recs...))
	if len(out) > th.MaxRecommendations {
		out = out[:th.MaxRecommendations]
	}
	return out
}

func keySignals(snap *snapshot.Snapshot, pp *snapshot.PilotPollution) KeySignals {
	var ks KeySignals
	if snap == nil {
		return ks
	}
	ks.RSCP, ks.EcNo, ks.BlerMax, ks.TxP90 = snap.RSCPMedian, snap.EcNoMedian, snap.BlerMax, snap.TxP90
	if snap.LastPSC != nil {
		ks.LastPSC = strconv.Itoa(*snap.LastPSC)
	}
	if snap.LastUARFCN != nil {
		ks.LastUARFCN = strconv.Itoa(*snap.LastUARFCN)
	}
	if pp != nil {
		score := pp.Score
		ks.PollutionScore = &score
		ks.PollutionLevel = riskLevel(pp)
	}
	return ks
}

func durationSeconds(s *session.Session) (float64, bool) {
	if s == nil || s.StartTs == nil || s.EndTsReal == nil || *s.EndTsReal < *s.StartTs {
		return 0, false
	}
	return float64(*s.EndTsReal-*s.StartTs) / 1000, true
}

func summary(in Input, pp *snapshot.PilotPollution, why []string, recs []rca.Recommendation) string {
	cls, snap, s := in.Classification, in.Snapshot, in.Session
	cat := string(cls.Category)
	if cat == "" {
		cat = "UNKNOWN"
	}
	pct := int(math.Round(cls.Confidence * 100))

	top := why
	if len(top) > maxSummaryEvidence {
		top = top[:maxSummaryEvidence]
	}
	evidenceTop := strings.Join(top, "; ")

	var after string
	dur, hasDur := durationSeconds(s)

	var b strings.Builder
	switch cls.ResultType {
	case session.DropCall:
		if hasDur {
			after = fmt.Sprintf(" after %.1fs", dur)
		}
		if evidenceTop == "" {
			evidenceTop = "available abnormal end indicators"
		}
		fmt.Fprintf(&b, "A UMTS voice call dropped%s. The most likely cause is %s (%d%%), driven by %s.", after, cat, pct, evidenceTop)
	case session.CallSetupFailure:
		if hasDur {
			after = fmt.Sprintf(" after %.1fs from attempt start", dur)
		}
		if evidenceTop == "" {
			evidenceTop = "available setup-failure indicators"
		}
		fmt.Fprintf(&b, "A UMTS voice call setup failed (call never connected)%s. The most likely cause is %s (%d%%), driven by %s.", after, cat, pct, evidenceTop)
	case session.IncompleteEnd:
		fmt.Fprintf(&b, "A UMTS voice call connected but no explicit end marker was captured in parsed logs, so final outcome is %s.", strings.ToLower(cat))
	default:
		fmt.Fprintf(&b, "%s (%d%%)", cat, pct)
	}

	if parts := metricParts(snap); len(parts) > 0 {
		fmt.Fprintf(&b, " Final-window radio metrics: %s.", strings.Join(parts, ", "))
	}
	if pp != nil && pp.DeltaStats.TotalMimoSamples > 0 && pp.DeltaStats.SamplesWith2Pilots == 0 {
		fmt.Fprintf(&b, " Dominance inference disabled (0/%d >=2-pilot timestamps).", pp.DeltaStats.TotalMimoSamples)
	}
	if s != nil && s.EndTsReal != nil {
		if d, ok := timeline.LastHandoverDelta(s.EventTimeline, *s.EndTsReal); ok {
			fmt.Fprintf(&b, " The end occurred %.1fs after the last HO event.", d)
		}
	}
	if p0 := p0Actions(recs); p0 != "" {
		fmt.Fprintf(&b, " Recommended next actions: %s.", p0)
	}
	return b.String()
}

// metricParts lists the final-window metrics. Without BLER evidence the
// BLER value is replaced by an explicit n/a note.
func metricParts(snap *snapshot.Snapshot) []string {
	if snap == nil {
		return nil
	}
	var parts []string
	if txt, ok := withUnit(snap.RSCPMedian, units.DBm); ok {
		parts = append(parts, "RSCP "+txt)
	}
	if txt, ok := withUnit(snap.EcNoMedian, units.DB); ok {
		parts = append(parts, "Ec/No "+txt)
	}
	if txt, ok := withUnit(snap.BlerMax, units.Percent); ok && snap.BlerEvidence {
		parts = append(parts, "BLER max "+txt)
	}
	if txt, ok := withUnit(snap.TxP90, units.DBm); ok {
		parts = append(parts, "UE Tx p90 "+txt)
	}
	if !snap.BlerEvidence {
		parts = append(parts, "BLER n/a (insufficient setup-phase evidence)")
	}
	return parts
}

func p0Actions(recs []rca.Recommendation) string {
	var out []string
	for _, r := range recs {
		if r.Priority != rca.P0 {
			continue
		}
		if a := strings.TrimRight(strings.TrimSpace(r.Action), "."); a != "" {
			out = append(out, a)
		}
		if len(out) == maxSummaryActions {
			break
		}
	}
	return strings.Join(out, "; ")
}
