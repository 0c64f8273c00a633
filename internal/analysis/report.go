package analysis

import (
	"github.com/banshee-data/callrca/internal/evidence"
	"github.com/banshee-data/callrca/internal/narrative"
	"github.com/banshee-data/callrca/internal/radio"
	"github.com/banshee-data/callrca/internal/rca"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/snapshot"
)

// Report is the result of one analysis run.
type Report struct {
	ID            string          `json:"id"`
	GeneratedAt   string          `json:"generatedAt"`
	EngineVersion string          `json:"engineVersion"`
	Summary       Summary         `json:"summary"`
	Sessions      []SessionReport `json:"sessions"`
	RadioSeries   RadioSeries     `json:"radioSeries"`
	Diagnostics   Diagnostics     `json:"diagnostics"`
}

// Summary counts sessions by outcome. Outcomes also carries the legacy
// SETUP_FAILURE key, equal to CALL_SETUP_FAILURE.
type Summary struct {
	TotalCaaSessions int                        `json:"totalCaaSessions"`
	Outcomes         map[session.ResultType]int `json:"outcomes"`
}

type RadioSeries struct {
	ByDevice []radio.DeviceCount `json:"byDevice"`
}

type Diagnostics struct {
	SkippedTotal int            `json:"skippedTotal"`
	Skipped      map[string]int `json:"skipped"`
}

// Classification is the verdict together with its rendered narrative.
type Classification struct {
	rca.Classification
	narrative.Narrative
}

// SessionReport is a finalized session with everything derived from it.
type SessionReport struct {
	*session.Session

	StartTsIso     *string `json:"startTsIso"`
	ConnectedTsIso *string `json:"connectedTsIso"`
	EndTsCadIso    *string `json:"endTsCadIso"`
	EndTsCafIso    *string `json:"endTsCafIso"`
	EndTsCareIso   *string `json:"endTsCareIso"`
	EndTsRealIso   *string `json:"endTsRealIso"`

	CallStartTs              *int64  `json:"callStartTs"`
	CallStartTsIso           *string `json:"callStartTsIso"`
	AnalysisWindowStartTs    *int64  `json:"analysisWindowStartTs"`
	AnalysisWindowStartTsIso *string `json:"analysisWindowStartTsIso"`
	MarkerTs                 *int64  `json:"markerTs"`
	MarkerTsIso              *string `json:"markerTsIso"`

	Category   rca.Category `json:"category"`
	Domain     string       `json:"domain"`
	Confidence float64      `json:"confidence"`
	Reason     string       `json:"reason"`

	Classification           Classification     `json:"classification"`
	Snapshot                 *snapshot.Snapshot `json:"snapshot"`
	ContextBundle            *evidence.Bundle   `json:"contextBundle"`
	SetupFailureDeepAnalysis *rca.DeepAnalysis  `json:"setupFailureDeepAnalysis"`
}

func newSummary() Summary {
	out := Summary{Outcomes: make(map[session.ResultType]int, len(session.ResultTypes))}
	for _, rt := range session.ResultTypes {
		out.Outcomes[rt] = 0
	}
	return out
}

func (s *Summary) count(rt session.ResultType) {
	s.TotalCaaSessions++
	s.Outcomes[rt]++
	if rt == session.CallSetupFailure {
		s.Outcomes[session.SetupFailureAlias]++
	}
}
