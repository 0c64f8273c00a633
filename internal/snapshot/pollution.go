package snapshot

import (
	"fmt"
	"math"

	"github.com/banshee-data/callrca/internal/config"
)

// Final pollution labels, most specific first.
const (
	LabelPilotPollutionDL   = "Pilot Pollution / DL Interference"
	LabelDLInterference     = "DL Interference (dominance evidence unavailable)"
	LabelWeakOverlap        = "High overlap / poor dominance under weak coverage"
	LabelOverlapRisk        = "Overlap risk"
	LabelLowOverlap         = "Low overlap risk"
	LabelDominanceNoSignal  = "Dominance unavailable / low interference risk"
	LevelNotAvailable       = "N/A"
	activeSetDefinitionText = "count of pilots within %g dB of best RSCP per timestamp"
)

// DeltaStats describes the best-minus-second RSCP gaps in the window.
type DeltaStats struct {
	MedianDb           *float64  `json:"medianDb"`
	StdDb              *float64  `json:"stdDb"`
	LowDeltaRatio      *float64  `json:"lt3dbRatio"`
	SamplesWith2Pilots int       `json:"samplesWith2Pilots"`
	TotalMimoSamples   int       `json:"totalMimoSamples"`
	ComputedCount      int       `json:"computedCount"`
	ConfidenceLow      bool      `json:"confidenceLow"`
	UnavailableReason  *string   `json:"deltaUnavailableReason"`
	Deltas             []float64 `json:"deltas"`
}

// StrongRSCPBadEcNo counts best-server samples with strong RSCP and poor
// EcNo, the classic signature of interference rather than coverage.
type StrongRSCPBadEcNo struct {
	Ratio            *float64 `json:"ratio"`
	RatioStrongShare *float64 `json:"ratioStrongShare"`
	StrongCount      int      `json:"strongCount"`
	StrongBadCount   int      `json:"strongBadCount"`
	DenomBestValid   int      `json:"denomBestValid"`
	DenomTotalMimo   int      `json:"denomTotalMimo"`
	RSCPThresholdDbm float64  `json:"rscpThresholdDbm"`
	EcNoThresholdDb  float64  `json:"ecnoThresholdDb"`
	RSCPMinDbm       *float64 `json:"rscpMinDbm"`
	RSCPMaxDbm       *float64 `json:"rscpMaxDbm"`
	EcNoMinDb        *float64 `json:"ecnoMinDb"`
	EcNoMaxDb        *float64 `json:"ecnoMaxDb"`
}

// ActiveSetProxy estimates active-set size from pilots close to the best.
type ActiveSetProxy struct {
	Definition string  `json:"definition"`
	Mean       float64 `json:"mean"`
	Max        int     `json:"max"`
}

// PilotPollution is the overlap and interference assessment of a window.
type PilotPollution struct {
	RiskLevel          string            `json:"riskLevel"`
	Score              int               `json:"score"`
	PollutionScore     int               `json:"pollutionScore"`
	PollutionLevel     string            `json:"pollutionLevel"`
	DominanceScore     *int              `json:"dominanceScore"`
	DominanceLevel     string            `json:"dominanceLevel"`
	DominanceAvailable bool              `json:"dominanceAvailable"`
	InterferenceScore  int               `json:"interferenceScore"`
	InterferenceLevel  string            `json:"interferenceLevel"`
	StrongRSCPShare    *float64          `json:"strongRscpShare"`
	FinalLabel         string            `json:"finalLabel"`
	DeltaStats         DeltaStats        `json:"deltaStats"`
	StrongRSCPBadEcNo  StrongRSCPBadEcNo `json:"strongRscpBadEcno"`
	BestPSCSwitches    int               `json:"bestPscSwitches"`
	BestPSC            *int              `json:"bestPsc"`
	ActiveSet          ActiveSetProxy    `json:"activeSet"`
	DetailsText        []string          `json:"detailsText"`
	Detected           bool              `json:"detected"`
}

// CoverageRatio is the share of MIMOMEAS rows that carried two or more
// pilots, or nil when the window had none.
func (p *PilotPollution) CoverageRatio() *float64 {
	if p == nil || p.DeltaStats.TotalMimoSamples == 0 {
		return nil
	}
	return ptr(float64(p.DeltaStats.SamplesWith2Pilots) / float64(p.DeltaStats.TotalMimoSamples))
}

func clampScore(v int) int {
	return max(0, min(100, v))
}

// dominanceScore is nil when no row had two pilots. The delta statistics
// only count when enough rows carried them.
func dominanceScore(s *Snapshot, strongEvidence bool, th config.Thresholds) *int {
	if s.PilotDominanceSampleCount == 0 {
		return nil
	}
	w := th.Dominance
	score := 0
	if strongEvidence {
		if m := s.PilotDominanceDeltaMedian; m != nil && *m < th.DominanceDeltaMedianDb {
			score += w.DeltaMedian
		}
		if r := s.PilotDominanceLowRatio; r != nil && *r > th.DominanceLowRatio {
			score += w.LowRatio
		}
		if sd := s.PilotDominanceDeltaStd; sd != nil && *sd > th.DominanceDeltaStdDb {
			score += w.DeltaStd
		}
	}
	if s.ActiveSetSizeMax != nil && *s.ActiveSetSizeMax >= th.DominanceActiveSetMax {
		score += w.ActiveSetMax
	}
	if s.ActiveSetSizeMean != nil && *s.ActiveSetSizeMean >= th.DominanceActiveSetMean {
		score += w.ActiveSetMean
	}
	if s.PSCSwitchCount > th.DominanceSwitches {
		score += w.Switches
	}
	return ptr(clampScore(score))
}

func interferenceScore(s *Snapshot, th config.Thresholds) int {
	w := th.Interference
	score := 0
	if s.BlerMax != nil && *s.BlerMax >= th.BlerCollapsePct {
		score += w.Bler
	}
	if s.EcNoMedian != nil && *s.EcNoMedian <= th.BorderlineEcNoDb {
		score += w.EcNo
	}
	if s.RSCPMedian != nil && *s.RSCPMedian >= th.AcceptableRSCPDbm {
		score += w.RSCP
	}
	if s.TxP90 != nil && *s.TxP90 <= th.LowTxP90Dbm {
		score += w.Tx
	}
	return clampScore(score)
}

// explicitDLInterference is high BLER on an acceptable pilot while the UE
// transmits at low power.
func explicitDLInterference(s *Snapshot, th config.Thresholds) bool {
	return s.BlerMax != nil && *s.BlerMax >= th.BlerCollapsePct &&
		s.RSCPMedian != nil && *s.RSCPMedian >= th.AcceptableRSCPDbm &&
		s.TxP90 != nil && *s.TxP90 <= th.LowTxP90Dbm
}

func (s *Snapshot) assessPollution(deltas []float64, th config.Thresholds) {
	total := len(s.BestServerSamples)
	with2 := len(deltas)
	available := with2 > 0
	confidenceLow := total == 0 || float64(with2)/float64(total) < th.DominanceCoverageMin
	strongEvidence := available && !confidenceLow

	var rscpValid, ecnoValid []float64
	var pscs []int
	strong := 0
	for _, p := range s.BestServerSamples {
		pscs = append(pscs, p.PSC)
		if math.IsNaN(p.RSCP) || math.IsNaN(p.EcNo) {
			continue
		}
		rscpValid = append(rscpValid, p.RSCP)
		ecnoValid = append(ecnoValid, p.EcNo)
		if p.RSCP > th.StrongRSCPDbm {
			strong++
		}
	}
	var strongShare, badRatio *float64
	if s.ValidBestCount > 0 {
		strongShare = ptr(float64(strong) / float64(s.ValidBestCount))
	}
	if strong > 0 {
		badRatio = ptr(float64(s.StrongBadCount) / float64(strong))
	}

	domScore := dominanceScore(s, strongEvidence, th)
	intScore := interferenceScore(s, th)
	domLevel := LevelNotAvailable
	if domScore != nil {
		domLevel = th.PollutionLevel(*domScore)
	}
	intLevel := th.PollutionLevel(intScore)

	label := LabelLowOverlap
	finalScore, finalLevel := intScore, intLevel
	if domScore != nil {
		finalScore, finalLevel = *domScore, domLevel
	}
	strongShareMet := strongShare != nil && *strongShare >= th.StrongRSCPShareMin
	switch {
	case intScore >= th.PollutionHighScore && (strongShareMet || explicitDLInterference(s, th)):
		label = LabelDLInterference
		if strongEvidence {
			label = LabelPilotPollutionDL
		}
		finalScore, finalLevel = intScore, intLevel
	case strongEvidence && *domScore >= th.PollutionHighScore && strongShare != nil && *strongShare < th.StrongRSCPShareMin:
		label = LabelWeakOverlap
		finalScore, finalLevel = *domScore, domLevel
	case strongEvidence && *domScore >= th.PollutionModerateScore:
		label = LabelOverlapRisk
		finalScore, finalLevel = *domScore, domLevel
	case !strongEvidence && intScore < th.PollutionHighScore:
		label = LabelDominanceNoSignal
		finalScore, finalLevel = intScore, intLevel
	}

	s.PollutionScore = finalScore
	s.PollutionLevel = LevelNotAvailable
	if available {
		s.PollutionLevel = finalLevel
	}

	var unavailable *string
	if !available {
		unavailable = ptr("no >=2 pilot timestamps")
	}
	var deltaMedian, deltaStd, deltaRatio *float64
	if available {
		deltaMedian = s.PilotDominanceDeltaMedian
		deltaStd = s.PilotDominanceDeltaStd
		deltaRatio = s.PilotDominanceLowRatio
	}
	asMean, asMax := 0.0, 0
	if s.ActiveSetSizeMean != nil {
		asMean = *s.ActiveSetSizeMean
	}
	if s.ActiveSetSizeMax != nil {
		asMax = *s.ActiveSetSizeMax
	}

	pp := &PilotPollution{
		RiskLevel:          s.PollutionLevel,
		Score:              finalScore,
		PollutionScore:     finalScore,
		PollutionLevel:     s.PollutionLevel,
		DominanceScore:     domScore,
		DominanceLevel:     domLevel,
		DominanceAvailable: available,
		InterferenceScore:  intScore,
		InterferenceLevel:  intLevel,
		StrongRSCPShare:    strongShare,
		FinalLabel:         label,
		DeltaStats: DeltaStats{
			MedianDb:           deltaMedian,
			StdDb:              deltaStd,
			LowDeltaRatio:      deltaRatio,
			SamplesWith2Pilots: with2,
			TotalMimoSamples:   total,
			ComputedCount:      with2,
			ConfidenceLow:      confidenceLow,
			UnavailableReason:  unavailable,
			Deltas:             append([]float64{}, deltas...),
		},
		StrongRSCPBadEcNo: StrongRSCPBadEcNo{
			Ratio:            badRatio,
			RatioStrongShare: strongShare,
			StrongCount:      strong,
			StrongBadCount:   s.StrongBadCount,
			DenomBestValid:   s.ValidBestCount,
			DenomTotalMimo:   total,
			RSCPThresholdDbm: th.StrongRSCPDbm,
			EcNoThresholdDb:  th.BadEcNoDb,
			RSCPMinDbm:       Min(rscpValid),
			RSCPMaxDbm:       Max(rscpValid),
			EcNoMinDb:        Min(ecnoValid),
			EcNoMaxDb:        Max(ecnoValid),
		},
		BestPSCSwitches: s.PSCSwitchCount,
		BestPSC:         Mode(pscs),
		ActiveSet: ActiveSetProxy{
			Definition: fmt.Sprintf(activeSetDefinitionText, th.ActiveSetDeltaDb),
			Mean:       asMean,
			Max:        asMax,
		},
		Detected: finalScore >= th.PollutionModerateScore,
	}
	pp.DetailsText = detailsText(pp, finalLevel, strongEvidence, th)
	s.PilotPollution = pp
	s.PilotPollutionDetected = pp.Detected
	s.PilotPollutionEvidence = evidenceLines(pp, finalLevel, th)
}
