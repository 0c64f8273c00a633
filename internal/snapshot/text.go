package snapshot

import (
	"fmt"
	"math"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/units"
)

func pctOrNA(r *float64) string {
	return units.RatioPercent(r)
}

func rangeText(lo, hi *float64) string {
	if lo == nil || hi == nil {
		return units.NotAvailable
	}
	return fmt.Sprintf("%s .. %s", units.Fixed(lo, 2), units.Fixed(hi, 2))
}

func dbOrNA(v *float64) string {
	if v == nil {
		return units.NotAvailable
	}
	return units.Fixed(v, 2) + " dB"
}

func detailsText(pp *PilotPollution, level string, strongEvidence bool, th config.Thresholds) []string {
	ds := pp.DeltaStats
	sb := pp.StrongRSCPBadEcNo
	total, with2 := ds.TotalMimoSamples, ds.SamplesWith2Pilots

	overlap := fmt.Sprintf("N/A (0/%d >=2-pilot)", total)
	if strongEvidence && pp.DominanceScore != nil {
		overlap = fmt.Sprintf("%s (%d/100)", pp.DominanceLevel, *pp.DominanceScore)
	}
	lowCount := 0
	for _, d := range ds.Deltas {
		if d < th.LowDeltaDb {
			lowCount++
		}
	}
	bestPSC := ""
	if pp.BestPSC != nil {
		bestPSC = fmt.Sprintf(" (best PSC: %d)", *pp.BestPSC)
	}

	lines := []string{
		fmt.Sprintf("Window: %gs before end. MIMOMEAS samples: %d.", math.Max(1, th.WindowSeconds), total),
		fmt.Sprintf("Final classification: %s (%s, %d/100).", pp.FinalLabel, level, pp.Score),
		fmt.Sprintf("Overlap / dominance risk: %s.", overlap),
		fmt.Sprintf("Interference-under-strong-signal risk: %s (%d/100).", pp.InterferenceLevel, pp.InterferenceScore),
		fmt.Sprintf("Overall label: %s.", pp.FinalLabel),
		fmt.Sprintf("ΔRSCP(best-2nd): computed only on timestamps with >=2 pilots (%d/%d).", with2, total),
		fmt.Sprintf("• ΔRSCP median: %s", dbOrNA(ds.MedianDb)),
		fmt.Sprintf("• ΔRSCP <%g dB ratio: %s (%d/%d)", th.LowDeltaDb, pctOrNA(ds.LowDeltaRatio), lowCount, with2),
		fmt.Sprintf("• ΔRSCP std: %s", dbOrNA(ds.StdDb)),
		"Strong RSCP + bad EcNo (best server):",
		fmt.Sprintf("• Thresholds: RSCP > %g dBm AND EcNo < %g dB", sb.RSCPThresholdDbm, sb.EcNoThresholdDb),
		fmt.Sprintf("• Strong RSCP share computed on %d/%d best-server samples (RSCP > %g): %s",
			sb.StrongCount, sb.DenomBestValid, sb.RSCPThresholdDbm, pctOrNA(sb.RatioStrongShare)),
		fmt.Sprintf("• Strong RSCP + bad EcNo computed on %d/%d strong samples (EcNo < %g): %s",
			sb.StrongBadCount, sb.StrongCount, sb.EcNoThresholdDb, pctOrNA(sb.Ratio)),
		fmt.Sprintf("• Best-server denominator reference: %d/%d", sb.DenomBestValid, total),
		fmt.Sprintf("• RSCP range: %s dBm", rangeText(sb.RSCPMinDbm, sb.RSCPMaxDbm)),
		fmt.Sprintf("• EcNo range: %s dB", rangeText(sb.EcNoMinDb, sb.EcNoMaxDb)),
		"Serving stability:",
		fmt.Sprintf("• Best PSC switches: %d%s", pp.BestPSCSwitches, bestPSC),
		fmt.Sprintf("Active-set proxy (<=%g dB):", th.ActiveSetDeltaDb),
		fmt.Sprintf("• Definition: pilots within %g dB of best RSCP per timestamp", th.ActiveSetDeltaDb),
		fmt.Sprintf("• Mean/max: %.2f / %d", pp.ActiveSet.Mean, pp.ActiveSet.Max),
	}

	switch {
	case !pp.DominanceAvailable:
		lines = append(lines, "Dominance evidence unavailable: no timestamps with >=2 pilots were found in this window.")
	case ds.ConfidenceLow:
		lines = append(lines, fmt.Sprintf("Dominance evidence is low-confidence: only %d/%d timestamps have >=2 pilots.", with2, total))
	}
	if ds.ConfidenceLow {
		lines = append(lines, fmt.Sprintf("ΔRSCP could only be calculated at %d time points because nearby cells were not consistently detectable. "+
			"As a result, the ΔRSCP analysis is based on limited data and should be interpreted with caution.", with2))
	}
	return lines
}

func evidenceLines(pp *PilotPollution, level string, th config.Thresholds) []string {
	ds := pp.DeltaStats
	sb := pp.StrongRSCPBadEcNo
	dom := LevelNotAvailable
	if pp.DominanceScore != nil {
		dom = fmt.Sprintf("%d", *pp.DominanceScore)
	}
	confidence := "ΔRSCP confidence is acceptable for scoring."
	if ds.ConfidenceLow {
		confidence = fmt.Sprintf("ΔRSCP confidence is low (<%.0f%% of samples have >=2 pilots), excluded from primary root-cause scoring.",
			th.DominanceCoverageMin*100)
	}
	return []string{
		fmt.Sprintf("Final=%s (%s, %d/100), dominance=%s/100, interference=%d/100", pp.FinalLabel, level, pp.Score, dom, pp.InterferenceScore),
		fmt.Sprintf("Dominance denominator (>=2 pilots): %d/%d", ds.SamplesWith2Pilots, ds.TotalMimoSamples),
		fmt.Sprintf("Strong RSCP share=%s (%d/%d)", pctOrNA(sb.RatioStrongShare), sb.StrongCount, sb.DenomBestValid),
		confidence,
		fmt.Sprintf("ΔRSCP median=%s dB, ΔRSCP<%gdB ratio=%s, ΔRSCP std=%s dB",
			units.Fixed(ds.MedianDb, 2), th.LowDeltaDb, pctOrNA(ds.LowDeltaRatio), units.Fixed(ds.StdDb, 2)),
		fmt.Sprintf("Strong-RSCP with bad EcNo ratio=%s (%d/%d)", pctOrNA(sb.Ratio), sb.StrongBadCount, sb.StrongCount),
		fmt.Sprintf("Best PSC switches=%d, activeSet mean=%.2f, max=%d", pp.BestPSCSwitches, pp.ActiveSet.Mean, pp.ActiveSet.Max),
	}
}
