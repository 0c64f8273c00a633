package rca

import (
	"fmt"
	"strings"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/snapshot"
)

// RadioEvaluation describes the radio window of a failed setup in plain
// sentences: coverage, uplink margin, downlink quality and BLER, plus
// signature notes for timeouts and DL decode impairment.
func RadioEvaluation(snap *snapshot.Snapshot, cls Classification, cadCause *int, th config.Thresholds) string {
	m := metricsOf(snap)
	var parts []string

	switch {
	case m.rscp == nil:
		parts = append(parts, "Coverage is not assessable (RSCP median n/a).")
	case *m.rscp >= th.AcceptableRSCPDbm:
		parts = append(parts, fmt.Sprintf("Coverage is acceptable (RSCP median %.1f dBm).", *m.rscp))
	default:
		parts = append(parts, fmt.Sprintf("Coverage is weak (RSCP median %.1f dBm).", *m.rscp))
	}

	switch {
	case m.tx == nil:
		parts = append(parts, "Uplink margin is not assessable (UE Tx p90 n/a).")
	case *m.tx <= th.LowTxP90Dbm:
		parts = append(parts, fmt.Sprintf("Uplink margin appears strong (UE Tx p90 %.1f dBm), arguing against UL limitation.", *m.tx))
	default:
		parts = append(parts, fmt.Sprintf("UE Tx is elevated (p90 %.1f dBm), suggesting uplink stress or poor UL margin.", *m.tx))
	}

	switch {
	case m.ecno == nil:
		parts = append(parts, "Downlink quality is not assessable (EcNo median n/a).")
	case *m.ecno <= th.BadEcNoDb:
		parts = append(parts, fmt.Sprintf("Downlink quality is severely degraded (EcNo median %.1f dB), consistent with interference/overlap or weak dominance.", *m.ecno))
	case *m.ecno <= th.BorderlineEcNoDb:
		parts = append(parts, fmt.Sprintf("Downlink quality is borderline (EcNo median %.1f dB).", *m.ecno))
	default:
		parts = append(parts, fmt.Sprintf("Downlink quality is acceptable (EcNo median %.1f dB).", *m.ecno))
	}

	switch {
	case !m.blerEvidence:
		parts = append(parts, "BLER is not informative during setup (insufficient RLC BLER samples); do not use BLER to judge DL health.")
	case m.bler == nil:
		parts = append(parts, "BLER evidence was expected but BLER value is unavailable.")
	case *m.bler >= th.BlerCollapsePct:
		parts = append(parts, fmt.Sprintf("DL decoding collapses (BLER max %.1f%%), indicating DL decode impairment.", *m.bler))
	default:
		parts = append(parts, fmt.Sprintf("BLER is not elevated (max %.1f%%).", *m.bler))
	}

	timeout := cls.Category == SetupTimeout || cls.Domain == DomainSignalingTimeout ||
		(cadCause != nil && *cadCause == session.CauseSetupTimerExp)
	if timeout && atMost(m.ecno, th.BadEcNoDb) {
		parts = append(parts, "Radio quality (very low EcNo) may contribute to retransmissions/latency, which can drive timeout even when BLER is not measurable.")
	}
	if m.blerEvidence && atLeast(m.bler, th.BlerCollapsePct) && atLeast(m.rscp, th.AcceptableRSCPDbm) &&
		(m.tx == nil || *m.tx <= th.LowTxP90Dbm) {
		parts = append(parts, "This matches a DL decode-impairment signature (interference/noise-rise/control-channel decode issues).")
	}
	if m.rlcCount > 0 && m.rlcCount < th.BlerEvidenceMinSamples {
		parts = append(parts, fmt.Sprintf("RLC BLER sample count is low (%d), so BLER confidence is limited.", m.rlcCount))
	}
	return strings.Join(parts, " ")
}
