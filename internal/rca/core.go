package rca

import (
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/units"
)

var cadCauses = map[int]string{
	16:  "Normal call clearing",
	17:  "User busy",
	18:  "No user responding",
	19:  "No answer from user",
	21:  "Call rejected",
	27:  "Destination out of order",
	34:  "No circuit/channel available",
	41:  "Temporary failure",
	42:  "Switching equipment congestion",
	47:  "Resource unavailable",
	102: "Setup timeout (timer expiry)",
}

// DecodeCadCause labels a CAD disconnect cause code.
func DecodeCadCause(cause *int) string {
	if cause != nil {
		if label, ok := cadCauses[*cause]; ok {
			return label
		}
	}
	return "Unknown cause"
}

// Points awarded by the core/signalling score.
const (
	pointsRadioHealthy     = 40
	pointsImmediateRelease = 25
	pointsNoConnection     = 15
	pointsNoMobility       = 10
	pointsNoCongestion     = 10
)

// ScoreBreakdown itemises the 0-100 core/signalling score.
type ScoreBreakdown struct {
	RadioHealthy     int `json:"radioHealthy"`
	ImmediateRelease int `json:"immediateRelease"`
	NoConnection     int `json:"noConnection"`
	NoMobility       int `json:"noMobility"`
	NoCongestion     int `json:"noCongestion"`
}

// Total sums the breakdown.
func (b ScoreBreakdown) Total() int {
	return b.RadioHealthy + b.ImmediateRelease + b.NoConnection + b.NoMobility + b.NoCongestion
}

func scoreBreakdown(radioHealthy, release, connected, mobility, congestion bool) ScoreBreakdown {
	var b ScoreBreakdown
	if radioHealthy {
		b.RadioHealthy = pointsRadioHealthy
	}
	if release {
		b.ImmediateRelease = pointsImmediateRelease
	}
	if !connected {
		b.NoConnection = pointsNoConnection
	}
	if !mobility {
		b.NoMobility = pointsNoMobility
	}
	if !congestion {
		b.NoCongestion = pointsNoCongestion
	}
	return b
}

// radioHealthyForCore requires strong, clean radio with BLER evidence.
func radioHealthyForCore(m metrics, th config.Thresholds) bool {
	return above(m.rscp, th.StrongRSCPDbm) &&
		above(m.ecno, th.HealthyEcNoDb) &&
		below(m.tx, th.HealthyTxP90Dbm) &&
		m.blerEvidence && below(m.bler, th.HealthyBlerPct)
}

// radioVetoesCore reports whether the radio picture rules out a core or
// signalling cause.
func radioVetoesCore(m metrics, th config.Thresholds) bool {
	return atLeast(m.tx, th.ULTxP90Dbm) ||
		atMost(m.rscp, th.AcceptableRSCPDbm) ||
		atMost(m.ecno, th.BadEcNoDb)
}

func classifyCore(s *session.Session, m metrics, sig setupSignals, th config.Thresholds) (Classification, bool) {
	if radioVetoesCore(m, th) {
		return Classification{}, false
	}
	healthy := radioHealthyForCore(m, th)
	indicators := sig.releaseOrReject || s.CafReason != nil || s.CadStatus != nil || s.CadCause != nil
	score := scoreBreakdown(healthy, sig.releaseOrReject, s.Connected(), sig.mobilityNear(th), sig.congestion).Total()
	if score < th.CoreScoreMin || !indicators || !healthy {
		return Classification{}, false
	}

	label := DecodeCadCause(s.CadCause)
	causeText := "n/a"
	if s.CadCause != nil {
		causeText = units.PlainInt(s.CadCause)
	}
	return verdict(session.CallSetupFailure, SetupSignalingCore, DomainCoreSignaling,
		coreReason(s, m, label),
		math.Min(th.CoreConfidenceCap, float64(score)/100),
		"Radio appears healthy while signaling/release indicators exist near setup failure",
		fmt.Sprintf("Core/signaling score=%d", score),
		fmt.Sprintf("CAD cause=%s (%s)", causeText, label)), true
}

func coreReason(s *session.Session, m metrics, causeLabel string) string {
	bler := "n/a (insufficient evidence)"
	if m.blerEvidence && m.bler != nil {
		bler = units.Fixed(m.bler, 1)
	}
	radio := fmt.Sprintf("RSCP %s dBm, EcNo %s dB, UE Tx p90 %s dBm, BLER max %s%%",
		units.Fixed(m.rscp, 1), units.Fixed(m.ecno, 1), units.Fixed(m.tx, 1), bler)

	var cause string
	if s.CadCause != nil && *s.CadCause == session.CauseNoUserReply {
		cause = "Cause 18 (No user responding) indicates call-control timeout or no response from downstream network element."
	} else {
		c := units.NotAvailable
		if s.CadCause != nil {
			c = units.PlainInt(s.CadCause)
		}
		cause = fmt.Sprintf("CAD cause %s (%s).", c, causeLabel)
	}

	return strings.Join([]string{
		fmt.Sprintf("Radio conditions were stable during setup attempt (%s).", radio),
		"An immediate signaling release was observed at failure time.",
		cause,
		"This strongly indicates a core or higher-layer signaling termination rather than a radio-originated setup failure.",
	}, " ")
}
