// Package nmf reads Nemo-style drive-test logs: CSV-quoted lines whose first
// field names the message kind and whose second field is a local
// time-of-day. It turns them into timestamped Records.
package nmf

import "strings"

// Message headers understood by the engine.
const (
	HeaderStart = "#START"

	HeaderCallAttempt    = "CAA"
	HeaderCallConnect    = "CAC"
	HeaderCallDisconnect = "CAD"
	HeaderCallFailure    = "CAF"
	HeaderCallRelease    = "CARE"

	HeaderPilotMeas = "MIMOMEAS"
	HeaderTxPower   = "TXPC"
	HeaderRLCBler   = "RLCBLER"

	HeaderRRCState   = "RRCSM"
	HeaderSoftHO     = "SHO"
	HeaderCellMeas   = "CELLMEAS"
	HeaderL3Session  = "L3SM"
	HeaderL3Mobility = "L3MM"
)

// Kind groups headers by how the engine routes them.
type Kind int

const (
	KindOther Kind = iota
	KindAnchor
	KindCallControl
	KindRadio
	KindTimeline
)

func (k Kind) String() string {
	switch k {
	case KindAnchor:
		return "anchor"
	case KindCallControl:
		return "call-control"
	case KindRadio:
		return "radio"
	case KindTimeline:
		return "timeline"
	default:
		return "other"
	}
}

var kinds = map[string]Kind{
	HeaderStart: KindAnchor,

	HeaderCallAttempt:    KindCallControl,
	HeaderCallConnect:    KindCallControl,
	HeaderCallDisconnect: KindCallControl,
	HeaderCallFailure:    KindCallControl,
	HeaderCallRelease:    KindCallControl,

	HeaderPilotMeas: KindRadio,
	HeaderTxPower:   KindRadio,
	HeaderRLCBler:   KindRadio,

	HeaderRRCState:   KindTimeline,
	HeaderL3Session:  KindTimeline,
	HeaderL3Mobility: KindTimeline,
	"RRC":            KindTimeline,
	"RRA":            KindTimeline,
	"RRD":            KindTimeline,
	"RRF":            KindTimeline,
	"RABA":           KindTimeline,
	"RABD":           KindTimeline,
	"RBI":            KindTimeline,
	HeaderSoftHO:     KindTimeline,
	HeaderCellMeas:   KindTimeline,
}

// NormalizeHeader trims and upper-cases a raw header field.
func NormalizeHeader(h string) string {
	return strings.ToUpper(strings.TrimSpace(h))
}

// KindOf classifies a header. Unknown headers are KindOther.
func KindOf(header string) Kind {
	return kinds[NormalizeHeader(header)]
}

// IsCallControl reports whether header is one of CAA, CAC, CAD, CAF or CARE.
func IsCallControl(header string) bool {
	return KindOf(header) == KindCallControl
}
