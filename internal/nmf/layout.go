package nmf

// Field names a logical value carried by a record. Positions differ by
// header; the layout table below is the only place offsets are written down.
type Field int

const (
	FieldTime Field = iota
	FieldDevice
	FieldCallID
	FieldDialedNumber
	FieldCallState
	FieldDisconnectStatus
	FieldDisconnectCause
	FieldFailureReason
	FieldTxPower
	// FieldPilotBlocks and FieldBlerValues are the first index of a
	// variable-length tail rather than a single value.
	FieldPilotBlocks
	FieldBlerValues
)

var fieldNames = map[Field]string{
	FieldTime:             "time",
	FieldDevice:           "device",
	FieldCallID:           "call_id",
	FieldDialedNumber:     "dialed_number",
	FieldCallState:        "call_state",
	FieldDisconnectStatus: "disconnect_status",
	FieldDisconnectCause:  "disconnect_cause",
	FieldFailureReason:    "failure_reason",
	FieldTxPower:          "tx_power",
	FieldPilotBlocks:      "pilot_blocks",
	FieldBlerValues:       "bler_values",
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return "unknown"
}

// CallStateConnected is the CAC call-state value meaning the call connected.
const CallStateConnected = 3

var callControlLayout = map[Field]int{
	FieldTime:   1,
	FieldCallID: 3,
	FieldDevice: 4,
}

var deviceLayout = map[Field]int{
	FieldTime:   1,
	FieldDevice: 3,
}

// layouts maps header to field positions. Headers absent from the table
// only carry the time.
var layouts = map[string]map[Field]int{
	HeaderCallAttempt:    extend(callControlLayout, map[Field]int{FieldDialedNumber: 7}),
	HeaderCallConnect:    extend(callControlLayout, map[Field]int{FieldCallState: 6}),
	HeaderCallDisconnect: extend(callControlLayout, map[Field]int{FieldDisconnectStatus: 6, FieldDisconnectCause: 7}),
	HeaderCallFailure:    extend(callControlLayout, map[Field]int{FieldFailureReason: 6}),
	HeaderCallRelease:    callControlLayout,

	HeaderPilotMeas: extend(deviceLayout, map[Field]int{FieldPilotBlocks: 7}),
	HeaderTxPower:   extend(deviceLayout, map[Field]int{FieldTxPower: 4}),
	HeaderRLCBler:   extend(deviceLayout, map[Field]int{FieldBlerValues: 4}),
}

func init() {
	for h, k := range kinds {
		if k == KindTimeline {
			layouts[h] = deviceLayout
		}
	}
}

func extend(base, extra map[Field]int) map[Field]int {
	out := make(map[Field]int, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// FieldIndex returns the position of f in records with the given header.
func FieldIndex(header string, f Field) (int, bool) {
	if f == FieldTime {
		return 1, true
	}
	l, ok := layouts[NormalizeHeader(header)]
	if !ok {
		return 0, false
	}
	idx, ok := l[f]
	return idx, ok
}
