package radio

import (
	"strings"

	"github.com/banshee-data/callrca/internal/nmf"
)

// Pilot block layout inside a MIMOMEAS row, relative to the block start.
const (
	blockCellID = 0
	blockUARFCN = 1
	blockPSC    = 2
	blockBranch = 3
	blockRSCP   = 5
	blockEcNo   = 6
	blockRSSI   = 7
)

// blockSize picks 8-field blocks, or 9-field blocks when only that divides
// the tail evenly. Zero means the tail is not decodable.
func blockSize(n int) int {
	switch {
	case n <= 0:
		return 0
	case n%8 == 0:
		return 8
	case n%9 == 0:
		return 9
	default:
		return 0
	}
}

// DecodePilots extracts pilot samples from a MIMOMEAS record. Blocks without
// a PSC, RSCP or EcNo are dropped.
func DecodePilots(rec nmf.Record) []PilotSample {
	tail := rec.Tail(nmf.FieldPilotBlocks)
	size := blockSize(len(tail))
	if size == 0 {
		return nil
	}
	var out []PilotSample
	for i := 0; i+size <= len(tail); i += size {
		b := tail[i : i+size]
		psc := nmf.ToInt(nmf.ParseNumber(b[blockPSC]))
		rscp := nmf.ParseNumber(b[blockRSCP])
		ecno := nmf.ParseNumber(b[blockEcNo])
		if psc == nil || rscp == nil || ecno == nil {
			continue
		}
		out = append(out, PilotSample{
			PSC:    *psc,
			Branch: nmf.ToInt(nmf.ParseNumber(b[blockBranch])),
			RSCP:   *rscp,
			EcNo:   *ecno,
			RSSI:   nmf.ParseNumber(b[blockRSSI]),
			CellID: nmf.ToInt(nmf.ParseNumber(b[blockCellID])),
			UARFCN: nmf.ToInt(nmf.ParseNumber(b[blockUARFCN])),
		})
	}
	return out
}

// DecodeTx reads the TXPC transmit power.
func DecodeTx(rec nmf.Record) (float64, bool) {
	tx := rec.Number(nmf.FieldTxPower)
	if tx == nil {
		return 0, false
	}
	return *tx, true
}

// DecodeBler collects the BLER percentages of an RLCBLER record. Only values
// written with a decimal point and inside [0, 100] count; the integer
// fields around them are block counters.
func DecodeBler(rec nmf.Record) (RlcRow, bool) {
	var vals []float64
	for _, raw := range rec.Tail(nmf.FieldBlerValues) {
		raw = strings.TrimSpace(raw)
		if raw == "" || !strings.Contains(raw, ".") {
			continue
		}
		n := nmf.ParseNumber(raw)
		if n == nil || *n < 0 || *n > 100 {
			continue
		}
		vals = append(vals, *n)
	}
	if len(vals) == 0 {
		return RlcRow{}, false
	}
	maxV, sum := vals[0], 0.0
	for _, v := range vals {
		if v > maxV {
			maxV = v
		}
		sum += v
	}
	return RlcRow{
		TS:       rec.TS,
		BlerMax:  maxV,
		BlerMean: sum / float64(len(vals)),
		Samples:  vals,
	}, true
}
