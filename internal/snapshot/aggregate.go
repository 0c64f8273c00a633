package snapshot

import "github.com/banshee-data/callrca/internal/radio"

// Pilot is one scrambling code within a MIMOMEAS row after duplicate
// reports have been averaged.
type Pilot struct {
	TS     int64    `json:"ts"`
	PSC    int      `json:"psc"`
	RSCP   float64  `json:"rscp"`
	EcNo   float64  `json:"ecno"`
	RSSI   *float64 `json:"rssi"`
	CellID *int     `json:"cellId"`
	UARFCN *int     `json:"uarfcn"`
}

// AggregateRow groups the samples of row by PSC, in first-seen order, and
// averages RSCP, EcNo and RSSI per group. The first non-nil cell id and
// UARFCN of each group are kept.
func AggregateRow(row radio.MimoRow) []Pilot {
	type acc struct {
		pilot            Pilot
		rscp, ecno, rssi float64
		n, nRSSI         int
	}
	index := make(map[int]int, len(row.Samples))
	var accs []*acc
	for _, s := range row.Samples {
		i, ok := index[s.PSC]
		if !ok {
			i = len(accs)
			index[s.PSC] = i
			accs = append(accs, &acc{pilot: Pilot{TS: row.TS, PSC: s.PSC}})
		}
		a := accs[i]
		a.rscp += s.RSCP
		a.ecno += s.EcNo
		a.n++
		if s.RSSI != nil {
			a.rssi += *s.RSSI
			a.nRSSI++
		}
		if a.pilot.CellID == nil {
			a.pilot.CellID = s.CellID
		}
		if a.pilot.UARFCN == nil {
			a.pilot.UARFCN = s.UARFCN
		}
	}

	out := make([]Pilot, 0, len(accs))
	for _, a := range accs {
		p := a.pilot
		p.RSCP = a.rscp / float64(a.n)
		p.EcNo = a.ecno / float64(a.n)
		if a.nRSSI > 0 {
			p.RSSI = ptr(a.rssi / float64(a.nRSSI))
		}
		out = append(out, p)
	}
	return out
}

// Best returns the index of the first pilot with the highest RSCP, or -1.
func Best(pilots []Pilot) int {
	best := -1
	for i, p := range pilots {
		if best < 0 || p.RSCP > pilots[best].RSCP {
			best = i
		}
	}
	return best
}

// DominanceDelta is the RSCP gap between the strongest and second-strongest
// pilot. It needs at least two pilots.
func DominanceDelta(pilots []Pilot) (float64, bool) {
	if len(pilots) < 2 {
		return 0, false
	}
	first, second := pilots[0].RSCP, pilots[1].RSCP
	if second > first {
		first, second = second, first
	}
	for _, p := range pilots[2:] {
		switch {
		case p.RSCP > first:
			first, second = p.RSCP, first
		case p.RSCP > second:
			second = p.RSCP
		}
	}
	return first - second, true
}

// ActiveSetSize counts pilots within deltaDb of the best RSCP.
func ActiveSetSize(pilots []Pilot, deltaDb float64) int {
	b := Best(pilots)
	if b < 0 {
		return 0
	}
	floor := pilots[b].RSCP - deltaDb
	n := 0
	for _, p := range pilots {
		if p.RSCP >= floor {
			n++
		}
	}
	return n
}

// BestServers returns the best pilot of every row that has one.
func BestServers(rows []radio.MimoRow) []Pilot {
	out := make([]Pilot, 0, len(rows))
	for _, row := range rows {
		pilots := AggregateRow(row)
		if b := Best(pilots); b >= 0 {
			out = append(out, pilots[b])
		}
	}
	return out
}
