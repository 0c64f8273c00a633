// Package radio holds the per-device measurement series decoded from
// MIMOMEAS, TXPC and RLCBLER records, ordered by time for windowed lookup.
package radio

// PilotSample is one pilot measurement block of a MIMOMEAS row.
type PilotSample struct {
	PSC    int      `json:"psc"`
	Branch *int     `json:"branch"`
	RSCP   float64  `json:"rscp"`
	EcNo   float64  `json:"ecno"`
	RSSI   *float64 `json:"rssi"`
	CellID *int     `json:"cellId"`
	UARFCN *int     `json:"uarfcn"`
}

// MimoRow is one MIMOMEAS burst.
type MimoRow struct {
	TS      int64         `json:"ts"`
	Samples []PilotSample `json:"samples"`
}

// TxRow is one uplink transmit power sample in dBm.
type TxRow struct {
	TS int64   `json:"ts"`
	Tx float64 `json:"tx"`
}

// RlcRow is one RLC block error rate report; values are percentages.
type RlcRow struct {
	TS       int64     `json:"ts"`
	BlerMax  float64   `json:"blerMax"`
	BlerMean float64   `json:"blerMean"`
	Samples  []float64 `json:"samples"`
}

func (r MimoRow) Timestamp() int64 { return r.TS }
func (r TxRow) Timestamp() int64   { return r.TS }
func (r RlcRow) Timestamp() int64  { return r.TS }
