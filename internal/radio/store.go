package radio

import (
	"sync"

	"github.com/banshee-data/callrca/internal/nmf"
)

// DeviceSeries is the measurement history of one device.
type DeviceSeries struct {
	Mimo []MimoRow
	Tx   []TxRow
	Rlc  []RlcRow
}

// DeviceCount summarises how many rows a device contributed.
type DeviceCount struct {
	DeviceID  string `json:"deviceId"`
	MimoCount int    `json:"mimoCount"`
	TxpcCount int    `json:"txpcCount"`
	RlcCount  int    `json:"rlcCount"`
}

// Store keeps one DeviceSeries per device id. Devices are partitioned, so
// callers may shard ingestion by device; a single Store is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	devices map[string]*DeviceSeries
	order   []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{devices: make(map[string]*DeviceSeries)}
}

func (s *Store) series(id string) *DeviceSeries {
	dev, ok := s.devices[id]
	if !ok {
		dev = &DeviceSeries{}
		s.devices[id] = dev
		s.order = append(s.order, id)
	}
	return dev
}

// Add decodes a radio record into its device series. It reports whether a
// row was stored; records that decode to nothing still register the device.
func (s *Store) Add(rec nmf.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev := s.series(rec.DeviceID)
	switch rec.Header {
	case nmf.HeaderPilotMeas:
		samples := DecodePilots(rec)
		if len(samples) == 0 {
			return false
		}
		dev.Mimo = insertOrdered(dev.Mimo, MimoRow{TS: rec.TS, Samples: samples})
	case nmf.HeaderTxPower:
		tx, ok := DecodeTx(rec)
		if !ok {
			return false
		}
		dev.Tx = insertOrdered(dev.Tx, TxRow{TS: rec.TS, Tx: tx})
	case nmf.HeaderRLCBler:
		row, ok := DecodeBler(rec)
		if !ok {
			return false
		}
		dev.Rlc = insertOrdered(dev.Rlc, row)
	default:
		return false
	}
	return true
}

// Device returns the series for id, or an empty series for unknown devices.
// The returned value must not be modified.
func (s *Store) Device(id string) *DeviceSeries {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if dev, ok := s.devices[id]; ok {
		return dev
	}
	return &DeviceSeries{}
}

// Counts lists per-device row counts in first-seen order.
func (s *Store) Counts() []DeviceCount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DeviceCount, 0, len(s.order))
	for _, id := range s.order {
		dev := s.devices[id]
		out = append(out, DeviceCount{
			DeviceID:  id,
			MimoCount: len(dev.Mimo),
			TxpcCount: len(dev.Tx),
			RlcCount:  len(dev.Rlc),
		})
	}
	return out
}
