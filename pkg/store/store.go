// Package store persists device.Settings across restarts.
//
// The layout mirrors the firmware's non-volatile preferences: a flat
// namespace of seven independently defaulted keys.
package store

import (
	"math"

	"github.com/golang/glog"

	"github.com/robotalks/siggen/pkg/device"
)

// Store loads and saves the settings snapshot.
type Store interface {
	// Load returns the persisted settings, using defaults for any
	// missing key.
	Load() (device.Settings, error)
	// Save writes the complete snapshot synchronously.
	Save(device.Settings) error
}

// KV is a flat namespace of unsigned values.
type KV interface {
	// Load returns all values of the namespace.
	// A namespace which was never written is empty, not an error.
	Load() (map[string]uint64, error)
	// Store replaces all values of the namespace.
	Store(map[string]uint64) error
}

// DefaultNamespace is the namespace used by the firmware.
const DefaultNamespace = "ad9834"

// Keys in the namespace.
const (
	KeyFreq0       = "freq0"
	KeyFreq1       = "freq1"
	KeyPhase0      = "phase0"
	KeyPhase1      = "phase1"
	KeyActiveFreq  = "activeFreq"
	KeyActivePhase = "activePhase"
	KeyWaveMode    = "waveMode"
)

// Prefs implements Store on top of a KV namespace.
type Prefs struct {
	KV KV
}

// NewPrefs creates Prefs.
func NewPrefs(kv KV) *Prefs {
	return &Prefs{KV: kv}
}

// Load implements Store.
// Values which don't fit their field or fall outside the field's domain
// are replaced by the default of that field only.
func (p *Prefs) Load() (device.Settings, error) {
	s := device.Defaults()
	vals, err := p.KV.Load()
	if err != nil {
		return s, err
	}
	r := valueReader{vals: vals}
	s.Freq[0] = uint32(r.get(KeyFreq0, uint64(s.Freq[0]), math.MaxUint32))
	s.Freq[1] = uint32(r.get(KeyFreq1, uint64(s.Freq[1]), math.MaxUint32))
	s.Phase[0] = uint16(r.get(KeyPhase0, uint64(s.Phase[0]), device.MaxPhase))
	s.Phase[1] = uint16(r.get(KeyPhase1, uint64(s.Phase[1]), device.MaxPhase))
	s.ActiveFreq = device.Register(r.get(KeyActiveFreq, uint64(s.ActiveFreq), 1))
	s.ActivePhase = device.Register(r.get(KeyActivePhase, uint64(s.ActivePhase), 1))
	s.Mode = device.Mode(r.get(KeyWaveMode, uint64(s.Mode), uint64(device.ModeTriangle)))
	return s, nil
}

// Save implements Store.
func (p *Prefs) Save(s device.Settings) error {
	return p.KV.Store(map[string]uint64{
		KeyFreq0:       uint64(s.Freq[0]),
		KeyFreq1:       uint64(s.Freq[1]),
		KeyPhase0:      uint64(s.Phase[0]),
		KeyPhase1:      uint64(s.Phase[1]),
		KeyActiveFreq:  uint64(s.ActiveFreq),
		KeyActivePhase: uint64(s.ActivePhase),
		KeyWaveMode:    uint64(s.Mode),
	})
}

type valueReader struct {
	vals map[string]uint64
}

func (r valueReader) get(key string, def, max uint64) uint64 {
	val, ok := r.vals[key]
	if !ok {
		return def
	}
	if val > max {
		glog.Warningf("stored %s=%d out of range, using default %d", key, val, def)
		return def
	}
	return val
}
