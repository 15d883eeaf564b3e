// Package drivertest provides a recording driver for tests.
package drivertest

import (
	"fmt"
	"sync"

	"github.com/robotalks/siggen/pkg/device"
)

// Recorder records every call as a short text entry, e.g. "F0=440".
// When Err is set, every call still records and then returns Err.
type Recorder struct {
	Err error

	calls []string
	lock  sync.Mutex
}

// Calls returns the recorded calls and clears the log.
func (r *Recorder) Calls() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	calls := r.calls
	r.calls = nil
	return calls
}

func (r *Recorder) record(format string, args ...interface{}) error {
	r.lock.Lock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	r.lock.Unlock()
	return r.Err
}

// SetFrequency implements driver.Driver.
func (r *Recorder) SetFrequency(reg device.Register, hz uint32) error {
	return r.record("F%d=%d", reg, hz)
}

// SetPhaseWord implements driver.Driver.
func (r *Recorder) SetPhaseWord(reg device.Register, phase uint16) error {
	return r.record("P%d=%d", reg, phase)
}

// SetOutputMode implements driver.Driver.
func (r *Recorder) SetOutputMode(mode device.Mode) error {
	return r.record("W=%s", mode)
}

// SelectFrequencyLine implements driver.Driver.
func (r *Recorder) SelectFrequencyLine(reg device.Register) error {
	return r.record("FSEL=%d", reg)
}

// SelectPhaseLine implements driver.Driver.
func (r *Recorder) SelectPhaseLine(reg device.Register) error {
	return r.record("PSEL=%d", reg)
}
