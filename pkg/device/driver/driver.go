// Package driver defines the gateway used to push register values to
// the DDS chip and to drive its two register-select lines.
package driver

import (
	"github.com/golang/glog"

	"github.com/robotalks/siggen/pkg/device"
	fx "github.com/robotalks/siggen/pkg/framework"
)

// Driver pushes changes to the physical chip.
// Callers treat every method as fire-and-forget: a returned error is
// reported but never rolls back the model.
type Driver interface {
	// SetFrequency writes a frequency register in Hz.
	SetFrequency(reg device.Register, hz uint32) error
	// SetPhaseWord writes a 12-bit phase register.
	SetPhaseWord(reg device.Register, phase uint16) error
	// SetOutputMode switches the output waveform.
	SetOutputMode(mode device.Mode) error
	// SelectFrequencyLine drives the FSELECT line.
	SelectFrequencyLine(reg device.Register) error
	// SelectPhaseLine drives the PSELECT line.
	SelectPhaseLine(reg device.Register) error
}

// Apply pushes a complete snapshot to the driver, in the same order
// the firmware does at power-up.
func Apply(d Driver, s device.Settings) error {
	var errs fx.AggregatedError
	errs.Add(
		d.SetFrequency(device.Reg0, s.Freq[0]),
		d.SetFrequency(device.Reg1, s.Freq[1]),
		d.SetPhaseWord(device.Reg0, s.Phase[0]),
		d.SetPhaseWord(device.Reg1, s.Phase[1]),
		d.SetOutputMode(s.Mode),
		d.SelectFrequencyLine(s.ActiveFreq),
		d.SelectPhaseLine(s.ActivePhase),
	)
	return errs.Aggregate()
}

// Nop is a Driver doing nothing, used when no chip is attached.
type Nop struct{}

// SetFrequency implements Driver.
func (Nop) SetFrequency(device.Register, uint32) error { return nil }

// SetPhaseWord implements Driver.
func (Nop) SetPhaseWord(device.Register, uint16) error { return nil }

// SetOutputMode implements Driver.
func (Nop) SetOutputMode(device.Mode) error { return nil }

// SelectFrequencyLine implements Driver.
func (Nop) SelectFrequencyLine(device.Register) error { return nil }

// SelectPhaseLine implements Driver.
func (Nop) SelectPhaseLine(device.Register) error { return nil }

// Logger traces every push with glog.
type Logger struct {
	Level glog.Level
}

// SetFrequency implements Driver.
func (l Logger) SetFrequency(reg device.Register, hz uint32) error {
	glog.V(l.Level).Infof("FREQ%d <- %d Hz", reg, hz)
	return nil
}

// SetPhaseWord implements Driver.
func (l Logger) SetPhaseWord(reg device.Register, phase uint16) error {
	glog.V(l.Level).Infof("PHASE%d <- %d", reg, phase)
	return nil
}

// SetOutputMode implements Driver.
func (l Logger) SetOutputMode(mode device.Mode) error {
	glog.V(l.Level).Infof("MODE <- %s", mode)
	return nil
}

// SelectFrequencyLine implements Driver.
func (l Logger) SelectFrequencyLine(reg device.Register) error {
	glog.V(l.Level).Infof("FSELECT <- %d", reg)
	return nil
}

// SelectPhaseLine implements Driver.
func (l Logger) SelectPhaseLine(reg device.Register) error {
	glog.V(l.Level).Infof("PSELECT <- %d", reg)
	return nil
}

// Mux fans out to multiple drivers. All drivers are called even if
// one fails, and errors are aggregated.
type Mux []Driver

// SetFrequency implements Driver.
func (m Mux) SetFrequency(reg device.Register, hz uint32) error {
	return m.each(func(d Driver) error { return d.SetFrequency(reg, hz) })
}

// SetPhaseWord implements Driver.
func (m Mux) SetPhaseWord(reg device.Register, phase uint16) error {
	return m.each(func(d Driver) error { return d.SetPhaseWord(reg, phase) })
}

// SetOutputMode implements Driver.
func (m Mux) SetOutputMode(mode device.Mode) error {
	return m.each(func(d Driver) error { return d.SetOutputMode(mode) })
}

// SelectFrequencyLine implements Driver.
func (m Mux) SelectFrequencyLine(reg device.Register) error {
	return m.each(func(d Driver) error { return d.SelectFrequencyLine(reg) })
}

// SelectPhaseLine implements Driver.
func (m Mux) SelectPhaseLine(reg device.Register) error {
	return m.each(func(d Driver) error { return d.SelectPhaseLine(reg) })
}

func (m Mux) each(fn func(Driver) error) error {
	var errs fx.AggregatedError
	for _, d := range m {
		errs.Add(fn(d))
	}
	return errs.Aggregate()
}
