package device

import (
	"errors"
	"fmt"
)

// Register indexes one of the two frequency or phase registers.
type Register byte

// Register indexes.
const (
	Reg0 Register = 0
	Reg1 Register = 1
)

// Valid indicates the register index is 0 or 1.
func (r Register) Valid() bool {
	return r == Reg0 || r == Reg1
}

// ParseRegister converts the digit '0' or '1' to a Register.
func ParseRegister(c byte) (Register, bool) {
	switch c {
	case '0':
		return Reg0, true
	case '1':
		return Reg1, true
	}
	return 0, false
}

// Mode is the waveform presented on the chip's output.
type Mode byte

// Waveform modes. The ordinal is what gets persisted.
const (
	ModeSine     Mode = 0
	ModeTriangle Mode = 1
)

// Valid indicates the mode is a known waveform.
func (m Mode) Valid() bool {
	return m == ModeSine || m == ModeTriangle
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeSine:
		return "Sine"
	case ModeTriangle:
		return "Triangle"
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

// MaxPhase is the largest value of the 12-bit phase word.
const MaxPhase = 4095

var (
	// ErrPhaseRange indicates a phase value outside [0, MaxPhase].
	ErrPhaseRange = errors.New("phase value must be 0-4095")
	// ErrInvalidRegister indicates a register index other than 0 or 1.
	ErrInvalidRegister = errors.New("invalid register")
	// ErrInvalidMode indicates an unknown waveform mode.
	ErrInvalidMode = errors.New("invalid waveform mode")
)

// Settings is the complete configuration of the generator.
// It's both the working state and the unit of persistence.
type Settings struct {
	Freq        [2]uint32
	Phase       [2]uint16
	ActiveFreq  Register
	ActivePhase Register
	Mode        Mode
}

// Defaults returns the settings used when nothing is persisted.
func Defaults() Settings {
	return Settings{
		Freq: [2]uint32{1000, 10000},
	}
}

// Frequency gets the value of a frequency register in Hz.
func (s *Settings) Frequency(r Register) uint32 {
	return s.Freq[r&1]
}

// SetFrequency sets a frequency register.
func (s *Settings) SetFrequency(r Register, hz uint32) error {
	if !r.Valid() {
		return ErrInvalidRegister
	}
	s.Freq[r] = hz
	return nil
}

// PhaseWord gets the value of a phase register.
func (s *Settings) PhaseWord(r Register) uint16 {
	return s.Phase[r&1]
}

// SetPhaseWord sets a phase register. Values above MaxPhase are
// rejected and the register is left untouched.
func (s *Settings) SetPhaseWord(r Register, v uint32) error {
	if !r.Valid() {
		return ErrInvalidRegister
	}
	if v > MaxPhase {
		return ErrPhaseRange
	}
	s.Phase[r] = uint16(v)
	return nil
}

// SetMode sets the waveform mode.
func (s *Settings) SetMode(m Mode) error {
	if !m.Valid() {
		return ErrInvalidMode
	}
	s.Mode = m
	return nil
}

// SelectFrequency makes a frequency register active.
func (s *Settings) SelectFrequency(r Register) error {
	if !r.Valid() {
		return ErrInvalidRegister
	}
	s.ActiveFreq = r
	return nil
}

// SelectPhase makes a phase register active.
func (s *Settings) SelectPhase(r Register) error {
	if !r.Valid() {
		return ErrInvalidRegister
	}
	s.ActivePhase = r
	return nil
}

// ActiveFrequency gets the frequency currently driving the output.
func (s *Settings) ActiveFrequency() uint32 {
	return s.Frequency(s.ActiveFreq)
}

// ActivePhaseWord gets the phase word currently driving the output.
func (s *Settings) ActivePhaseWord() uint16 {
	return s.PhaseWord(s.ActivePhase)
}

// Validate checks all fields are within their domain.
func (s *Settings) Validate() error {
	for _, v := range s.Phase {
		if v > MaxPhase {
			return ErrPhaseRange
		}
	}
	if !s.ActiveFreq.Valid() || !s.ActivePhase.Valid() {
		return ErrInvalidRegister
	}
	if !s.Mode.Valid() {
		return ErrInvalidMode
	}
	return nil
}

// String implements fmt.Stringer.
func (s Settings) String() string {
	return fmt.Sprintf("freq=%d/%d phase=%d/%d active=F%d,P%d mode=%s",
		s.Freq[0], s.Freq[1], s.Phase[0], s.Phase[1],
		s.ActiveFreq, s.ActivePhase, s.Mode)
}
