package interp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/siggen/pkg/device"
	"github.com/robotalks/siggen/pkg/device/driver"
	"github.com/robotalks/siggen/pkg/display"
	fx "github.com/robotalks/siggen/pkg/framework"
	"github.com/robotalks/siggen/pkg/store"
)

var (
	// ErrUnknownCommand indicates the action byte is not recognized.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidSelection indicates S is followed by something other than F or P.
	ErrInvalidSelection = errors.New("invalid selection command")
	// ErrInvalidWaveform indicates W is followed by something other than S or T.
	ErrInvalidWaveform = errors.New("invalid waveform")
)

// Result reports what a command did.
type Result struct {
	Command Command
	// Lines are the response lines, without line terminators.
	Lines []string
	// Mutated indicates the settings were changed.
	Mutated bool
	// Err is the reason the command was rejected, nil if accepted.
	Err error
	// SyncErr collects driver, store failures of an accepted command.
	// They are reported only; the change is never rolled back.
	SyncErr error
}

// Interpreter executes commands against the owned settings and keeps
// the chip, the store and the display in sync.
//
// Execute holds a single lock across validate, mutate, push, persist and
// refresh, so concurrent transports never observe partial application.
type Interpreter struct {
	Driver  driver.Driver
	Store   store.Store
	Display display.Display

	settings device.Settings
	lock     sync.Mutex
}

// New creates an Interpreter owning settings. Collaborators default to
// no-ops and an in-memory store.
func New(settings device.Settings) *Interpreter {
	return &Interpreter{
		Driver:   driver.Nop{},
		Store:    store.NewPrefs(store.NewMemKV()),
		Display:  display.Nop{},
		settings: settings,
	}
}

// WithDriver sets the driver.
func (in *Interpreter) WithDriver(d driver.Driver) *Interpreter {
	in.Driver = d
	return in
}

// WithStore sets the store.
func (in *Interpreter) WithStore(s store.Store) *Interpreter {
	in.Store = s
	return in
}

// WithDisplay sets the display.
func (in *Interpreter) WithDisplay(d display.Display) *Interpreter {
	in.Display = d
	return in
}

// Settings returns a copy of the current settings.
func (in *Interpreter) Settings() device.Settings {
	in.lock.Lock()
	defer in.lock.Unlock()
	return in.settings
}

// Restore loads the settings from the store and pushes all of them to
// the driver and display, as done at power-up. A load failure leaves
// the defaults in place and is returned.
func (in *Interpreter) Restore() ([]string, error) {
	in.lock.Lock()
	defer in.lock.Unlock()
	s, err := in.Store.Load()
	if err != nil {
		glog.Errorf("load settings error: %v", err)
	}
	in.settings = s
	glog.Infof("settings loaded: %s", s)
	if applyErr := driver.Apply(in.Driver, s); applyErr != nil {
		glog.Errorf("apply settings error: %v", applyErr)
	}
	in.Display.Refresh(s)
	return []string{MsgLoaded}, err
}

// Execute parses and runs a single line.
func (in *Interpreter) Execute(line string) Result {
	cmd := ParseLine(line)
	in.lock.Lock()
	defer in.lock.Unlock()
	r := &Result{Command: cmd}
	in.dispatch(cmd, r)
	if r.Err != nil {
		glog.V(1).Infof("%q rejected: %v", line, r.Err)
	}
	return *r
}

func (in *Interpreter) dispatch(cmd Command, r *Result) {
	switch cmd.Action {
	case 'F':
		reg, ok := device.ParseRegister(cmd.Target)
		if !ok {
			r.reject(device.ErrInvalidRegister, MsgInvalidFreqReg)
			return
		}
		hz := cmd.Value()
		if in.mutate(r, func(s *device.Settings) error {
			return s.SetFrequency(reg, hz)
		}, func() error {
			return in.Driver.SetFrequency(reg, hz)
		}) {
			r.println(fmt.Sprintf("Frequency %d set to: %d", reg, hz))
		}
	case 'P':
		reg, ok := device.ParseRegister(cmd.Target)
		if !ok {
			r.reject(device.ErrInvalidRegister, MsgInvalidPhaseReg)
			return
		}
		val := cmd.Value()
		if val > device.MaxPhase {
			r.reject(device.ErrPhaseRange, MsgPhaseRange)
			return
		}
		if in.mutate(r, func(s *device.Settings) error {
			return s.SetPhaseWord(reg, val)
		}, func() error {
			return in.Driver.SetPhaseWord(reg, uint16(val))
		}) {
			r.println(fmt.Sprintf("Phase %d set to: %d", reg, val))
		}
	case 'S':
		in.selectRegister(cmd, r)
	case 'W':
		var mode device.Mode
		switch cmd.Target {
		case 'S':
			mode = device.ModeSine
		case 'T':
			mode = device.ModeTriangle
		default:
			r.reject(ErrInvalidWaveform, MsgInvalidWaveform)
			return
		}
		if in.mutate(r, func(s *device.Settings) error {
			return s.SetMode(mode)
		}, func() error {
			return in.Driver.SetOutputMode(mode)
		}) {
			r.println("Waveform set to " + mode.String())
		}
	case '?', 'H':
		r.Lines = append(r.Lines, HelpLines()...)
	default:
		r.reject(ErrUnknownCommand, MsgUnknownCommand)
	}
}

func (in *Interpreter) selectRegister(cmd Command, r *Result) {
	var usage string
	switch cmd.Target {
	case 'F':
		usage = MsgInvalidSelectFreq
	case 'P':
		usage = MsgInvalidSelectPhase
	default:
		r.reject(ErrInvalidSelection, MsgInvalidSelection)
		return
	}
	reg, ok := device.ParseRegister(cmd.Digit())
	if !ok {
		r.reject(device.ErrInvalidRegister, usage)
		return
	}
	if cmd.Target == 'F' {
		if in.mutate(r, func(s *device.Settings) error {
			return s.SelectFrequency(reg)
		}, func() error {
			return in.Driver.SelectFrequencyLine(reg)
		}) {
			r.println(fmt.Sprintf("Selected frequency register: %d", reg))
		}
		return
	}
	if in.mutate(r, func(s *device.Settings) error {
		return s.SelectPhase(reg)
	}, func() error {
		return in.Driver.SelectPhaseLine(reg)
	}) {
		r.println(fmt.Sprintf("Selected phase register: %d", reg))
	}
}

// mutate applies a validated change in order: model, driver, store,
// display. Driver and store failures are recorded, not rolled back.
// It returns false if the model refused the change.
func (in *Interpreter) mutate(r *Result, update func(*device.Settings) error, push func() error) bool {
	next := in.settings
	if err := update(&next); err != nil {
		r.reject(err, err.Error())
		return false
	}
	in.settings = next
	r.Mutated = true

	var errs fx.AggregatedError
	if err := push(); err != nil {
		glog.Errorf("driver error: %v", err)
		errs.Add(err)
	}
	if err := in.Store.Save(in.settings); err != nil {
		glog.Errorf("save settings error: %v", err)
		errs.Add(err)
	} else {
		r.println(MsgSaved)
	}
	in.Display.Refresh(in.settings)
	r.SyncErr = errs.Aggregate()
	return true
}

func (r *Result) reject(err error, line string) {
	r.Err = err
	r.println(line)
}

func (r *Result) println(line string) {
	r.Lines = append(r.Lines, line)
}
