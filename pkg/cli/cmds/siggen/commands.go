// Package siggen adds friendly shell commands which are translated
// into device command lines.
package siggen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/siggen/pkg/cli/sh"
	"github.com/robotalks/siggen/pkg/device"
)

// FreqLine builds the command line setting a frequency register.
func FreqLine(args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("REG and HZ required")
	}
	reg, err := parseRegister(args[0])
	if err != nil {
		return "", err
	}
	hz, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return "", fmt.Errorf("Invalid HZ: %v", err)
	}
	return fmt.Sprintf("F%d%d", reg, hz), nil
}

// PhaseLine builds the command line setting a phase register.
func PhaseLine(args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("REG and WORD required")
	}
	reg, err := parseRegister(args[0])
	if err != nil {
		return "", err
	}
	word, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return "", fmt.Errorf("Invalid WORD: %v", err)
	}
	if word > device.MaxPhase {
		return "", device.ErrPhaseRange
	}
	return fmt.Sprintf("P%d%d", reg, word), nil
}

// SelectLine builds the command line selecting the active register.
func SelectLine(args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("freq|phase and REG required")
	}
	reg, err := parseRegister(args[1])
	if err != nil {
		return "", err
	}
	switch strings.ToLower(args[0]) {
	case "f", "freq":
		return fmt.Sprintf("SF%d", reg), nil
	case "p", "phase":
		return fmt.Sprintf("SP%d", reg), nil
	}
	return "", fmt.Errorf("Invalid selection %q, expect freq or phase", args[0])
}

// WaveLine builds the command line setting the waveform.
func WaveLine(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("sine|triangle required")
	}
	switch strings.ToLower(args[0]) {
	case "s", "sine":
		return "WS", nil
	case "t", "tri", "triangle":
		return "WT", nil
	}
	return "", fmt.Errorf("Invalid waveform %q", args[0])
}

func parseRegister(arg string) (device.Register, error) {
	if len(arg) == 1 {
		if reg, ok := device.ParseRegister(arg[0]); ok {
			return reg, nil
		}
	}
	return 0, device.ErrInvalidRegister
}

func lineCmd(build func([]string) (string, error)) func(c *ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		line, err := build(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		sh.DoLine(c, line)
	})
}

var (
	// FreqCmd sets a frequency register.
	FreqCmd = ishell.Cmd{
		Name:    "freq",
		Aliases: []string{"f"},
		Help:    "REG(0|1) HZ",
		Func:    lineCmd(FreqLine),
	}

	// PhaseCmd sets a phase register.
	PhaseCmd = ishell.Cmd{
		Name:    "phase",
		Aliases: []string{"p"},
		Help:    "REG(0|1) WORD(0-4095)",
		Func:    lineCmd(PhaseLine),
	}

	// SelectCmd selects the active frequency or phase register.
	SelectCmd = ishell.Cmd{
		Name:    "select",
		Aliases: []string{"sel"},
		Help:    "freq|phase REG(0|1)",
		Func:    lineCmd(SelectLine),
	}

	// WaveCmd sets the output waveform.
	WaveCmd = ishell.Cmd{
		Name:    "wave",
		Aliases: []string{"w"},
		Help:    "sine|triangle",
		Func:    lineCmd(WaveLine),
	}
)

func init() {
	sh.AddCmds(
		&FreqCmd,
		&PhaseCmd,
		&SelectCmd,
		&WaveCmd,
	)
}
