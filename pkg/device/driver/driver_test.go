package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/siggen/pkg/device"
	"github.com/robotalks/siggen/pkg/device/driver/drivertest"
	fx "github.com/robotalks/siggen/pkg/framework"
)

func TestApply(t *testing.T) {
	var rec drivertest.Recorder
	s := device.Defaults()
	s.Freq[0] = 440
	s.Phase[1] = 4095
	s.ActivePhase = device.Reg1
	s.Mode = device.ModeTriangle
	require.NoError(t, Apply(&rec, s))
	require.Equal(t, []string{
		"F0=440", "F1=10000",
		"P0=0", "P1=4095",
		"W=Triangle",
		"FSEL=0", "PSEL=1",
	}, rec.Calls())
}

func TestApplyAggregatesErrors(t *testing.T) {
	rec := &drivertest.Recorder{Err: errors.New("spi down")}
	err := Apply(rec, device.Defaults())
	require.Error(t, err)
	agg, ok := err.(*fx.AggregatedError)
	require.True(t, ok)
	require.Len(t, agg.Errors, 7)
	require.Len(t, rec.Calls(), 7)
}

func TestMux(t *testing.T) {
	var a drivertest.Recorder
	b := &drivertest.Recorder{Err: errors.New("fail")}
	m := Mux{&a, Nop{}, b, Logger{Level: 4}}
	require.NoError(t, Mux{&a, Nop{}}.SetFrequency(device.Reg1, 5))
	require.Equal(t, []string{"F1=5"}, a.Calls())

	err := m.SelectPhaseLine(device.Reg1)
	require.Error(t, err)
	require.Equal(t, []string{"PSEL=1"}, a.Calls())
	require.Equal(t, []string{"PSEL=1"}, b.Calls())
}
