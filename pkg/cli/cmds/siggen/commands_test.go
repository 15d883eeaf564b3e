package siggen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/siggen/pkg/device"
)

func TestLineBuilders(t *testing.T) {
	tests := []struct {
		build func([]string) (string, error)
		args  []string
		line  string
	}{
		{FreqLine, []string{"0", "440"}, "F0440"},
		{FreqLine, []string{"1", "75000000"}, "F175000000"},
		{PhaseLine, []string{"1", "4095"}, "P14095"},
		{SelectLine, []string{"freq", "1"}, "SF1"},
		{SelectLine, []string{"Phase", "0"}, "SP0"},
		{WaveLine, []string{"triangle"}, "WT"},
		{WaveLine, []string{"S"}, "WS"},
	}
	for _, test := range tests {
		line, err := test.build(test.args)
		require.NoError(t, err, "%v", test.args)
		require.Equal(t, test.line, line)
	}
}

func TestLineBuilderErrors(t *testing.T) {
	_, err := FreqLine([]string{"2", "100"})
	require.Equal(t, device.ErrInvalidRegister, err)
	_, err = FreqLine([]string{"0"})
	require.Error(t, err)
	_, err = FreqLine([]string{"0", "-5"})
	require.Error(t, err)
	_, err = PhaseLine([]string{"0", "4096"})
	require.Equal(t, device.ErrPhaseRange, err)
	_, err = SelectLine([]string{"mode", "0"})
	require.Error(t, err)
	_, err = WaveLine([]string{"square"})
	require.Error(t, err)
	_, err = WaveLine(nil)
	require.Error(t, err)
}
