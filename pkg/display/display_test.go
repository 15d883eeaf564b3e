package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/siggen/pkg/device"
)

func TestTextLayout(t *testing.T) {
	var buf bytes.Buffer
	d := NewText(&buf)
	s := device.Defaults()
	s.ActiveFreq = device.Reg1
	s.Phase[1] = 2048
	s.ActivePhase = device.Reg1
	s.Mode = device.ModeTriangle
	d.Refresh(s)

	lines := strings.Split(buf.String(), "\n")
	require.Equal(t, "F1: 10000 Hz", lines[0])
	require.Equal(t, "P1: 2048 deg", lines[1])
	require.Equal(t, "Mode: Triangle", lines[2])
	require.Len(t, lines, 3+DefaultHeight+1)
}

func TestWaveformOnePointPerColumn(t *testing.T) {
	for _, mode := range []device.Mode{device.ModeSine, device.ModeTriangle} {
		rows := Waveform(mode, 40, 7)
		require.Len(t, rows, 7)
		for x := 0; x < 40; x++ {
			count := 0
			for _, row := range rows {
				if x < len(row) && row[x] == '*' {
					count++
				}
			}
			require.Equal(t, 1, count, "mode %s column %d", mode, x)
		}
	}
}

func TestWaveformShapes(t *testing.T) {
	sine := Waveform(device.ModeSine, 32, 5)
	// sine starts at the middle row and peaks at a quarter cycle
	require.Equal(t, byte('*'), sine[2][0])
	require.Equal(t, byte('*'), sine[0][8])
	require.Equal(t, byte('*'), sine[4][24])

	tri := Waveform(device.ModeTriangle, 16, 5)
	// triangle starts at the bottom and peaks at half period
	require.Equal(t, byte('*'), tri[4][0])
	require.Equal(t, byte('*'), tri[0][8])
}

func TestMulti(t *testing.T) {
	var got []device.Mode
	d := Multi{Nop{}, RefreshFunc(func(s device.Settings) { got = append(got, s.Mode) })}
	s := device.Defaults()
	d.Refresh(s)
	s.Mode = device.ModeTriangle
	d.Refresh(s)
	require.Equal(t, []device.Mode{device.ModeSine, device.ModeTriangle}, got)
}
