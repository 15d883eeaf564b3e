package sh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/siggen/pkg/device"
	"github.com/robotalks/siggen/pkg/interp"
	"github.com/robotalks/siggen/pkg/remote"
)

func TestLocalTarget(t *testing.T) {
	target := &LocalTarget{Interp: interp.New(device.Defaults())}
	require.Equal(t, "local", target.Name())
	lines, err := target.Do(context.Background(), "F1 250")
	require.NoError(t, err)
	require.Equal(t, []string{interp.MsgSaved, "Frequency 1 set to: 250"}, lines)
	state, ok := target.State()
	require.True(t, ok)
	require.Equal(t, uint32(250), state.Freq1)
	require.NoError(t, target.Close())
}

func TestFormatInfo(t *testing.T) {
	info := remote.Info{Ref: remote.Ref{Type: "siggen", ID: "bench"}}
	require.Equal(t, "siggen/bench", FormatInfo(info))
	info.Meta.Description = "AD9834"
	require.Equal(t, "siggen/bench: AD9834", FormatInfo(info))
}
