package env

import (
	"context"
	"io/ioutil"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/siggen/pkg/device"
	fx "github.com/robotalks/siggen/pkg/framework"
	"github.com/robotalks/siggen/pkg/interp"
	"github.com/robotalks/siggen/pkg/link"
)

func TestNewEnvRequiresTransport(t *testing.T) {
	conf := NewConfig()
	conf.Serial, conf.TCPAddr, conf.HTTPAddr, conf.MQTTBrokerURL = "", "", "", ""
	conf.StateDir = ""
	conf.Info.Ref.ID = "test"
	_, err := conf.NewEnv()
	require.Error(t, err)
}

func TestNewEnvRestoresState(t *testing.T) {
	dir, err := ioutil.TempDir("", "siggen-env")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	conf := NewConfig()
	conf.Serial, conf.HTTPAddr, conf.MQTTBrokerURL = "", "", ""
	conf.TCPAddr = "127.0.0.1:0"
	conf.StateDir = dir
	conf.Info.Ref.ID = "test"

	env, err := conf.NewEnv()
	require.NoError(t, err)
	require.Equal(t, []string{interp.MsgLoaded}, env.Startup)
	require.Len(t, env.Runnables, 1)
	_, ok := env.Runnables[0].(*link.TCPServer)
	require.True(t, ok)
	env.Interp.Execute("F0440")
	env.Interp.Execute("WT")
	closeRunnables(t, env.Runnables)

	env, err = conf.NewEnv()
	require.NoError(t, err)
	s := env.Interp.Settings()
	require.Equal(t, uint32(440), s.Freq[0])
	require.Equal(t, device.ModeTriangle, s.Mode)
	closeRunnables(t, env.Runnables)
}

func TestNewEnvClosesOpenedTransportsOnFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tcpAddr := free.Addr().String()
	require.NoError(t, free.Close())

	conf := NewConfig()
	conf.Serial, conf.MQTTBrokerURL, conf.StateDir = "", "", ""
	conf.Info.Ref.ID = "test"
	conf.TCPAddr = tcpAddr
	conf.HTTPAddr = busy.Addr().String()
	_, err = conf.NewEnv()
	require.Error(t, err)

	ln, err := net.Listen("tcp", tcpAddr)
	require.NoError(t, err, "TCP listener left open")
	ln.Close()
}

func closeRunnables(t *testing.T, runnables []fx.Runnable) {
	ctx, cancel := context.WithCancel(context.Background())
	r := fx.NewRunnerWith(ctx).Go(runnables...)
	time.Sleep(10 * time.Millisecond)
	cancel()
	require.NoError(t, r.Wait())
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID("siggen"))
}
