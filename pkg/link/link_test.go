package link

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/siggen/pkg/device"
	"github.com/robotalks/siggen/pkg/interp"
)

func readUntil(t *testing.T, r *bufio.Reader, expect string) {
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if strings.TrimRight(line, "\r\n") == expect {
			return
		}
	}
}

func TestTCPServer(t *testing.T) {
	in := interp.New(device.Defaults())
	srv, err := ListenTCP("127.0.0.1:0", in)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	r := bufio.NewReader(conn)
	readUntil(t, r, "----------------------------------------")

	_, err = conn.Write([]byte("F1123\r\n"))
	require.NoError(t, err)
	readUntil(t, r, "Frequency 1 set to: 123")
	require.Equal(t, uint32(123), in.Settings().Freq[1])

	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("server not stopped")
	}
	_, err = r.ReadString('\n')
	require.Error(t, err)
}

func TestWebSocket(t *testing.T) {
	in := interp.New(device.Defaults())
	mux := http.NewServeMux()
	mux.Handle("/ws", WebSocketHandler(in))
	mux.Handle("/state", StateHandler(in))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, websocket.Message.Send(conn, "WT\n"))
	var reply string
	require.NoError(t, websocket.Message.Receive(conn, &reply))
	require.Equal(t, "Settings saved\r\nWaveform set to Triangle\r\n", reply)

	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var state device.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.Equal(t, "Triangle", state.Waveform)
	require.Equal(t, uint32(10000), state.Freq1)
}

func TestOpenSerialMissingDevice(t *testing.T) {
	_, err := OpenSerial("/dev/siggen-does-not-exist", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "/dev/siggen-does-not-exist")
}
