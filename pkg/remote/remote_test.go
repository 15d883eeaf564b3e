package remote

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/siggen/pkg/device"
	"github.com/robotalks/siggen/pkg/interp"
)

func TestMatchTopic(t *testing.T) {
	testCases := []struct {
		topic, pattern string
		match          bool
	}{
		{"siggen/a/meta", "+/+/meta", true},
		{"siggen/a/state", "+/+/meta", false},
		{"siggen/a", "+/+/meta", false},
		{"siggen/a/meta/x", "+/+/meta", false},
		{"siggen/a/meta", "#", true},
		{"siggen/a/meta", "siggen/#", true},
		{"siggen", "siggen/#", true},
		{"other/a/meta", "siggen/#", false},
		{"siggen/a/cmd", "siggen/a/cmd", true},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.match, MatchTopic(tc.topic, tc.pattern), "%s ~ %s", tc.topic, tc.pattern)
	}
}

func TestClientOptionsFromURL(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("mqtt://u:p@broker:1884/lab/?client-id=bench")
	require.NoError(t, err)
	require.Equal(t, "lab/", prefix)
	require.Len(t, opts.Servers, 1)
	require.Equal(t, "tcp://broker:1884", opts.Servers[0].String())
	require.Equal(t, "u", opts.Username)
	require.Equal(t, "p", opts.Password)
	require.Equal(t, "bench", opts.ClientID)

	opts, prefix, err = ClientOptionsFromURL("ssl://broker:8883")
	require.NoError(t, err)
	require.Equal(t, "", prefix)
	require.Equal(t, "ssl://broker:8883", opts.Servers[0].String())
}

func TestQueueDispatch(t *testing.T) {
	q := &Queue{TopicPrefix: "lab/"}
	var got []string
	sub := q.Sub("+/+/meta", func(topic string, payload []byte) {
		got = append(got, "wild:"+topic)
	})
	q.Sub("siggen/a/meta", func(topic string, payload []byte) {
		got = append(got, "exact:"+string(payload))
	})
	q.Dispatch("lab/siggen/a/meta", []byte("x"))
	q.Dispatch("other/siggen/a/meta", []byte("y"))
	require.Equal(t, []string{"exact:x", "wild:siggen/a/meta"}, got)

	require.NoError(t, sub.Close())
	got = nil
	q.Dispatch("lab/siggen/b/meta", []byte("z"))
	require.Empty(t, got)
}

func TestSubscriptionCloseKeepsOtherHandlers(t *testing.T) {
	q := &Queue{}
	var got []string
	first := q.Sub("siggen/a/msg", func(string, []byte) { got = append(got, "first") })
	q.Sub("siggen/a/msg", func(string, []byte) { got = append(got, "second") })
	require.NoError(t, first.Close())
	q.Dispatch("siggen/a/msg", nil)
	require.Equal(t, []string{"second"}, got)
}

func TestAgentRetriesInitialConnect(t *testing.T) {
	agent, err := NewAgent("mqtt://127.0.0.1:1/",
		Info{Ref: Ref{Type: DefaultType, ID: "bench"}}, interp.New(device.Defaults()))
	require.NoError(t, err)
	agent.RetryInterval = time.Millisecond
	attempts := make(chan int, 10)
	var n int
	agent.dial = func() error {
		n++
		attempts <- n
		if n < 3 {
			return errors.New("connection refused")
		}
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agent.Run(ctx) }()
	for i := 1; i <= 3; i++ {
		select {
		case got := <-attempts:
			require.Equal(t, i, got)
		case <-time.After(time.Second):
			t.Fatalf("connect attempt %d not made", i)
		}
	}
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("agent not stopped")
	}
	require.Len(t, attempts, 0)
}

func TestAgentStopsWhileDisconnected(t *testing.T) {
	agent, err := NewAgent("mqtt://127.0.0.1:1/",
		Info{Ref: Ref{Type: DefaultType, ID: "bench"}}, interp.New(device.Defaults()))
	require.NoError(t, err)
	agent.RetryInterval = time.Hour
	agent.dial = func() error { return errors.New("connection refused") }
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agent.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("agent not stopped")
	}
}

func TestRef(t *testing.T) {
	ref := Ref{Type: DefaultType, ID: "abc"}
	require.True(t, ref.IsValid())
	require.Equal(t, "siggen/abc/cmd", ref.Topic(TopicCmd))
	require.False(t, Ref{Type: DefaultType}.IsValid())
}

func TestParseMeta(t *testing.T) {
	info, ok := ParseMeta("siggen/abc/meta", []byte(`{"description":"bench"}`))
	require.True(t, ok)
	require.Equal(t, Ref{Type: "siggen", ID: "abc"}, info.Ref)
	require.Equal(t, "bench", info.Meta.Description)

	_, ok = ParseMeta("siggen/abc/meta", nil)
	require.False(t, ok)
	_, ok = ParseMeta("siggen/abc/state", []byte("{}"))
	require.False(t, ok)
}

func TestExecute(t *testing.T) {
	in := interp.New(device.Defaults())
	reply := Execute(in, []byte("F0440\nWT"))
	require.Equal(t, "Settings saved\nFrequency 0 set to: 440\nSettings saved\nWaveform set to Triangle", string(reply))
	require.Equal(t, uint32(440), in.Settings().Freq[0])
	require.Equal(t, device.ModeTriangle, in.Settings().Mode)

	require.Nil(t, Execute(in, []byte("\r\n")))
	require.Equal(t, interp.MsgUnknownCommand, string(Execute(in, []byte("Z"))))
}

type published struct {
	topic   string
	payload []byte
	retain  bool
}

type fakePublisher struct {
	msgs []published
}

func (p *fakePublisher) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	p.msgs = append(p.msgs, published{topic: topic, payload: payload, retain: retain})
	return &paho.DummyToken{}
}

func TestStatePublisher(t *testing.T) {
	pub := &fakePublisher{}
	in := interp.New(device.Defaults()).WithDisplay(&StatePublisher{Publisher: pub, Topic: "siggen/a/state"})
	in.Execute("SF1")
	in.Execute("Z")
	require.Len(t, pub.msgs, 1)
	require.Equal(t, "siggen/a/state", pub.msgs[0].topic)
	require.True(t, pub.msgs[0].retain)
	var state device.State
	require.NoError(t, json.Unmarshal(pub.msgs[0].payload, &state))
	require.Equal(t, device.State{
		Freq0: 1000, Freq1: 10000, ActiveFreq: 1, Waveform: "Sine",
	}, state)
}

func TestConnHandlers(t *testing.T) {
	c := &Conn{Ref: Ref{Type: DefaultType, ID: "a"}, replyCh: make(chan []byte, 1)}
	_, ok := c.State()
	require.False(t, ok)
	c.handleState("siggen/a/state", []byte(`{"freq0":5,"waveform":"Triangle"}`))
	state, ok := c.State()
	require.True(t, ok)
	require.Equal(t, uint32(5), state.Freq0)
	require.Equal(t, "Triangle", state.Waveform)

	c.handleMsg("", []byte("one"))
	c.handleMsg("", []byte("two"))
	require.Equal(t, []byte("one"), <-c.replyCh)
}
