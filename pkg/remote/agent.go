package remote

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/siggen/pkg/device"
	"github.com/robotalks/siggen/pkg/interp"
)

// Agent serves an Interpreter on MQTT. Every message on the cmd topic
// is split into lines which are executed in order; all response lines
// are published as one message on the msg topic.
type Agent struct {
	Queue  *Queue
	Info   Info
	Interp *interp.Interpreter
	// RetryInterval is the delay between failed initial connects.
	RetryInterval time.Duration

	metaJSON []byte
	dial     func() error
}

// DefaultRetryInterval is the default Agent.RetryInterval.
const DefaultRetryInterval = 5 * time.Second

// NewAgent creates an Agent.
func NewAgent(brokerURL string, info Info, in *interp.Interpreter) (*Agent, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+info.Ref.Topic(TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID(info.Ref.Type + ":" + info.Ref.ID)
	}
	a := &Agent{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		Interp:   in,
		metaJSON: meta,
	}
	a.dial = a.Queue.Connect
	a.Queue.OnConnect = func(*Queue) { a.onConnected() }
	return a, nil
}

// Name implements framework.Named.
func (a *Agent) Name() string {
	return "mqtt:" + a.Info.Ref.Name()
}

// Run implements framework.Runnable.
func (a *Agent) Run(ctx context.Context) error {
	sub := a.Queue.Sub(a.Info.Ref.Topic(TopicCmd), a.handleCmd)
	defer sub.Close()
	if !a.connect(ctx) {
		return ctx.Err()
	}
	<-ctx.Done()
	if a.Queue.Client.IsConnected() {
		a.Queue.PubWith(a.Info.Ref.Topic(TopicMeta), nil, 1, true).Wait()
	}
	a.Queue.Close()
	return ctx.Err()
}

// connect retries the initial connection until it succeeds or ctx is
// done. Once connected, the client reconnects by itself.
func (a *Agent) connect(ctx context.Context) bool {
	interval := a.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	for {
		err := a.dial()
		if err == nil {
			return true
		}
		glog.Errorf("%s: connect error: %v, retry in %s", a.Name(), err, interval)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}

// Display returns a display.Display which publishes the settings.
func (a *Agent) Display() *StatePublisher {
	return &StatePublisher{Publisher: a.Queue, Topic: a.Info.Ref.Topic(TopicState)}
}

func (a *Agent) onConnected() {
	a.Queue.PubWith(a.Info.Ref.Topic(TopicMeta), a.metaJSON, 1, true)
	a.Display().Refresh(a.Interp.Settings())
}

func (a *Agent) handleCmd(_ string, payload []byte) {
	reply := Execute(a.Interp, payload)
	if len(reply) == 0 {
		return
	}
	a.Queue.PubWith(a.Info.Ref.Topic(TopicMsg), reply, 1, false)
}

// Execute runs all lines in payload and returns the joined response.
// A trailing line without terminator is executed too, as an MQTT
// message is already framed.
func Execute(in *interp.Interpreter, payload []byte) []byte {
	buf := interp.NewLineBuffer(interp.DefaultLineCapacity)
	var lines []string
	exec := func(line string) {
		lines = append(lines, in.Execute(line).Lines...)
	}
	for _, b := range payload {
		if line, ok := buf.Push(b); ok {
			exec(line)
		}
	}
	if line, ok := buf.Push('\n'); ok {
		exec(line)
	}
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n"))
}

// StatePublisher publishes the settings as retained JSON.
// It implements display.Display.
type StatePublisher struct {
	Publisher Publisher
	Topic     string
}

// Refresh implements display.Display.
func (p *StatePublisher) Refresh(s device.Settings) {
	data, err := json.Marshal(device.NewState(s))
	if err != nil {
		glog.Errorf("encode state: %v", err)
		return
	}
	p.Publisher.PubWith(p.Topic, data, 1, true)
}
