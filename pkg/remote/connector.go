package remote

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/siggen/pkg/device"
)

// Default timeouts.
const (
	DefaultDiscoverTimeout = 500 * time.Millisecond
	DefaultReplyTimeout    = 2 * time.Second
)

// ErrNoReply indicates the device didn't reply in time.
var ErrNoReply = errors.New("no reply")

// Connector discovers and connects to devices.
type Connector struct {
	DiscoverTimeout time.Duration
	BrokerURL       string
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, err := ClientOptionsFromURL(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		BrokerURL:       brokerURL,
	}, nil
}

// Discover lists devices with a retained meta.
func (c *Connector) Discover(ctx context.Context) (res []Info, err error) {
	q, err := NewQueueFromURL(c.BrokerURL)
	if err != nil {
		return nil, err
	}
	if err = q.Connect(); err != nil {
		return nil, err
	}
	defer q.Close()
	resCh := make(chan Info, 1)
	q.Sub("+/+/"+TopicMeta, Handler(func(topic string, payload []byte) {
		info, ok := ParseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// ParseMeta decodes a meta message. Empty payload means the device is
// gone.
func ParseMeta(topic string, payload []byte) (info Info, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[2] != TopicMeta || len(payload) == 0 {
		return
	}
	info.Ref = Ref{Type: items[0], ID: items[1]}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("%s: bad meta: %v", topic, err)
	}
	return info, true
}

// Connect connects to the device.
func (c *Connector) Connect(ctx context.Context, ref Ref) (*Conn, error) {
	q, err := NewQueueFromURL(c.BrokerURL)
	if err != nil {
		return nil, err
	}
	conn := &Conn{
		Ref:          ref,
		Queue:        q,
		ReplyTimeout: DefaultReplyTimeout,
		replyCh:      make(chan []byte, 1),
	}
	conn.msgSub = q.Sub(ref.Topic(TopicMsg), conn.handleMsg)
	conn.stateSub = q.Sub(ref.Topic(TopicState), conn.handleState)
	if err := q.Connect(); err != nil {
		return nil, err
	}
	return conn, nil
}

// Conn is a connection to a remote device.
// Commands are sent one at a time; a reply is the next message on the
// device's msg topic.
type Conn struct {
	Ref          Ref
	Queue        *Queue
	ReplyTimeout time.Duration

	msgSub   *Subscription
	stateSub *Subscription
	replyCh  chan []byte
	cmdLock  sync.Mutex

	state     device.State
	hasState  bool
	stateLock sync.RWMutex
}

// Do sends a command line and waits for its response lines.
func (c *Conn) Do(ctx context.Context, line string) ([]string, error) {
	c.cmdLock.Lock()
	defer c.cmdLock.Unlock()
	// drop a late reply of a previous command
	select {
	case <-c.replyCh:
	default:
	}
	token := c.Queue.PubWith(c.Ref.Topic(TopicCmd), []byte(line+"\n"), 1, false)
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	timeout := c.ReplyTimeout
	if timeout == 0 {
		timeout = DefaultReplyTimeout
	}
	select {
	case reply := <-c.replyCh:
		return strings.Split(string(reply), "\n"), nil
	case <-time.After(timeout):
		return nil, ErrNoReply
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the last state published by the device.
func (c *Conn) State() (device.State, bool) {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	return c.state, c.hasState
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	c.msgSub.Close()
	c.stateSub.Close()
	return c.Queue.Close()
}

func (c *Conn) handleMsg(_ string, payload []byte) {
	select {
	case c.replyCh <- payload:
	default:
		glog.Warningf("%s: unexpected reply dropped", c.Ref.Name())
	}
}

func (c *Conn) handleState(topic string, payload []byte) {
	var state device.State
	if err := json.Unmarshal(payload, &state); err != nil {
		glog.Warningf("%s: bad state: %v", topic, err)
		return
	}
	c.stateLock.Lock()
	c.state, c.hasState = state, true
	c.stateLock.Unlock()
}
