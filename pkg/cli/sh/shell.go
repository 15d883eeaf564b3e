package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/siggen/pkg/device"
	"github.com/robotalks/siggen/pkg/env"
	"github.com/robotalks/siggen/pkg/interp"
	"github.com/robotalks/siggen/pkg/remote"
	"github.com/robotalks/siggen/pkg/store"
)

// Target executes command lines on a signal generator.
type Target interface {
	Name() string
	Do(ctx context.Context, line string) ([]string, error)
	State() (device.State, bool)
	Close() error
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Local       bool

	Shell  *ishell.Shell
	Config *env.Config
	Target Target
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	localMode  bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StateCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&localMode, "local", localMode, "Run an in-process generator instead of connecting.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Local:       localMode,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	s.Shell.NotFound(MustBeConnected(func(c *ishell.Context) {
		DoLine(c, strings.Join(c.Args, " "))
	}))
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Target == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints Info into friendly string for display.
func FormatInfo(info remote.Info) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// DoLine sends a command line to the target and prints the response.
func DoLine(c *ishell.Context, line string) error {
	s := ShellFrom(c)
	if s.Target == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	lines, err := s.Target.Do(context.Background(), line)
	if err != nil {
		c.Err(err)
		return err
	}
	if s.OutputJSON {
		if lines == nil {
			lines = []string{}
		}
		out, err := json.Marshal(lines)
		if err != nil {
			c.Err(err)
			return err
		}
		c.Println(string(out))
		return nil
	}
	for _, l := range lines {
		c.Println(l)
	}
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverDevices discovers devices.
func (s *Shell) DiscoverDevices(filter func(remote.Info) bool) ([]remote.Info, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	infoList, err := connector.Discover(context.TODO())
	if err != nil {
		return nil, err
	}
	if filter != nil {
		items := make([]remote.Info, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return infoList, nil
}

// SelectDevice discovers devices and asks for a choice.
func (s *Shell) SelectDevice(filter func(remote.Info) bool) (*remote.Info, error) {
	infoList, err := s.DiscoverDevices(filter)
	if err != nil {
		return nil, err
	}
	if len(infoList) == 0 {
		return nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 devices discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
		if index < 0 {
			return nil, nil
		}
	}
	return &infoList[index], nil
}

// Connect connects the device with ref.
func (s *Shell) Connect(ref remote.Ref) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	conn, err := connector.Connect(context.TODO(), ref)
	if err != nil {
		return err
	}
	s.use(&RemoteTarget{Conn: conn})
	return nil
}

// ConnectLocal runs an in-process generator with settings kept in memory.
func (s *Shell) ConnectLocal() ([]string, error) {
	in := s.Config.NewInterp().WithStore(store.NewPrefs(store.NewMemKV()))
	lines, err := in.Restore()
	if err != nil {
		return lines, err
	}
	s.use(&LocalTarget{Interp: in})
	return lines, nil
}

func (s *Shell) use(target Target) {
	s.Disconnect()
	s.Target = target
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", target.Name()))
}

// Disconnect disconnects current device.
func (s *Shell) Disconnect() {
	if s.Target != nil {
		s.Target.Close()
		s.Target = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Disconnect()
	switch {
	case s.Local:
		lines, err := s.ConnectLocal()
		if err != nil {
			log.Fatalf("local generator failed: %v", err)
		}
		if s.Interactive {
			for _, line := range lines {
				s.Shell.Println(line)
			}
		}
	case s.AutoConnect && s.Config.MQTTBrokerURL != "" && s.Config.Info.Ref.IsValid():
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Info.Ref.Name())
		}
		if err := s.Connect(s.Config.Info.Ref); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Info.Ref.Name(), err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// LocalTarget runs commands on an in-process Interpreter.
type LocalTarget struct {
	Interp *interp.Interpreter
}

// Name implements Target.
func (t *LocalTarget) Name() string { return "local" }

// Do implements Target.
func (t *LocalTarget) Do(_ context.Context, line string) ([]string, error) {
	return t.Interp.Execute(line).Lines, nil
}

// State implements Target.
func (t *LocalTarget) State() (device.State, bool) {
	return device.NewState(t.Interp.Settings()), true
}

// Close implements Target.
func (t *LocalTarget) Close() error { return nil }

// RemoteTarget runs commands on a device over MQTT.
type RemoteTarget struct {
	Conn *remote.Conn
}

// Name implements Target.
func (t *RemoteTarget) Name() string { return t.Conn.Ref.Name() }

// Do implements Target.
func (t *RemoteTarget) Do(ctx context.Context, line string) ([]string, error) {
	return t.Conn.Do(ctx, line)
}

// State implements Target.
func (t *RemoteTarget) State() (device.State, bool) { return t.Conn.State() }

// Close implements Target.
func (t *RemoteTarget) Close() error { return t.Conn.Close() }

var (
	// DiscoverCmd discovers devices.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverDevices(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []remote.Info{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No devices found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE] ID",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref remote.Ref
			switch {
			case len(c.Args) >= 2:
				ref.Type, ref.ID = c.Args[0], c.Args[1]
			case len(c.Args) == 1:
				ref.Type, ref.ID = remote.DefaultType, c.Args[0]
			default:
				info, err := s.SelectDevice(func(info remote.Info) bool {
					return info.Ref.Type == remote.DefaultType
				})
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no device discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// DisconnectCmd disconnects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// StateCmd prints the last known device state.
	StateCmd = ishell.Cmd{
		Name:    "state",
		Aliases: []string{"st"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			state, ok := s.Target.State()
			if !ok {
				c.Err(fmt.Errorf("state not received yet"))
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(state)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			c.Printf("F0: %d Hz, F1: %d Hz\n", state.Freq0, state.Freq1)
			c.Printf("P0: %d, P1: %d\n", state.Phase0, state.Phase1)
			c.Printf("Active: F%d P%d, Waveform: %s\n", state.ActiveFreq, state.ActivePhase, state.Waveform)
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
