// Package env assembles a signal generator from configuration:
// flags and SIGGEN_* environment variables.
package env

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/siggen/pkg/device"
	"github.com/robotalks/siggen/pkg/device/driver"
	"github.com/robotalks/siggen/pkg/display"
	fx "github.com/robotalks/siggen/pkg/framework"
	"github.com/robotalks/siggen/pkg/interp"
	"github.com/robotalks/siggen/pkg/link"
	"github.com/robotalks/siggen/pkg/remote"
	"github.com/robotalks/siggen/pkg/store"
)

// Config provides options to setup a signal generator.
type Config struct {
	Info remote.Info

	// MQTTBrokerURL specifies the MQTT broker to use, empty to disable.
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string
	// StateDir is where settings are persisted, empty to keep them
	// in memory only.
	StateDir string
	// Serial is the serial device to serve, "-" for stdin/stdout,
	// empty to disable.
	Serial string
	// Baud is the baud rate of Serial.
	Baud int
	// TCPAddr is the address of the raw TCP line service.
	TCPAddr string
	// HTTPAddr is the address serving /ws and /state.
	HTTPAddr string
	// Display enables the text display on stderr.
	Display bool
	// DriverLogLevel is the glog verbosity of driver traces.
	DriverLogLevel int
}

var defaultConfig = Config{
	Info: remote.Info{
		Ref:  remote.Ref{Type: remote.DefaultType},
		Meta: remote.Meta{Description: "AD9834 Signal Generator"},
	},
	StateDir:       "/var/lib/siggen",
	Serial:         "-",
	Baud:           link.DefaultBaud,
	DriverLogLevel: 2,
}

func init() {
	if val := os.Getenv("SIGGEN_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	}
	if val := os.Getenv("SIGGEN_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("SIGGEN_STATE_DIR"); val != "" {
		defaultConfig.StateDir = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID, defaults to machine ID.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, e.g. mqtt://localhost:1883/lab/")
	flag.StringVar(&defaultConfig.StateDir, "state-dir", defaultConfig.StateDir, "Directory of persisted settings, empty for memory only.")
	flag.StringVar(&defaultConfig.Serial, "serial", defaultConfig.Serial, "Serial device, - for stdio, empty to disable.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Baud rate of the serial device.")
	flag.StringVar(&defaultConfig.TCPAddr, "tcp", defaultConfig.TCPAddr, "Listen address of the TCP line service.")
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "Listen address of the websocket service.")
	flag.BoolVar(&defaultConfig.Display, "display", defaultConfig.Display, "Render the display on stderr.")
	flag.IntVar(&defaultConfig.DriverLogLevel, "driver-v", defaultConfig.DriverLogLevel, "Log verbosity of driver pushes.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is an assembled signal generator.
type Env struct {
	Config *Config
	Interp *interp.Interpreter
	Agent  *remote.Agent
	// Runnables serve the configured transports.
	Runnables []fx.Runnable
	// Startup are the status lines of restoring the settings.
	Startup []string
}

// NewStore creates the settings store of the config.
func (c *Config) NewStore() store.Store {
	if c.StateDir == "" {
		return store.NewPrefs(store.NewMemKV())
	}
	return store.NewPrefs(store.NewFileKV(c.StateDir, store.DefaultNamespace))
}

// NewInterp creates an Interpreter on the configured store and a
// logging driver. Settings are not restored yet.
func (c *Config) NewInterp() *interp.Interpreter {
	return interp.New(device.Defaults()).
		WithStore(c.NewStore()).
		WithDriver(driver.Logger{Level: glog.Level(c.DriverLogLevel)})
}

// NewConnector creates a Connector to reach devices on the broker.
func (c *Config) NewConnector() (*remote.Connector, error) {
	if c.MQTTBrokerURL == "" {
		return nil, fmt.Errorf("MQTT broker URL is not configured")
	}
	return remote.NewConnector(c.MQTTBrokerURL)
}

// NewEnv creates Env from config, restoring persisted settings.
func (c *Config) NewEnv() (*Env, error) {
	if c.Info.Ref.ID == "" {
		c.Info.Ref.ID = MachineID(c.Info.Ref.Type)
	}
	in := c.NewInterp()
	env := &Env{Config: c, Interp: in}

	var displays display.Multi
	if c.Display {
		displays = append(displays, display.NewText(os.Stderr))
	}
	if c.MQTTBrokerURL != "" {
		agent, err := remote.NewAgent(c.MQTTBrokerURL, c.Info, in)
		if err != nil {
			return nil, fmt.Errorf("create MQTT agent error: %v", err)
		}
		env.Agent = agent
		displays = append(displays, agent.Display())
		env.Runnables = append(env.Runnables, agent)
	}
	if len(displays) > 0 {
		in.WithDisplay(displays)
	}

	startup, err := in.Restore()
	if err != nil {
		glog.Warningf("using default settings: %v", err)
	}
	env.Startup = startup

	// opened transports are closed again if a later one fails
	var opened []io.Closer
	fail := func(err error) (*Env, error) {
		for _, closer := range opened {
			closer.Close()
		}
		return nil, err
	}
	if c.Serial != "" {
		s := &link.Stream{Name: c.Serial, Interp: in, Banner: true, Preamble: startup}
		if c.Serial == "-" {
			s.RW = link.Stdio{}
		} else {
			rw, err := link.OpenSerial(c.Serial, c.Baud)
			if err != nil {
				return fail(err)
			}
			opened = append(opened, rw)
			s.RW = rw
		}
		env.Runnables = append(env.Runnables, fx.NamedRun("serial:"+c.Serial, s))
	}
	if c.TCPAddr != "" {
		srv, err := link.ListenTCP(c.TCPAddr, in)
		if err != nil {
			return fail(err)
		}
		opened = append(opened, srv.Listener)
		env.Runnables = append(env.Runnables, srv)
	}
	if c.HTTPAddr != "" {
		srv, err := link.ListenHTTP(c.HTTPAddr, in)
		if err != nil {
			return fail(err)
		}
		opened = append(opened, srv.Listener)
		env.Runnables = append(env.Runnables, srv)
	}
	if len(env.Runnables) == 0 {
		return nil, fmt.Errorf("at least one of serial, tcp, http, mqtt is required")
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// Run serves all transports until a signal is received.
func (e *Env) Run() error {
	return fx.NewRunner().HandleSignals().Go(e.Runnables...).Wait()
}
