// Package link serves the line protocol over byte-stream transports:
// a serial device, the process's stdio, TCP connections and websockets.
package link

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	fx "github.com/robotalks/siggen/pkg/framework"
	"github.com/robotalks/siggen/pkg/interp"
)

// Stdio is an io.ReadWriteCloser on stdin/stdout.
type Stdio struct{}

// Read implements io.Reader.
func (Stdio) Read(p []byte) (int, error) { return os.Stdin.Read(p) }

// Write implements io.Writer.
func (Stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

// Close implements io.Closer.
func (Stdio) Close() error { return os.Stdin.Close() }

// DefaultBaud is the baud rate of the generator's serial console.
const DefaultBaud = 115200

// OpenSerial opens a serial device, e.g. /dev/ttyUSB0, in 8N1 raw mode.
func OpenSerial(path string, baud int) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: path, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %v", path, err)
	}
	return port, nil
}

// Stream serves a single long-lived stream, like a serial port.
type Stream struct {
	Name   string
	Interp *interp.Interpreter
	RW     io.ReadWriter
	Banner bool
	// Preamble is written before the banner.
	Preamble []string
}

// Run implements framework.Runnable.
func (s *Stream) Run(ctx context.Context) error {
	glog.Infof("serving %s", s.Name)
	sess := interp.NewSession(s.Interp, s.RW).WithBanner(s.Banner)
	sess.Name = s.Name
	sess.Preamble = s.Preamble
	return sess.Run(ctx)
}

// TCPServer serves one session per accepted connection.
type TCPServer struct {
	Interp   *interp.Interpreter
	Listener net.Listener

	conns map[net.Conn]struct{}
	lock  sync.Mutex
}

// ListenTCP creates a TCPServer listening on addr.
func ListenTCP(addr string, in *interp.Interpreter) (*TCPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPServer{Interp: in, Listener: ln}, nil
}

// Addr returns the listening address.
func (s *TCPServer) Addr() net.Addr {
	return s.Listener.Addr()
}

// Name implements framework.Named.
func (s *TCPServer) Name() string {
	return "tcp:" + s.Addr().String()
}

// Run implements framework.Runnable. Canceling ctx closes the listener
// and all open connections.
func (s *TCPServer) Run(ctx context.Context) error {
	glog.Infof("listening on %s", s.Addr())
	defer s.closeAll()
	return fx.RunWithContextCloser(ctx, s.Listener, func() error {
		for {
			conn, err := s.Listener.Accept()
			if err != nil {
				return err
			}
			go s.serve(conn)
		}
	})
}

func (s *TCPServer) serve(conn net.Conn) {
	s.lock.Lock()
	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	s.conns[conn] = struct{}{}
	s.lock.Unlock()
	defer func() {
		s.lock.Lock()
		delete(s.conns, conn)
		s.lock.Unlock()
		conn.Close()
	}()

	sess := interp.NewSession(s.Interp, conn).WithBanner(true)
	sess.Name = conn.RemoteAddr().String()
	glog.V(1).Infof("session %s opened", sess.Name)
	if err := sess.Serve(); err != nil {
		glog.V(1).Infof("session %s: %v", sess.Name, err)
	}
	glog.V(1).Infof("session %s closed", sess.Name)
}

func (s *TCPServer) closeAll() {
	s.lock.Lock()
	defer s.lock.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
