package interp

import (
	"bufio"
	"context"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/siggen/pkg/framework"
)

// LineEnding terminates every response line, like a serial println.
const LineEnding = "\r\n"

// Session serves the line protocol on a byte stream.
// Commands of one session are executed strictly one at a time.
type Session struct {
	Name   string
	Interp *Interpreter
	Reader io.Reader
	Writer io.Writer
	// Preamble lines are written first, e.g. the startup status.
	Preamble []string
	// Banner prints the greeting and help when the session starts.
	Banner bool

	line *LineBuffer
}

// NewSession creates a Session on a stream.
func NewSession(in *Interpreter, rw io.ReadWriter) *Session {
	return &Session{
		Interp: in,
		Reader: rw,
		Writer: rw,
		line:   NewLineBuffer(DefaultLineCapacity),
	}
}

// WithBanner enables the greeting.
func (s *Session) WithBanner(en bool) *Session {
	s.Banner = en
	return s
}

// Serve processes input until the reader returns an error.
// io.EOF ends the session without error.
func (s *Session) Serve() error {
	if s.line == nil {
		s.line = NewLineBuffer(DefaultLineCapacity)
	}
	w := bufio.NewWriter(s.Writer)
	if err := writeLines(w, s.Preamble); err != nil {
		return err
	}
	if s.Banner {
		if err := writeLines(w, BannerLines()); err != nil {
			return err
		}
	}
	buf := make([]byte, 64)
	for {
		n, err := s.Reader.Read(buf)
		for _, b := range buf[:n] {
			dropped := s.line.Dropped()
			line, ok := s.line.Push(b)
			if !ok {
				if dropped == 0 && s.line.Dropped() > 0 {
					glog.V(2).Infof("session %s: line too long, truncating", s.Name)
				}
				continue
			}
			glog.V(3).Infof("session %s: %q", s.Name, line)
			if err := writeLines(w, s.Interp.Execute(line).Lines); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Run implements framework.Runnable. If the reader is an io.Closer, it's
// closed when ctx is canceled to unblock reading.
func (s *Session) Run(ctx context.Context) error {
	if closer, ok := s.Reader.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, s.Serve)
	}
	return fx.RunWithContext(ctx, s.Serve)
}

func writeLines(w *bufio.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := w.WriteString(line + LineEnding); err != nil {
			return err
		}
	}
	return w.Flush()
}
