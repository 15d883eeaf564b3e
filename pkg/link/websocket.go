package link

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/siggen/pkg/device"
	fx "github.com/robotalks/siggen/pkg/framework"
	"github.com/robotalks/siggen/pkg/interp"
)

// WebSocketHandler serves the line protocol on websocket connections.
// Each text frame carries one or more lines; responses to a command are
// flushed as one frame.
func WebSocketHandler(in *interp.Interpreter) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.TextFrame
		sess := interp.NewSession(in, conn)
		sess.Name = "ws:" + conn.Request().RemoteAddr
		glog.V(1).Infof("session %s opened", sess.Name)
		if err := sess.Serve(); err != nil {
			glog.V(1).Infof("session %s: %v", sess.Name, err)
		}
		glog.V(1).Infof("session %s closed", sess.Name)
	})
}

// StateHandler replies the current settings in JSON.
func StateHandler(in *interp.Interpreter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(device.NewState(in.Settings())); err != nil {
			glog.Warningf("encode state: %v", err)
		}
	})
}

// HTTPServer exposes /ws and /state.
type HTTPServer struct {
	Server   *http.Server
	Listener net.Listener
}

// ListenHTTP creates an HTTPServer listening on addr.
func ListenHTTP(addr string, in *interp.Interpreter) (*HTTPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", WebSocketHandler(in))
	mux.Handle("/state", StateHandler(in))
	return &HTTPServer{Server: &http.Server{Handler: mux}, Listener: ln}, nil
}

// Name implements framework.Named.
func (s *HTTPServer) Name() string {
	return "http:" + s.Listener.Addr().String()
}

// Run implements framework.Runnable.
func (s *HTTPServer) Run(ctx context.Context) error {
	glog.Infof("serving http on %s", s.Listener.Addr())
	return fx.RunWithContextCloser(ctx, s.Server, func() error {
		err := s.Server.Serve(s.Listener)
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
}
