// Package profiler serves pprof and a state dump on localhost for
// diagnosing a running TUI.
package profiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/pear/internal/core/logging"
	"github.com/hay-kot/pear/internal/pear"
)

// StateSource provides the snapshot served at /debug/state.
type StateSource interface {
	Snapshot() pear.Snapshot
}

type Server struct {
	httpServer *http.Server
	listener   net.Listener
	port       int
	log        zerolog.Logger
}

// New creates a server for port. Port 0 picks a free port.
func New(port int, src StateSource, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/state", stateHandler(src))

	return &Server{
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		port: port,
		log:  logging.Sub(logger, "profiler"),
	}
}

type stateDump struct {
	Loaded     bool   `json:"loaded"`
	Tasks      int    `json:"tasks"`
	Remaining  int    `json:"remaining"`
	Users      int    `json:"users"`
	Background string `json:"background"`
	Image      bool   `json:"uploadedImage"`
	Drag       string `json:"drag"`
	DragSource string `json:"dragSource,omitempty"`
	DragTarget string `json:"dragTarget,omitempty"`
}

// stateHandler reports counts and drag state, never task text.
func stateHandler(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := src.Snapshot()
		dump := stateDump{
			Loaded:     snap.Loaded,
			Tasks:      len(snap.Tasks),
			Remaining:  snap.Remaining,
			Users:      len(snap.Users),
			Background: string(snap.Background.Descriptor.Kind) + ":" + snap.Background.Descriptor.Name,
			Image:      snap.Background.UploadedImage != nil,
			Drag:       snap.Drag.Phase.String(),
			DragSource: snap.Drag.Source,
			DragTarget: snap.Drag.Target,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dump)
	}
}

// Start listens on localhost and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	actualPort := listener.Addr().(*net.TCPAddr).Port
	s.log.Info().Int("port", actualPort).Msg("starting profiler server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("profiler server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down profiler server")
	return s.httpServer.Shutdown(ctx)
}
