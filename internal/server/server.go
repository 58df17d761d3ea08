// Package server is the daemon's HTTP boundary: the command endpoint
// callers block on, the SSE push channel the agent subscribes to, the
// result posting endpoint, and the status report.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ox01024/bb-browser/internal/bridge"
)

// DefaultCommandTimeout bounds how long a caller waits for a result.
const DefaultCommandTimeout = 30 * time.Second

// Config holds daemon settings.
type Config struct {
	Addr              string
	CommandTimeout    time.Duration
	HeartbeatInterval time.Duration
}

// Server wires the command router to the pending table and push channel.
type Server struct {
	cfg       Config
	pending   *bridge.PendingTable
	push      *bridge.PushChannel
	log       *log.Logger
	startedAt time.Time
	http      *http.Server
}

// New creates a daemon server. Zero timeout fields get defaults.
func New(cfg Config, logger *log.Logger) *Server {
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:       cfg,
		pending:   bridge.NewPendingTable(cfg.CommandTimeout),
		push:      bridge.NewPushChannel(cfg.HeartbeatInterval, logger),
		log:       logger,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/command", s.handleCommand)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/result", s.handleResult)
	mux.HandleFunc("/status", s.handleStatus)

	s.http = &http.Server{Addr: cfg.Addr, Handler: mux}
	return s
}

// Handler exposes the route mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe blocks serving the daemon endpoints.
func (s *Server) ListenAndServe() error {
	s.log.Info("daemon listening", "addr", s.cfg.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown rejects all pending callers, drops the push connection, and
// stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.pending.Clear()
	s.push.Disconnect()
	return s.http.Shutdown(ctx)
}
