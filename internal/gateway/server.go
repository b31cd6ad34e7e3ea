// Package gateway serves the interview HTTP API and the candidate audio socket.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/hooks"
	"github.com/soyeahso/evaluet/internal/interview"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/soyeahso/evaluet/internal/version"
)

// SessionStore is the persistence the HTTP API needs.
type SessionStore interface {
	CreateSession(ctx context.Context, sess *domain.Session) error
	LoadSession(ctx context.Context, id string) (*domain.Session, error)
	LoadReport(ctx context.Context, sessionID string) (*domain.Report, error)
}

// SessionRunner runs one live interview over a client socket.
type SessionRunner interface {
	Serve(ctx context.Context, sessionID string, conn interview.ClientConn) (interview.EndReason, error)
}

// Server is the evaluet HTTP + WebSocket server.
type Server struct {
	cfg     *config.Config
	store   SessionStore
	runner  SessionRunner
	roster  *domain.Roster
	hooks   *hooks.Manager
	log     *logging.Logger
	conns   *connRegistry
	version string

	// sessions outlive their HTTP handlers' contexts.
	baseCtx  context.Context
	sessions sync.WaitGroup

	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithHooks sets the hook manager for lifecycle events.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// WithInterviewers sets the catalog candidates choose an interviewer from.
func WithInterviewers(r *domain.Roster) ServerOption {
	return func(s *Server) {
		s.roster = r
	}
}

// New creates a gateway server.
func New(cfg *config.Config, store SessionStore, runner SessionRunner, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		runner:  runner,
		log:     log.Sub("gateway"),
		conns:   newConnRegistry(log.Sub("gateway")),
		version: version.Version,
		baseCtx: context.Background(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:   16 * 1024,
			WriteBufferSize:  16 * 1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      checkWebSocketOrigin(cfg.Server.AllowedOrigins),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return net.JoinHostPort(host, fmt.Sprint(cfg.Port))
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening for HTTP and WebSocket connections.
// It blocks until the context is cancelled or an error occurs, then waits
// for running interviews to persist their transcripts.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Server)
	s.baseCtx = context.WithoutCancel(ctx)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.startedAt = time.Now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Server.Bind).
		Str("version", s.version).
		Msg("server ready")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventServerStart, map[string]any{"addr": ln.Addr().String()})
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.log.Info().Int("sessions", s.conns.Count()).Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
		s.conns.CloseAll()
		s.waitSessions(shutdownCtx)
		if s.hooks != nil {
			s.hooks.Emit(shutdownCtx, hooks.EventServerStop, nil)
		}
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

func (s *Server) waitSessions(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("gave up waiting for interviews to finish")
	}
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
