package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// StopWaitTime bounds the graceful shutdown of the HTTP server.
const StopWaitTime = 5 * time.Second

// Server serves a metrics handler until its context is cancelled.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a server for handler on addr.
// If logger is nil, logging is disabled.
func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		server: &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(l)
	}()

	if s.logger != nil {
		s.logger.Info("metrics server listening", "address", l.Addr().String())
	}

	select {
	case <-ctx.Done():
		return s.stop()
	case err := <-errCh:
		return err
	}
}

func (s *Server) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), StopWaitTime)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("metrics server stopped")
	}
	return nil
}
