package http

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Server wraps the router in an http.Server so the process can drain
// in-flight requests on shutdown instead of dropping them.
type Server struct {
	srv *http.Server
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{
		srv: &http.Server{
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run blocks until the listener fails or Shutdown completes. A clean
// shutdown reports nil rather than http.ErrServerClosed.
func (s *Server) Run(addr string) error {
	s.srv.Addr = addr
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
