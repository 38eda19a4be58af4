package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"time"

	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	srv *nethttp.Server
	log *logger.Logger
}

func NewServer(addr string, handler nethttp.Handler, log *logger.Logger) *Server {
	return &Server{
		srv: &nethttp.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log.With("component", "HTTPServer"),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
