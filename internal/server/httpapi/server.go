// Package httpapi exposes the authentication service over HTTP. It is the
// only layer that translates error kinds into status codes; everything below
// it returns typed errors.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avolkov/authkeeper/internal/logging"
	"github.com/avolkov/authkeeper/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, us *services.UserService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
