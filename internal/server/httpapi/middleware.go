package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/authkeeper/internal/server/auth"
	"github.com/avolkov/authkeeper/internal/server/models"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const ctxKeyActor contextKey = "actor"

const bearerPrefix = "Bearer "

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error(r.Context(), "panic recovered in HTTP handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates the bearer access token and resolves its subject
// to a live user record, which handlers retrieve with actorFromContext. A
// refresh-typed token never passes this gate.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			writeUnauthorized(w, "missing token")
			return
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(header, bearerPrefix), auth.TokenTypeAccess, s.jwtSecret)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		actor, err := s.users.GetByID(r.Context(), claims.Subject)
		if err != nil {
			// the subject may have been deleted since the token was minted
			writeUnauthorized(w, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyActor, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) (*models.User, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(*models.User)
	return actor, ok
}
