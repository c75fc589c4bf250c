package middleware

import (
	"net/http"

	"benchshare/internal/session"

	"go.uber.org/zap"
)

// WithSession loads the visitor's session and stores it in the request context.
func WithSession(manager *session.Manager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, err := manager.Load(w, r)
			if err != nil {
				logger.Error("session load failed", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), st)))
		})
	}
}
