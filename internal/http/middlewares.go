package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/attendbot/internal/sessions"
)

type Middleware func(http.HandlerFunc) http.HandlerFunc

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func WithAccessLogs(logger *slog.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next(rec, r)
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		}
	}
}

// WithSession makes sure every request carries a chat session, reopening
// sessions that were lost on restart.
func WithSession(sessionsService *sessions.Service) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var session *sessions.Session
			if id, ok := sessions.FromCookies(r.Cookies()); ok {
				session = sessionsService.OpenWithID(r.Context(), id)
			} else {
				session = sessionsService.Open(r.Context())
			}
			for _, cookie := range sessions.ToCookies(session.ID, r.TLS != nil) {
				w.Header().Add("Set-Cookie", cookie.String())
			}
			next(w, r.WithContext(sessions.NewContext(r.Context(), session.ID)))
		}
	}
}
