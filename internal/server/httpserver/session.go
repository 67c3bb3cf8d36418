package httpserver

import (
	"net/http"
	"strings"
	"sync"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/core/service"
	"github.com/foteam/sessionstore/internal/server/config"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
)

// Sessions starts a session for every request, attaches it to the
// context and saves it once the handler returns.
//
// The cookie is emitted lazily, right before the response header goes
// out, so handlers that regenerate or destroy the session still produce
// the right Set-Cookie. Nothing is sent when the client already holds the
// current id.
func Sessions(m *service.Manager, cookie config.CookieConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var incoming string
			if c, err := r.Cookie(cookie.Name); err == nil {
				incoming = c.Value
			}

			s, err := m.Start(r.Context(), incoming)
			if err != nil {
				logger.L(r.Context()).Error("failed to start session", "error", err)
				writeError(w, http.StatusInternalServerError, domain.ErrInternalServer.Code, "session unavailable")
				return
			}

			sw := &sessionWriter{
				ResponseWriter: w,
				session:        s,
				cookie:         cookie,
				incoming:       incoming,
			}
			next.ServeHTTP(sw, r.WithContext(service.WithSession(r.Context(), s)))
			sw.emitCookie()

			if !s.Save(r.Context()) {
				logger.L(r.Context()).Warn("failed to save session", "session_id", s.ID())
			}
		})
	}
}

type sessionWriter struct {
	http.ResponseWriter
	session  *service.Session
	cookie   config.CookieConfig
	incoming string
	once     sync.Once
}

func (w *sessionWriter) WriteHeader(code int) {
	w.emitCookie()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.emitCookie()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *sessionWriter) emitCookie() {
	w.once.Do(func() {
		c := &http.Cookie{
			Name:     w.cookie.Name,
			Path:     w.cookie.Path,
			Domain:   w.cookie.Domain,
			Secure:   w.cookie.Secure,
			HttpOnly: true,
			SameSite: sameSite(w.cookie.SameSite),
		}
		switch {
		case w.session.Destroyed():
			if w.incoming == "" {
				return
			}
			c.MaxAge = -1
		case w.session.ID() != w.incoming:
			c.Value = w.session.ID()
		default:
			return
		}
		http.SetCookie(w.ResponseWriter, c)
	})
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
