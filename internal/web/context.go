package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/usertable/internal/logging"
	"github.com/JonMunkholm/usertable/internal/session"
)

type sessionKey struct{}

func contextWithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// sessionFrom returns the session attached by withSession.
func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

// withSession resolves the session cookie, issuing a new session (and
// starting its load) when the cookie is absent or stale.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := s.cfg.Session.CookieName

		var value string
		if c, err := r.Cookie(name); err == nil {
			value = c.Value
		}
		sess, created := s.sessions.Resolve(value)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    sess.ID.String(),
				Path:     s.cookiePath(),
				HttpOnly: true,
				Secure:   s.cfg.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := logging.WithSessionID(r.Context(), sess.ID.String())
		ctx = contextWithSession(ctx, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) cookiePath() string {
	if s.base == "" {
		return "/"
	}
	return s.base
}
