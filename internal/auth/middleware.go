package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
)

type contextKey string

const IdentityContextKey contextKey = "identity"

// Middleware gates requests on a logged-in session. A disabled Middleware
// lets every request through.
type Middleware struct {
	sessions *scs.SessionManager
	enabled  bool
}

// NewMiddleware creates a new auth Middleware. enabled is false when no OIDC
// issuer is configured.
func NewMiddleware(sm *scs.SessionManager, enabled bool) *Middleware {
	return &Middleware{sessions: sm, enabled: enabled}
}

// Enabled reports whether login is required.
func (m *Middleware) Enabled() bool { return m.enabled }

// RequireAuth redirects browsers to /auth/login when no identity is in the
// session; API and websocket requests get 401 instead. On success the
// *Identity is set on the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}
		subject := m.sessions.GetString(r.Context(), SessionSubjectKey)
		if subject == "" {
			if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/ws" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/auth/login?redirect="+r.URL.RequestURI(), http.StatusFound)
			return
		}

		id := &Identity{
			Subject: subject,
			Email:   m.sessions.GetString(r.Context(), SessionEmailKey),
			Name:    m.sessions.GetString(r.Context(), SessionNameKey),
		}
		ctx := context.WithValue(r.Context(), IdentityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext retrieves the logged-in identity from the context.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(IdentityContextKey).(*Identity)
	return id
}
