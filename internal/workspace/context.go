package workspace

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/joe-pages/internal/auth"
	"github.com/joestump/joe-pages/internal/preview"
)

type contextKey struct{}

// WithController returns a context carrying c.
func WithController(ctx context.Context, c *preview.Controller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the controller bound to the request, or nil.
func FromContext(ctx context.Context) *preview.Controller {
	c, _ := ctx.Value(contextKey{}).(*preview.Controller)
	return c
}

// Middleware binds each session to a workspace, allocating a workspace ID on
// the session's first request. It must run inside sm.LoadAndSave.
func (r *Registry) Middleware(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := sm.GetString(req.Context(), auth.SessionWorkspaceKey)
			if id == "" {
				id = NewID()
				sm.Put(req.Context(), auth.SessionWorkspaceKey, id)
			}
			ctx := WithController(req.Context(), r.Get(id))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
