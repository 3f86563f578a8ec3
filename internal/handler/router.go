package handler

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/joestump/joe-pages/docs/swagger"
	"github.com/joestump/joe-pages/internal/api"
	"github.com/joestump/joe-pages/internal/auth"
	"github.com/joestump/joe-pages/internal/workspace"
	"github.com/joestump/joe-pages/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthHandlers   *auth.Handlers // nil when login is disabled
	AuthMiddleware *auth.Middleware
	Registry       *workspace.Registry
	Logger         *slog.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// Static assets (embedded). Use fs.Sub so the file server sees
	// css/app.css and js/app.js directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	r.Get("/healthz", Healthz(deps.Registry))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/docs/*", httpSwagger.WrapHandler)
	r.Post("/theme", NewThemeHandler().Toggle)

	sm := deps.SessionManager
	bindWorkspace := deps.Registry.Middleware(sm)

	// The socket outlives the request, so the session is loaded but never
	// written back. It must belong to a session that has opened the editor.
	socket := NewSocketHandler(deps.Logger)
	r.With(
		loadSession(sm),
		deps.AuthMiddleware.RequireAuth,
		requireWorkspace(sm),
		bindWorkspace,
	).Get("/ws", socket.Serve)

	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave)

		if deps.AuthHandlers != nil {
			r.Get("/auth/login", deps.AuthHandlers.Login)
			r.Get("/auth/callback", deps.AuthHandlers.Callback)
			r.Post("/auth/logout", deps.AuthHandlers.Logout)
		}

		editor := NewEditorHandler(deps.AuthMiddleware.Enabled())
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(bindWorkspace)

			r.Get("/", editor.Index)
			r.Get("/preview", editor.Preview)
			r.Mount("/api/v1", api.NewAPIRouter(api.Deps{Logger: deps.Logger}))
		})
	})

	return r
}

// loadSession loads the session named by the request cookie into the context
// without the commit step of LoadAndSave.
func loadSession(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(sm.Cookie.Name); err == nil {
				token = c.Value
			}
			ctx, err := sm.Load(r.Context(), token)
			if err != nil {
				sm.ErrorFunc(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireWorkspace(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sm.GetString(r.Context(), auth.SessionWorkspaceKey) == "" {
				http.Error(w, "no workspace for this session", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
