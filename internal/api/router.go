package api

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Logger *slog.Logger
}

// NewAPIRouter creates a chi sub-router for /api/v1. It must be mounted
// behind the workspace middleware, which binds the caller's controller.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(jsonContentType)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ws := &workspaceAPIHandler{logger: logger.With("component", "api")}

	r.Get("/workspace", ws.Show)
	r.Group(func(r chi.Router) {
		r.Use(requireJSONBody)
		r.Post("/generate", ws.Generate)
		r.Put("/code/{tab}", ws.Edit)
		r.Put("/tab", ws.SelectTab)
	})

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requireJSONBody rejects state-changing requests that are not JSON, which
// also keeps cross-site HTML forms from reaching them.
func requireJSONBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json", "UNSUPPORTED_MEDIA_TYPE")
			return
		}
		next.ServeHTTP(w, r)
	})
}
