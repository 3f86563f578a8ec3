package handler

import (
	"io"
	"net/http"

	"github.com/joestump/joe-pages/internal/code"
	"github.com/joestump/joe-pages/internal/preview"
	"github.com/joestump/joe-pages/internal/workspace"
)

// previewCSP isolates the generated page: scripts run, but it cannot navigate
// the editor, open popups or submit forms.
const previewCSP = "sandbox allow-scripts allow-same-origin"

// EditorPage is the template data for the editor.
type EditorPage struct {
	BasePage
	State preview.State
	Tabs  []code.Tab
}

// ActiveCode returns the buffer shown in the editor on first paint.
func (p EditorPage) ActiveCode() string {
	return p.State.Code.Get(p.State.ActiveTab)
}

// EditorHandler serves the editor page and the preview document.
type EditorHandler struct {
	authEnabled bool
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(authEnabled bool) *EditorHandler {
	return &EditorHandler{authEnabled: authEnabled}
}

// Index serves GET /.
func (h *EditorHandler) Index(w http.ResponseWriter, r *http.Request) {
	c := workspace.FromContext(r.Context())
	if c == nil {
		http.Error(w, "no workspace", http.StatusInternalServerError)
		return
	}
	render(w, "editor.html", EditorPage{
		BasePage: newBasePage(r, h.authEnabled),
		State:    c.Snapshot(),
		Tabs:     code.Tabs,
	})
}

// Preview serves GET /preview: the latest published document, never the
// live buffers.
func (h *EditorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	c := workspace.FromContext(r.Context())
	if c == nil {
		http.Error(w, "no workspace", http.StatusInternalServerError)
		return
	}
	s := c.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", previewCSP)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Preview-Revision", formatRevision(s.Revision))
	_, _ = io.WriteString(w, s.Document)
}
