package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-pages/internal/code"
	"github.com/joestump/joe-pages/internal/llm"
	"github.com/joestump/joe-pages/internal/preview"
	"github.com/joestump/joe-pages/internal/workspace"
)

// maxBodyBytes bounds edit and prompt payloads.
const maxBodyBytes = 4 << 20

type workspaceAPIHandler struct {
	logger *slog.Logger
}

func controller(w http.ResponseWriter, r *http.Request) *preview.Controller {
	c := workspace.FromContext(r.Context())
	if c == nil {
		writeError(w, http.StatusInternalServerError, "no workspace bound to request", "NO_WORKSPACE")
	}
	return c
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	return true
}

// Show returns the caller's workspace.
// GET /api/v1/workspace
//
// @Summary      Get workspace
// @Description  Returns the code bundle, active tab, busy flag, error slot and preview revision
// @Tags         Workspace
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  WorkspaceResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /workspace [get]
func (h *workspaceAPIHandler) Show(w http.ResponseWriter, r *http.Request) {
	c := controller(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, newWorkspaceResponse(c.Snapshot()))
}

// Generate replaces the workspace's code with a model generation. The call
// blocks until the model answers or the generate timeout expires; a client
// that goes away does not abort it.
// POST /api/v1/generate
//
// @Summary      Generate a page
// @Description  Sends the prompt to the configured model and replaces all three buffers with the result. On failure the buffers are cleared.
// @Tags         Workspace
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        request  body      GenerateRequest  true  "Page description"
// @Success      200      {object}  WorkspaceResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Router       /generate [post]
func (h *workspaceAPIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	c := controller(w, r)
	if c == nil {
		return
	}
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := c.Generate(r.Context(), req.Prompt)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newWorkspaceResponse(c.Snapshot()))
	case errors.Is(err, preview.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, preview.EmptyPromptMessage, "EMPTY_PROMPT")
	case errors.Is(err, preview.ErrBusy):
		h.logger.Info("generate rejected", "reason", "busy")
		writeError(w, http.StatusConflict, "a generation is already in progress", "BUSY")
	case errors.Is(err, preview.ErrClosed):
		writeError(w, http.StatusGone, "workspace expired, reload the page", "WORKSPACE_CLOSED")
	default:
		var ge *llm.GenerationError
		if !errors.As(err, &ge) {
			ge = llm.NewGenerationError(err)
		}
		writeError(w, http.StatusBadGateway, ge.Message, "GENERATION_FAILED")
	}
}

// Edit replaces one buffer of the workspace's code.
// PUT /api/v1/code/{tab}
//
// @Summary      Edit a buffer
// @Description  Replaces the HTML, CSS or JS buffer. The other buffers are unchanged.
// @Tags         Workspace
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        tab      path      string       true  "Buffer"  Enums(HTML, CSS, JS)
// @Param        request  body      EditRequest  true  "New buffer contents"
// @Success      200      {object}  WorkspaceResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /code/{tab} [put]
func (h *workspaceAPIHandler) Edit(w http.ResponseWriter, r *http.Request) {
	c := controller(w, r)
	if c == nil {
		return
	}
	tab, err := code.ParseTab(chi.URLParam(r, "tab"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_TAB")
		return
	}
	var req EditRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c.Edit(tab, req.Value)
	writeJSON(w, http.StatusOK, newWorkspaceResponse(c.Snapshot()))
}

// SelectTab changes the buffer shown in the editor.
// PUT /api/v1/tab
//
// @Summary      Select editor tab
// @Tags         Workspace
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        request  body      TabRequest  true  "Tab to show"
// @Success      200      {object}  WorkspaceResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /tab [put]
func (h *workspaceAPIHandler) SelectTab(w http.ResponseWriter, r *http.Request) {
	c := controller(w, r)
	if c == nil {
		return
	}
	var req TabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tab, err := code.ParseTab(req.Tab)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_TAB")
		return
	}
	c.SelectTab(tab)
	writeJSON(w, http.StatusOK, newWorkspaceResponse(c.Snapshot()))
}
