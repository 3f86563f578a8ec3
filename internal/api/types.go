package api

import (
	"github.com/joestump/joe-pages/internal/code"
	"github.com/joestump/joe-pages/internal/preview"
)

// GenerateRequest is the request body for POST /api/v1/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt" example:"a red button that shows an alert on click"`
}

// EditRequest is the request body for PUT /api/v1/code/{tab}.
type EditRequest struct {
	Value string `json:"value"`
}

// TabRequest is the request body for PUT /api/v1/tab.
type TabRequest struct {
	Tab string `json:"tab" enums:"HTML,CSS,JS" example:"CSS"`
}

// CodeResponse is the JSON form of a code bundle.
type CodeResponse struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// WorkspaceResponse is the JSON representation of a workspace's state. The
// composed document is fetched from /preview or pushed over /ws.
type WorkspaceResponse struct {
	Code      CodeResponse `json:"code"`
	ActiveTab string       `json:"active_tab" enums:"HTML,CSS,JS"`
	Busy      bool         `json:"busy"`
	Error     string       `json:"error,omitempty"`
	Revision  uint64       `json:"revision"`
}

func newWorkspaceResponse(s preview.State) WorkspaceResponse {
	return WorkspaceResponse{
		Code:      codeResponse(s.Code),
		ActiveTab: s.ActiveTab.String(),
		Busy:      s.Busy,
		Error:     s.Error,
		Revision:  s.Revision,
	}
}

func codeResponse(b code.Bundle) CodeResponse {
	return CodeResponse{HTML: b.HTML, CSS: b.CSS, JS: b.JS}
}
