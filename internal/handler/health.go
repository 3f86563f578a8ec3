package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/joestump/joe-pages/internal/build"
	"github.com/joestump/joe-pages/internal/workspace"
)

type healthResponse struct {
	Status     string     `json:"status"`
	Build      build.Info `json:"build"`
	Workspaces int        `json:"workspaces"`
}

// Healthz serves GET /healthz.
func Healthz(reg *workspace.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:     "ok",
			Build:      build.Current(),
			Workspaces: reg.Len(),
		})
	}
}

func formatRevision(rev uint64) string {
	return strconv.FormatUint(rev, 10)
}
