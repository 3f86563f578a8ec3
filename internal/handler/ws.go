package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/joestump/joe-pages/internal/metrics"
	"github.com/joestump/joe-pages/internal/preview"
	"github.com/joestump/joe-pages/internal/workspace"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// socketMessage is one frame pushed to the editor. "state" frames carry the
// workspace without the document; "preview" frames carry a new document.
type socketMessage struct {
	Type     string         `json:"type"`
	State    *preview.State `json:"state,omitempty"`
	Document string         `json:"document,omitempty"`
	Revision uint64         `json:"revision"`
}

// SocketHandler pushes workspace changes to the editor page.
type SocketHandler struct {
	logger *slog.Logger
	// pingPeriod is overridable in tests.
	pingPeriod time.Duration
}

// NewSocketHandler creates a new SocketHandler.
func NewSocketHandler(logger *slog.Logger) *SocketHandler {
	return &SocketHandler{logger: logger.With("component", "ws"), pingPeriod: pingPeriod}
}

// Serve handles GET /ws. A state frame follows every change; a preview frame
// follows every new revision. The first pair is sent on connect.
func (h *SocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	c := workspace.FromContext(r.Context())
	if c == nil {
		http.Error(w, "no workspace", http.StatusInternalServerError)
		return
	}

	// Accept verifies that Origin matches Host.
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	metrics.PreviewSocketsActive.Inc()
	defer metrics.PreviewSocketsActive.Dec()

	// Client frames are ignored; CloseRead cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	signals, unsubscribe := c.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	var sent uint64
	first := true
	push := func() error {
		s := c.Snapshot()
		if err := h.write(ctx, conn, socketMessage{Type: "state", State: &s, Revision: s.Revision}); err != nil {
			return err
		}
		if first || s.Revision != sent {
			if err := h.write(ctx, conn, socketMessage{Type: "preview", Document: s.Document, Revision: s.Revision}); err != nil {
				return err
			}
			sent, first = s.Revision, false
		}
		return nil
	}

	if err := push(); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "workspace closed")
				return
			}
			if err := push(); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *SocketHandler) write(ctx context.Context, conn *websocket.Conn, msg socketMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
