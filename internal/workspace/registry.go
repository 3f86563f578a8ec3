// Package workspace keeps one preview controller per browser session and
// discards controllers whose session has gone idle.
package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joestump/joe-pages/internal/llm"
	"github.com/joestump/joe-pages/internal/metrics"
	"github.com/joestump/joe-pages/internal/preview"
)

type entry struct {
	ctrl     *preview.Controller
	lastSeen time.Time
}

// Registry maps workspace IDs to controllers. Nothing is persisted; a
// workspace lives only as long as it keeps being used.
type Registry struct {
	gen     llm.Generator
	opts    preview.Options
	idleTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates a registry whose controllers share gen and opts.
func NewRegistry(gen llm.Generator, opts preview.Options, idleTTL time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		gen:     gen,
		opts:    opts,
		idleTTL: idleTTL,
		now:     time.Now,
		logger:  logger.With("component", "workspace"),
		entries: make(map[string]*entry),
	}
}

// NewID returns a fresh workspace ID.
func NewID() string {
	return uuid.NewString()
}

// Get returns the controller for id, creating it on first use.
func (r *Registry) Get(id string) *preview.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{ctrl: preview.NewController(r.gen, r.opts)}
		r.entries[id] = e
		metrics.WorkspacesActive.Inc()
		r.logger.Debug("workspace created", "workspace", id)
	}
	e.lastSeen = r.now()
	return e.ctrl
}

// Len reports how many workspaces are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reap closes and drops workspaces idle for longer than the TTL.
func (r *Registry) Reap() int {
	cutoff := r.now().Add(-r.idleTTL)
	var stale []*preview.Controller

	r.mu.Lock()
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.ctrl)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	if n := len(stale); n > 0 {
		metrics.WorkspacesActive.Sub(float64(n))
		r.logger.Info("reaped idle workspaces", "count", n)
	}
	return len(stale)
}

// Run reaps idle workspaces every interval until ctx is done, then closes
// everything still held.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Reap()
		case <-ctx.Done():
			r.closeAll()
			return
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Close()
	}
	metrics.WorkspacesActive.Sub(float64(len(entries)))
}
