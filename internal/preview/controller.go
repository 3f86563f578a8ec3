// Package preview owns the editable state of one workspace: the code bundle,
// the active tab, the in-flight and error flags, and the debounced preview
// document composed from the bundle.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joestump/joe-pages/internal/code"
	"github.com/joestump/joe-pages/internal/llm"
	"github.com/joestump/joe-pages/internal/metrics"
)

// DefaultQuietPeriod is how long the bundle must stay unchanged before the
// preview is recomposed.
const DefaultQuietPeriod = 500 * time.Millisecond

// DefaultGenerateTimeout bounds one model call.
const DefaultGenerateTimeout = 5 * time.Minute

// EmptyPromptMessage is placed in the error slot when Generate is called
// without a description.
const EmptyPromptMessage = "Please enter a description for the web page."

var (
	// ErrEmptyPrompt is returned by Generate for a blank prompt. The model is
	// not called.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrBusy is returned by Generate while another generation is in flight.
	ErrBusy = errors.New("a generation is already in progress")
	// ErrClosed is returned by Generate after Close.
	ErrClosed = errors.New("workspace closed")
)

// Timer is a pending delayed task.
type Timer interface {
	Stop() bool
}

// Scheduler arms f to run once after d.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	QuietPeriod     time.Duration
	GenerateTimeout time.Duration
	Scheduler       Scheduler
	Logger          *slog.Logger
}

// State is a point-in-time copy of a controller.
type State struct {
	Code      code.Bundle `json:"code"`
	ActiveTab code.Tab    `json:"active_tab"`
	Busy      bool        `json:"busy"`
	Error     string      `json:"error,omitempty"`
	// Revision counts published preview documents.
	Revision uint64 `json:"revision"`
	Document string `json:"-"`
}

// Controller serializes every state transition behind one mutex. The model
// call runs outside the lock; the busy flag keeps it to one at a time.
type Controller struct {
	gen      llm.Generator
	quiet    time.Duration
	timeout  time.Duration
	schedule Scheduler
	logger   *slog.Logger

	mu       sync.Mutex
	bundle   code.Bundle
	tab      code.Tab
	busy     bool
	errMsg   string
	document string
	revision uint64
	pending  Timer
	seq      uint64
	subs     map[chan struct{}]struct{}
	closed   bool
}

// NewController returns a controller holding the empty bundle. The initial
// preview is the composition of the empty bundle.
func NewController(gen llm.Generator, opts Options) *Controller {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	if opts.Scheduler == nil {
		opts.Scheduler = afterFunc
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		gen:      gen,
		quiet:    opts.QuietPeriod,
		timeout:  opts.GenerateTimeout,
		schedule: opts.Scheduler,
		logger:   opts.Logger,
		tab:      code.TabHTML,
		document: code.Compose(code.Bundle{}),
		subs:     make(map[chan struct{}]struct{}),
	}
}

// Generate asks the model for a new bundle. The busy flag is raised before the
// call and lowered in the same critical section that applies the outcome, so
// no observer sees a half-applied result. On success the error slot is
// cleared; on failure the bundle is reset to empty and the error slot holds
// the user-facing message.
//
// The call runs detached from ctx's cancellation: a workspace outlives the
// request that started a generation, so a reload does not abort it. The
// generate timeout bounds it instead.
func (c *Controller) Generate(ctx context.Context, prompt string) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.busy:
		c.mu.Unlock()
		metrics.GenerateRejectedTotal.WithLabelValues("busy").Inc()
		return ErrBusy
	case strings.TrimSpace(prompt) == "":
		c.errMsg = EmptyPromptMessage
		c.mu.Unlock()
		metrics.GenerateRejectedTotal.WithLabelValues("empty_prompt").Inc()
		c.notify()
		return ErrEmptyPrompt
	}
	c.busy = true
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	bundle, err := c.gen.Generate(callCtx, prompt)

	c.mu.Lock()
	if err != nil {
		c.errMsg = errorMessage(err)
		c.replaceLocked(code.Bundle{})
	} else {
		c.errMsg = ""
		c.replaceLocked(bundle)
	}
	c.busy = false
	c.mu.Unlock()
	c.notify()
	return err
}

func errorMessage(err error) string {
	var ge *llm.GenerationError
	if errors.As(err, &ge) {
		return ge.Message
	}
	return llm.NewGenerationError(err).Message
}

// Edit replaces one buffer. The other buffers, the busy flag and the error
// slot are untouched.
func (c *Controller) Edit(tab code.Tab, value string) {
	c.mu.Lock()
	changed := c.replaceLocked(c.bundle.With(tab, value))
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// SelectTab changes which buffer the editor shows.
func (c *Controller) SelectTab(tab code.Tab) {
	c.mu.Lock()
	changed := c.tab != tab
	c.tab = tab
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Code:      c.bundle,
		ActiveTab: c.tab,
		Busy:      c.busy,
		Error:     c.errMsg,
		Revision:  c.revision,
		Document:  c.document,
	}
}

// Subscribe returns a channel that receives a signal after every state change
// and every published preview. Signals coalesce: a slow reader sees one signal
// for a burst and should read Snapshot. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			if _, ok := c.subs[ch]; ok {
				delete(c.subs, ch)
				close(ch)
			}
			c.mu.Unlock()
		})
	}
}

// Close cancels the pending recomposition and closes all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
}

// replaceLocked swaps in next and re-arms the debounce when anything changed.
func (c *Controller) replaceLocked(next code.Bundle) bool {
	if next == c.bundle {
		return false
	}
	c.bundle = next
	c.armLocked()
	return true
}

// armLocked is a single-slot register: it cancels the outstanding task and
// schedules a fresh one. The sequence number discards a task that fired while
// being superseded.
func (c *Controller) armLocked() {
	if c.closed {
		return
	}
	if c.pending != nil {
		c.pending.Stop()
	}
	c.seq++
	seq := c.seq
	c.pending = c.schedule(c.quiet, func() { c.publish(seq) })
}

func (c *Controller) publish(seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.document = code.Compose(c.bundle)
	c.revision++
	rev := c.revision
	c.mu.Unlock()

	metrics.PreviewsComposedTotal.Inc()
	c.logger.Debug("preview published", "revision", rev)
	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
