package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DefaultInstruction is the system instruction sent with every generation
// unless an instruction file is configured.
const DefaultInstruction = "You are an expert web developer. Based on the user's prompt, generate the complete HTML, CSS, and JavaScript code for a single-page web application. Ensure the CSS is self-contained and does not require external libraries. The JavaScript should be vanilla and also self-contained. Provide the code in a JSON object with three keys: 'html', 'css', and 'js'."

// Instruction holds the current system instruction. When backed by a file it
// can be watched and reloads on change; a failed reload keeps the last good text.
type Instruction struct {
	mu     sync.RWMutex
	text   string
	path   string
	logger *slog.Logger
}

// NewInstruction returns the fixed default instruction when path is empty,
// otherwise the trimmed contents of path.
func NewInstruction(path string, logger *slog.Logger) (*Instruction, error) {
	in := &Instruction{text: DefaultInstruction, path: path, logger: logger}
	if path == "" {
		return in, nil
	}
	if err := in.reload(); err != nil {
		return nil, err
	}
	return in, nil
}

// Text returns the instruction in effect.
func (in *Instruction) Text() string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.text
}

func (in *Instruction) reload() error {
	b, err := os.ReadFile(in.path)
	if err != nil {
		return fmt.Errorf("read instruction file: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return fmt.Errorf("instruction file %s is empty", in.path)
	}
	in.mu.Lock()
	in.text = text
	in.mu.Unlock()
	return nil
}

// Watch reloads the instruction whenever its file is written or replaced,
// until ctx is done. It is a no-op for the built-in instruction. The parent
// directory is watched so editors that save via rename are picked up.
func (in *Instruction) Watch(ctx context.Context) error {
	if in.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create instruction watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(in.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch instruction dir: %w", err)
	}

	go func() {
		defer func() { _ = w.Close() }()
		target := filepath.Clean(in.path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				if err := in.reload(); err != nil {
					in.logger.Warn("instruction reload failed, keeping previous", "path", in.path, "error", err)
					continue
				}
				in.logger.Info("instruction reloaded", "path", in.path)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				in.logger.Warn("instruction watcher error", "error", err)
			}
		}
	}()
	return nil
}
