// Package llm turns a free-text page description into a code.Bundle through a
// hosted generative model. Every provider receives the same fixed instruction
// and the same three-field output schema.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joestump/joe-pages/internal/code"
	"github.com/joestump/joe-pages/internal/config"
	"github.com/joestump/joe-pages/internal/metrics"
)

const unknownErrorMessage = "An unknown error occurred while generating code."

// Generator produces a page bundle from a prompt. Implementations make exactly
// one model call per invocation and never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (code.Bundle, error)
}

// GenerationError is the single error type returned by Generate. Message is
// safe to show to the user; Err is the underlying cause, if any.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string { return e.Message }

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError translates a provider or parse failure into a
// GenerationError, keeping the cause's text when there is one.
func NewGenerationError(err error) *GenerationError {
	if err == nil || err.Error() == "" {
		return &GenerationError{Message: unknownErrorMessage, Err: err}
	}
	return &GenerationError{Message: "Failed to generate code from AI: " + err.Error(), Err: err}
}

// completer performs the provider-specific model call and returns the raw text
// of the structured response.
type completer interface {
	complete(ctx context.Context, instruction, prompt string) (string, error)
}

// New creates a Generator for the provider named in cfg.LLM.Provider.
func New(ctx context.Context, cfg *config.Config, instruction *Instruction, logger *slog.Logger) (Generator, error) {
	var (
		c   completer
		err error
	)
	switch cfg.LLM.Provider {
	case "", "gemini":
		c, err = newGeminiCompleter(ctx, cfg)
	case "anthropic":
		c = newAnthropicCompleter(cfg)
	case "openai", "openai-compatible":
		c = newOpenAICompleter(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}
	provider := cfg.LLM.Provider
	if provider == "" {
		provider = "gemini"
	}
	return &generator{
		provider:    provider,
		completer:   c,
		instruction: instruction,
		logger:      logger.With("component", "llm", "provider", provider),
	}, nil
}

type generator struct {
	provider    string
	completer   completer
	instruction *Instruction
	logger      *slog.Logger
}

func (g *generator) Generate(ctx context.Context, prompt string) (code.Bundle, error) {
	start := time.Now()
	defer func() {
		metrics.GenerationDuration.WithLabelValues(g.provider).Observe(time.Since(start).Seconds())
	}()

	text, err := g.completer.complete(ctx, g.instruction.Text(), prompt)
	if err == nil {
		var b code.Bundle
		if b, err = DecodeBundle(text); err == nil {
			metrics.GenerationsTotal.WithLabelValues(g.provider, "success").Inc()
			return b, nil
		}
	}

	metrics.GenerationsTotal.WithLabelValues(g.provider, "error").Inc()
	g.logger.Error("generate code", "error", err, "elapsed", time.Since(start))
	return code.Bundle{}, NewGenerationError(err)
}

// wireBundle mirrors the response schema. Absent or null fields decode to "".
type wireBundle struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

var errNotObject = errors.New("response is not a JSON object")

// DecodeBundle trims and parses a structured model response. Missing fields
// are tolerated; malformed JSON is not.
func DecodeBundle(text string) (code.Bundle, error) {
	var w *wireBundle
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &w); err != nil {
		return code.Bundle{}, fmt.Errorf("decode response JSON: %w", err)
	}
	if w == nil {
		return code.Bundle{}, errNotObject
	}
	return code.Bundle{HTML: w.HTML, CSS: w.CSS, JS: w.JS}, nil
}
