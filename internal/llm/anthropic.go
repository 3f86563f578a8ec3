package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joestump/joe-pages/internal/config"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5"
	emitToolName          = "emit_web_page"
)

// anthropicCompleter forces a single tool call whose input schema is the
// response schema; the tool input is the structured response.
type anthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropicCompleter(cfg *config.Config) *anthropicCompleter {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.LLM.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.LLM.BaseURL))
	}
	return &anthropicCompleter{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(cfg.LLM.MaxTokens),
	}
}

func (a *anthropicCompleter) complete(ctx context.Context, instruction, prompt string) (string, error) {
	tool := anthropic.ToolParam{
		Name:        emitToolName,
		Description: anthropic.String(schemaDescription),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: schemaProperties(),
			Required:   requiredFields(),
		},
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: instruction}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{{OfTool: &tool}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: emitToolName},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	for _, block := range msg.Content {
		if tu, ok := block.AsAny().(anthropic.ToolUseBlock); ok && tu.Name == emitToolName {
			return string(tu.Input), nil
		}
	}
	return "", fmt.Errorf("no %s tool call in anthropic response", emitToolName)
}
