package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/joestump/joe-pages/internal/config"
)

const defaultGeminiModel = "gemini-2.5-pro"

type geminiCompleter struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func newGeminiCompleter(ctx context.Context, cfg *config.Config) (*geminiCompleter, error) {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.LLM.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.LLM.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiCompleter{client: client, model: model, maxTokens: int32(cfg.LLM.MaxTokens)}, nil
}

func geminiSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(schemaFields))
	order := make([]string, 0, len(schemaFields))
	for _, f := range schemaFields {
		props[f.Name] = &genai.Schema{Type: genai.TypeString, Description: f.Description}
		order = append(order, f.Name)
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Description:      schemaDescription,
		Properties:       props,
		Required:         requiredFields(),
		PropertyOrdering: order,
	}
}

func (g *geminiCompleter) complete(ctx context.Context, instruction, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(),
		MaxOutputTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}
