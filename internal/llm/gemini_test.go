package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/joe-pages/internal/code"
	"github.com/joestump/joe-pages/internal/config"
)

func newGeminiTestServer(t *testing.T, status int, body string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+defaultGeminiModel+":generateContent"), r.URL.Path)
		assert.Equal(t, "gemini-test-key", r.Header.Get("X-Goog-Api-Key"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGeminiTestGenerator(t *testing.T, baseURL string) Generator {
	t.Helper()
	cfg := &config.Config{}
	cfg.LLM.Provider = "gemini"
	cfg.LLM.APIKey = "gemini-test-key"
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.MaxTokens = 4096

	logger := discardLogger()
	instruction, err := NewInstruction("", logger)
	require.NoError(t, err)
	gen, err := New(context.Background(), cfg, instruction, logger)
	require.NoError(t, err)
	return gen
}

// geminiReply wraps text the way the generateContent endpoint returns it.
func geminiReply(t *testing.T, text string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
	require.NoError(t, err)
	return string(b)
}

func object(t *testing.T, v any, key string) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected object around %q, got %T", key, v)
	child, ok := m[key].(map[string]any)
	require.True(t, ok, "missing object %q in %v", key, m)
	return child
}

func TestGemini_RequestShape(t *testing.T) {
	var got map[string]any
	srv := newGeminiTestServer(t, http.StatusOK,
		geminiReply(t, `{"html":"<button id=b>Click</button>","css":"#b{color:red}","js":"alert(1)"}`), &got)

	b, err := newGeminiTestGenerator(t, srv.URL).Generate(context.Background(), "a red button")
	require.NoError(t, err)
	assert.Equal(t, code.Bundle{HTML: "<button id=b>Click</button>", CSS: "#b{color:red}", JS: "alert(1)"}, b)

	contents, _ := got["contents"].([]any)
	require.Len(t, contents, 1)
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 1)
	assert.Equal(t, "a red button", parts[0].(map[string]any)["text"])

	sys := object(t, got, "systemInstruction")
	sysParts, _ := sys["parts"].([]any)
	require.Len(t, sysParts, 1)
	assert.Equal(t, DefaultInstruction, sysParts[0].(map[string]any)["text"])

	genCfg := object(t, got, "generationConfig")
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.EqualValues(t, 4096, genCfg["maxOutputTokens"])

	schema := object(t, genCfg, "responseSchema")
	assert.Equal(t, "OBJECT", schema["type"])
	assert.ElementsMatch(t, []any{"html", "css", "js"}, schema["required"])
	props := object(t, schema, "properties")
	require.Len(t, props, 3)
	for _, f := range schemaFields {
		p := object(t, props, f.Name)
		assert.Equal(t, "STRING", p["type"], f.Name)
		assert.Equal(t, f.Description, p["description"], f.Name)
	}
}

func TestGemini_MissingFieldsAreEmpty(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusOK, geminiReply(t, `  {"html":"<p>hi</p>"}  `), nil)

	b, err := newGeminiTestGenerator(t, srv.URL).Generate(context.Background(), "a greeting")
	require.NoError(t, err)
	assert.Equal(t, code.Bundle{HTML: "<p>hi</p>"}, b)
}

func TestGemini_EmptyText(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusOK, `{"candidates":[]}`, nil)

	_, err := newGeminiTestGenerator(t, srv.URL).Generate(context.Background(), "anything")

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Failed to generate code from AI: empty response from gemini", ge.Message)
}

func TestGemini_MalformedJSON(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusOK, geminiReply(t, `{"html": "<p>`), nil)

	_, err := newGeminiTestGenerator(t, srv.URL).Generate(context.Background(), "anything")

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.True(t, strings.HasPrefix(ge.Message, "Failed to generate code from AI: "), ge.Message)
}

func TestGemini_QuotaExceeded(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`, nil)

	_, err := newGeminiTestGenerator(t, srv.URL).Generate(context.Background(), "anything")

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Message, "quota exceeded")
}
