package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/joe-pages/internal/auth"
	"github.com/joestump/joe-pages/internal/code"
	"github.com/joestump/joe-pages/internal/preview"
	"github.com/joestump/joe-pages/internal/workspace"
)

type cannedGenerator struct {
	bundle code.Bundle
}

func (g cannedGenerator) Generate(context.Context, string) (code.Bundle, error) {
	return g.bundle, nil
}

var redButton = code.Bundle{
	HTML: "<button id=b>Click</button>",
	CSS:  "#b{color:red}",
	JS:   "document.getElementById('b').onclick=()=>alert('hi')",
}

type testEnv struct {
	server   *httptest.Server
	client   *http.Client
	registry *workspace.Registry
}

func newTestEnv(t *testing.T, authEnabled bool) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sm, err := auth.NewSessionManager("memory", nil, time.Hour, false)
	require.NoError(t, err)

	reg := workspace.NewRegistry(cannedGenerator{bundle: redButton},
		preview.Options{QuietPeriod: 10 * time.Millisecond, Logger: logger}, time.Hour, logger)

	srv := httptest.NewServer(NewRouter(Deps{
		SessionManager: sm,
		AuthMiddleware: auth.NewMiddleware(sm, authEnabled),
		Registry:       reg,
		Logger:         logger,
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{
		server:   srv,
		client:   &http.Client{Jar: jar, CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }},
		registry: reg,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func TestEditorPage(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := readBody(t, res)

	assert.Contains(t, body, `sandbox="allow-scripts allow-same-origin"`)
	assert.Contains(t, body, `id="prompt-form"`)
	for _, tab := range []string{"HTML", "CSS", "JS"} {
		assert.Contains(t, body, `data-tab="`+tab+`"`)
	}
	assert.Equal(t, 1, env.registry.Len())

	// Same session, same workspace.
	env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, 1, env.registry.Len())
}

func TestPreview_SandboxHeader(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodGet, "/preview", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, previewCSP, res.Header.Get("Content-Security-Policy"))
	assert.Equal(t, "0", res.Header.Get("X-Preview-Revision"))
	assert.Equal(t, code.Compose(code.Bundle{}), readBody(t, res))
}

func TestPreview_FollowsGenerate(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodPost, "/api/v1/generate", `{"prompt":"a red button"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	want := code.Compose(redButton)
	assert.Eventually(t, func() bool {
		res := env.do(t, http.MethodGet, "/preview", "")
		return readBody(t, res) == want
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var h healthResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Build.Version)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, readBody(t, res), "joepages_")
}

func TestThemeToggle(t *testing.T) {
	env := newTestEnv(t, false)

	req, _ := http.NewRequest(http.MethodPost, env.server.URL+"/theme", strings.NewReader("theme=dark"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := env.client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	page := readBody(t, env.do(t, http.MethodGet, "/", ""))
	assert.Contains(t, page, `data-theme="dark"`)

	req, _ = http.NewRequest(http.MethodPost, env.server.URL+"/theme", strings.NewReader("theme=neon"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err = env.client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestAuthGate(t *testing.T) {
	env := newTestEnv(t, true)

	res := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Location"), "/auth/login"))

	res = env.do(t, http.MethodGet, "/api/v1/workspace", "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, 0, env.registry.Len())
}

func TestSocket_RequiresWorkspace(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodGet, "/ws", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSocket_PushesStateAndPreview(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(t, http.MethodGet, "/", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	header := http.Header{}
	for _, c := range env.client.Jar.Cookies(mustParseURL(t, env.server.URL)) {
		header.Add("Cookie", c.String())
	}
	conn, _, err := websocket.Dial(ctx, u, &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	defer conn.CloseNow()

	var msg socketMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "state", msg.Type)
	require.NotNil(t, msg.State)
	assert.Equal(t, code.TabHTML, msg.State.ActiveTab)

	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "preview", msg.Type)
	assert.Equal(t, code.Compose(code.Bundle{}), msg.Document)

	res := env.do(t, http.MethodPut, "/api/v1/code/html", `{"value":"<h1>hi</h1>"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	for {
		msg = socketMessage{}
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.Type == "preview" {
			break
		}
	}
	assert.Equal(t, uint64(1), msg.Revision)
	assert.Equal(t, code.Compose(code.Bundle{HTML: "<h1>hi</h1>"}), msg.Document)
}

func TestStaticEditorScript_SerializesEdits(t *testing.T) {
	env := newTestEnv(t, false)

	res := env.do(t, http.MethodGet, "/static/js/app.js", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	js := readBody(t, res)

	// Every edit goes through the per-tab outbox; no input handler issues
	// its own PUT.
	assert.Equal(t, 1, strings.Count(js, `api("PUT", "/code/"`))
	assert.Contains(t, js, "outbox.pending[tab] = editor.value;")
	assert.Contains(t, js, "if (outbox.inflight[tab] ||")
	assert.Contains(t, js, "if (!unsynced(tab)) state.code[tab] = server[tab];")
}
