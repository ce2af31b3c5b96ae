package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/dispatch"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	name string
	data string
}

// readEvent reads the next named event, skipping comment frames.
func readEvent(t *testing.T, r *bufio.Reader) event {
	t.Helper()
	var ev event
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

type fixture struct {
	handler *Handler
	server  *httptest.Server
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"Web","permalink":"web"}]`))
	}))
	t.Cleanup(upstream.Close)

	factory := &jsonrpc.Factory{
		ServerConfig: config.ServerConfig{Source: "test"},
		BaseURL:      upstream.URL,
		Logger:       slog.New(slog.DiscardHandler),
	}

	opts = append([]Option{WithLogHandler(slog.DiscardHandler)}, opts...)
	h := NewHandler(factory.NewSession, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc("/sse", h.ServeSSE)
	mux.HandleFunc("/message", h.ServeMessage)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Cleanup(h.Close)

	return &fixture{handler: h, server: srv}
}

func (f *fixture) open(t *testing.T, ctx context.Context) (*bufio.Reader, string) {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/sse", nil)
	require.NoError(t, err)
	req.Header.Set(config.HeaderEmail, "user@example.com")
	req.Header.Set(config.HeaderAPIKey, "key")
	req.Header.Set(config.HeaderAccount, "acme")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	ev := readEvent(t, reader)
	require.Equal(t, "endpoint", ev.name)
	require.True(t, strings.HasPrefix(ev.data, "/message?sessionId="), ev.data)
	return reader, ev.data
}

func (f *fixture) post(t *testing.T, endpoint, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.server.URL+endpoint, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestServeSSE_MissingCredentials(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/sse")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, map[string]string{
		"error":   "Unauthorized",
		"message": "Missing required headers: X-DeployHQ-Email, X-DeployHQ-API-Key, X-DeployHQ-Account",
	}, decodeError(t, resp))
	assert.Equal(t, 0, f.handler.Len())
}

func TestServeSSE_FallbackCredentials(t *testing.T) {
	f := newFixture(t, WithFallbackCredentials(deployhq.Credentials{
		Email: "env@example.com", APIKey: "env-key", Account: "env",
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeSSE_SessionFactoryFailure(t *testing.T) {
	h := NewHandler(func(deployhq.Credentials) (*jsonrpc.Handler, error) {
		return nil, errors.New("no client for you")
	}, WithLogHandler(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodGet, "/sse", nil)
	req.Header.Set(config.HeaderEmail, "a")
	req.Header.Set(config.HeaderAPIKey, "b")
	req.Header.Set(config.HeaderAccount, "c")
	rec := httptest.NewRecorder()

	h.ServeSSE(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "no client for you")
	assert.Equal(t, 0, h.Len())
}

func TestSession_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	reader, endpoint := f.open(t, ctx)
	assert.Equal(t, 1, f.handler.Len())

	resp := f.post(t, endpoint, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	ev := readEvent(t, reader)
	assert.Equal(t, "message", ev.name)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05",`+
		`"capabilities":{"tools":{}},"serverInfo":{"name":"deployhq-mcp-server","version":"1.0.0"}}}`, ev.data)

	// notifications produce no event; the next event answers the call
	f.post(t, endpoint, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	f.post(t, endpoint, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_projects"}}`)

	ev = readEvent(t, reader)
	var rpcResp struct {
		ID     int               `json:"id"`
		Result dispatch.Envelope `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(ev.data), &rpcResp))
	assert.Equal(t, 2, rpcResp.ID)
	assert.False(t, rpcResp.Result.IsError)
	assert.Contains(t, rpcResp.Result.Text(), "web")
}

func TestSession_PreservesOrder(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	reader, endpoint := f.open(t, ctx)

	const n = 10
	for i := 1; i <= n; i++ {
		resp := f.post(t, endpoint, `{"jsonrpc":"2.0","id":`+strconv.Itoa(i)+`,"method":"ping"}`)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
	}
	for i := 1; i <= n; i++ {
		ev := readEvent(t, reader)
		var got struct {
			ID int `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(ev.data), &got))
		assert.Equal(t, i, got.ID)
	}
}

func TestSession_RemovedOnDisconnect(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())

	_, endpoint := f.open(t, ctx)
	require.Equal(t, 1, f.handler.Len())

	cancel()
	assert.Eventually(t, func() bool { return f.handler.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	resp := f.post(t, endpoint, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]string{"error": "Session not found"}, decodeError(t, resp))
}

func TestServeMessage_Errors(t *testing.T) {
	f := newFixture(t)

	t.Run("missing session id", func(t *testing.T) {
		resp := f.post(t, "/message", `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing sessionId query parameter", decodeError(t, resp)["error"])
	})

	t.Run("unknown session", func(t *testing.T) {
		resp := f.post(t, "/message?sessionId=nope", `{}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, map[string]string{"error": "Session not found"}, decodeError(t, resp))
	})

	t.Run("invalid json", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		_, endpoint := f.open(t, ctx)

		resp := f.post(t, endpoint, `{not json`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Get(f.server.URL + "/message?sessionId=x")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
