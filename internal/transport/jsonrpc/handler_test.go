package jsonrpc

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/dispatch"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = deployhq.Credentials{Email: "user@example.com", APIKey: "key", Account: "acme"}

// newTestHandler returns a Handler backed by a fake upstream.
func newTestHandler(t *testing.T, readOnly bool) *Handler {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/projects":
			_, _ = w.Write([]byte(`[{"name":"Web","permalink":"web"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`not here`))
		}
	}))
	t.Cleanup(upstream.Close)

	f := &Factory{
		ServerConfig: config.ServerConfig{ReadOnlyMode: readOnly, Source: "test"},
		BaseURL:      upstream.URL,
		Logger:       slog.New(slog.DiscardHandler),
	}
	h, err := f.NewSession(testCreds)
	require.NoError(t, err)
	return h
}

func call(t *testing.T, h *Handler, raw string) *Response {
	t.Helper()
	var req Request
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	return h.Handle(t.Context(), &req)
}

func TestHandle_Initialize(t *testing.T) {
	resp := call(t, newTestHandler(t, false), `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"jsonrpc":"2.0",
		"id":1,
		"result":{
			"protocolVersion":"2024-11-05",
			"capabilities":{"tools":{}},
			"serverInfo":{"name":"deployhq-mcp-server","version":"1.0.0"}
		}
	}`, string(out))
}

func TestHandle_ToolsList(t *testing.T) {
	resp := call(t, newTestHandler(t, false), `{"jsonrpc":"2.0","id":"a","method":"tools/list"}`)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(ListToolsResult)
	require.True(t, ok)
	require.Len(t, result.Tools, 7)

	reg := tools.Default()
	for i, d := range reg.List() {
		assert.Equal(t, d.Name, result.Tools[i].Name)
		assert.Equal(t, d.Description, result.Tools[i].Description)

		want, err := json.Marshal(d.Schema)
		require.NoError(t, err)
		got, err := json.Marshal(result.Tools[i].InputSchema)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
	}
}

func TestHandle_ToolsCall(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		resp := call(t, newTestHandler(t, false),
			`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_projects","arguments":{}}}`)
		require.Nil(t, resp.Error)

		env, ok := resp.Result.(*dispatch.Envelope)
		require.True(t, ok)
		assert.False(t, env.IsError)
		assert.Contains(t, env.Text(), `"permalink": "web"`)
	})

	t.Run("upstream error is an error envelope", func(t *testing.T) {
		resp := call(t, newTestHandler(t, false),
			`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_project","arguments":{"permalink":"gone"}}}`)
		require.Nil(t, resp.Error)

		env := resp.Result.(*dispatch.Envelope)
		assert.True(t, env.IsError)
		assert.Contains(t, env.Text(), `"status_code": 404`)
	})

	t.Run("gate", func(t *testing.T) {
		resp := call(t, newTestHandler(t, true),
			`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"create_deployment","arguments":`+
				`{"project":"web","parent_identifier":"s","start_revision":"a","end_revision":"b"}}}`)
		require.Nil(t, resp.Error)

		env := resp.Result.(*dispatch.Envelope)
		assert.True(t, env.IsError)
		assert.Contains(t, env.Text(), "DEPLOYHQ_READ_ONLY=false")
	})

	t.Run("missing tool name", func(t *testing.T) {
		resp := call(t, newTestHandler(t, false), `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{}}`)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeInvalidParams, resp.Error.Code)
	})

	t.Run("malformed params", func(t *testing.T) {
		resp := call(t, newTestHandler(t, false), `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":[1,2]}`)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeInvalidParams, resp.Error.Code)
	})
}

func TestHandle_Errors(t *testing.T) {
	h := newTestHandler(t, false)

	t.Run("wrong version", func(t *testing.T) {
		resp := call(t, h, `{"jsonrpc":"1.0","id":1,"method":"initialize"}`)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeInvalidRequest, resp.Error.Code)
		assert.Equal(t, `Invalid Request: jsonrpc must be "2.0"`, resp.Error.Message)
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := call(t, h, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
		require.NotNil(t, resp.Error)
		assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
		assert.Equal(t, "Method not found: resources/list", resp.Error.Message)
	})

	t.Run("notification", func(t *testing.T) {
		assert.Nil(t, call(t, h, `{"jsonrpc":"2.0","method":"notifications/initialized"}`))
		assert.Nil(t, call(t, h, `{"jsonrpc":"2.0","method":"tools/list"}`))
	})

	t.Run("null id is a request", func(t *testing.T) {
		resp := call(t, h, `{"jsonrpc":"2.0","id":null,"method":"tools/list"}`)
		require.NotNil(t, resp)
		require.Nil(t, resp.Error)
		assert.JSONEq(t, `null`, string(resp.ID))

		out, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"id":null`)
	})

	t.Run("ping", func(t *testing.T) {
		resp := call(t, h, `{"jsonrpc":"2.0","id":9,"method":"ping"}`)
		require.Nil(t, resp.Error)
		assert.Equal(t, map[string]any{}, resp.Result)
	})
}

func TestFactory_NewSession(t *testing.T) {
	f := &Factory{Logger: slog.New(slog.DiscardHandler)}

	_, err := f.NewSession(deployhq.Credentials{Email: "a", APIKey: "b"})
	require.ErrorIs(t, err, deployhq.ErrConfiguration)

	h, err := f.NewSession(testCreds)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerInfo, h.info)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(0))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(CodeMissingCredentials))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeParseError))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeMethodNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInternalError))
}

func TestResponse_NullID(t *testing.T) {
	out, err := json.Marshal(NewError(nil, CodeParseError, "Parse error", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`, string(out))
}
