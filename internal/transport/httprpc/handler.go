// Package httprpc serves MCP as plain JSON-RPC over HTTP POST. Every request
// is its own session: a client and handler are built for it and discarded
// once the response is written.
package httprpc

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
)

// MaxRequestSize bounds the body of a request.
const MaxRequestSize = 1 << 20

// Handler is an http.Handler for the /mcp endpoint.
type Handler struct {
	newSession jsonrpc.SessionFactory
	fallback   deployhq.Credentials
	logger     *slog.Logger
}

// NewHandler returns a Handler that builds a session per request with
// newSession. Credentials missing from the headers fall back to fallback.
func NewHandler(newSession jsonrpc.SessionFactory, fallback deployhq.Credentials, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default().WithGroup("httprpc")
	}
	return &Handler{newSession: newSession, fallback: fallback, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestSize+1))
	if err != nil {
		h.write(w, jsonrpc.NewError(nil, jsonrpc.CodeParseError, "Parse error", nil))
		return
	}
	if len(body) > MaxRequestSize {
		h.write(w, jsonrpc.NewError(nil, jsonrpc.CodeInvalidRequest, "Invalid Request: body too large", nil))
		return
	}

	var req jsonrpc.Request
	parseErr := json.Unmarshal(body, &req)

	creds := config.CredentialsFromHeaders(r.Header, h.fallback)
	if !creds.Complete() {
		h.logger.Error("Missing credentials in request headers")
		h.write(w, jsonrpc.NewError(req.ID, jsonrpc.CodeMissingCredentials, "Missing credentials in request headers", nil))
		return
	}

	if parseErr != nil {
		h.write(w, jsonrpc.NewError(nil, jsonrpc.CodeParseError, "Parse error", map[string]any{"details": parseErr.Error()}))
		return
	}

	if req.JSONRPC != jsonrpc.Version {
		h.write(w, jsonrpc.NewError(req.ID, jsonrpc.CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`, nil))
		return
	}

	logger := h.logger.With("account", creds.Account, "method", req.Method)
	logger.Info("Processing HTTP request")

	rpc, err := h.newSession(creds)
	if err != nil {
		logger.Error("Failed to create session", "error", err)
		h.write(w, jsonrpc.NewError(req.ID, jsonrpc.CodeInternalError, "Internal error", map[string]any{"details": err.Error()}))
		return
	}

	resp := rpc.Handle(r.Context(), &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	h.write(w, resp)
}

func (h *Handler) write(w http.ResponseWriter, resp *jsonrpc.Response) {
	status := http.StatusOK
	if resp.Error != nil {
		status = jsonrpc.HTTPStatus(resp.Error.Code)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(jsonrpc.NewError(resp.ID, jsonrpc.CodeInternalError, "Internal error",
			map[string]any{"details": err.Error()}))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
