package jsonrpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/atlanticdynamic/deployhq-mcp/internal/dispatch"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
)

// DefaultServerInfo is reported when a Handler is built without one.
var DefaultServerInfo = ServerInfo{Name: "deployhq-mcp-server", Version: "1.0.0"}

// Handler answers MCP methods for one session. It is bound to a single
// Dispatcher and therefore to a single set of credentials.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	info       ServerInfo
	logger     *slog.Logger
}

// NewHandler returns a Handler serving d.
func NewHandler(d *dispatch.Dispatcher, info ServerInfo, logger *slog.Logger) *Handler {
	if info.Name == "" {
		info = DefaultServerInfo
	}
	if logger == nil {
		logger = slog.Default().WithGroup("jsonrpc")
	}
	return &Handler{dispatcher: d, info: info, logger: logger}
}

// ListTools converts the registry into the tools/list result.
func ListTools(reg *tools.Registry) ListToolsResult {
	descs := reg.List()
	out := ListToolsResult{Tools: make([]ToolInfo, len(descs))}
	for i, d := range descs {
		out.Tools[i] = ToolInfo{Name: d.Name, Description: d.Description, InputSchema: d.Schema}
	}
	return out
}

// Handle processes one request. It returns nil for notifications.
func (h *Handler) Handle(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != Version {
		return NewError(req.ID, CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`, nil)
	}

	if req.IsNotification() {
		if !strings.HasPrefix(req.Method, "notifications/") {
			h.logger.Warn("Ignoring notification for a request method", "method", req.Method)
		}
		return nil
	}

	h.logger.Debug("Handling request", "method", req.Method)

	switch req.Method {
	case MethodInitialize:
		return NewResult(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      h.info,
		})
	case MethodPing:
		return NewResult(req.ID, map[string]any{})
	case MethodToolsList:
		return NewResult(req.ID, ListTools(h.dispatcher.Registry()))
	case MethodToolsCall:
		return h.callTool(ctx, req)
	default:
		return NewError(req.ID, CodeMethodNotFound, "Method not found: "+req.Method, nil)
	}
}

func (h *Handler) callTool(ctx context.Context, req *Request) *Response {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, CodeInvalidParams, "Invalid params", map[string]any{"details": err.Error()})
		}
	}
	if params.Name == "" {
		return NewError(req.ID, CodeInvalidParams, "Invalid params: tool name is required", nil)
	}

	return NewResult(req.ID, h.dispatcher.Call(ctx, params.Name, params.Arguments))
}

// HTTPStatus maps an error code to the HTTP status used by the HTTP
// transports.
func HTTPStatus(code int) int {
	switch code {
	case 0:
		return http.StatusOK
	case CodeMissingCredentials:
		return http.StatusUnauthorized
	case CodeParseError, CodeInvalidRequest, CodeMethodNotFound, CodeInvalidParams:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
