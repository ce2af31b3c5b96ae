// Package stdio serves MCP over the process's standard streams using the
// MCP go-sdk. There is exactly one session for the life of the process, and
// its credentials come from the environment.
package stdio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/dispatch"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultValidationTimeout bounds the startup credential check.
const DefaultValidationTimeout = 10 * time.Second

const methodCallTool = "tools/call"

var (
	ErrMissingCredentials = errors.New("missing required environment variables: DEPLOYHQ_EMAIL, DEPLOYHQ_API_KEY, DEPLOYHQ_ACCOUNT")
	ErrInvalidCredentials = errors.New("authentication failed: check DEPLOYHQ_EMAIL and DEPLOYHQ_API_KEY")
	ErrCredentialCheck    = errors.New("failed to validate credentials: check your network connection and DeployHQ account settings")
)

// Options configure Run.
type Options struct {
	Credentials  deployhq.Credentials
	ServerConfig config.ServerConfig

	// Timeout bounds each upstream request. Zero means the client default.
	Timeout time.Duration
	BaseURL string

	// ValidateCredentials makes one authenticated request before serving.
	ValidateCredentials bool
	ValidationTimeout   time.Duration

	Info   jsonrpc.ServerInfo
	Logger *slog.Logger

	// Transport defaults to the process's stdin and stdout.
	Transport mcp.Transport
}

// NewMCPServer registers every tool of the Dispatcher's registry on a new
// go-sdk server. Tool calls are forwarded to the Dispatcher unchanged.
func NewMCPServer(d *dispatch.Dispatcher, info jsonrpc.ServerInfo, logger *slog.Logger) *mcp.Server {
	if info.Name == "" {
		info = jsonrpc.DefaultServerInfo
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := mcp.NewServer(
		&mcp.Implementation{Name: info.Name, Version: info.Version},
		&mcp.ServerOptions{Logger: logger},
	)

	for _, desc := range d.Registry().List() {
		name := desc.Name
		srv.AddTool(
			&mcp.Tool{Name: name, Description: desc.Description, InputSchema: desc.Schema},
			func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args json.RawMessage
				if req.Params != nil {
					args = req.Params.Arguments
				}
				return toResult(d.Call(ctx, name, args)), nil
			},
		)
	}
	srv.AddReceivingMiddleware(unregisteredTools(d))
	return srv
}

// unregisteredTools hands tools/call requests for names the server does not
// know to the Dispatcher, so they get the same error envelope as every other
// failed call instead of a protocol error.
func unregisteredTools(d *dispatch.Dispatcher) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodCallTool {
				return next(ctx, method, req)
			}
			call, ok := req.(*mcp.CallToolRequest)
			if !ok || call.Params == nil {
				return next(ctx, method, req)
			}
			if _, known := d.Registry().Lookup(call.Params.Name); known {
				return next(ctx, method, req)
			}
			return toResult(d.Call(ctx, call.Params.Name, call.Params.Arguments)), nil
		}
	}
}

func toResult(env *dispatch.Envelope) *mcp.CallToolResult {
	content := make([]mcp.Content, len(env.Content))
	for i, c := range env.Content {
		content[i] = &mcp.TextContent{Text: c.Text}
	}
	return &mcp.CallToolResult{Content: content, IsError: env.IsError}
}

// Run serves MCP until ctx is cancelled or the client disconnects.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !opts.Credentials.Complete() {
		return ErrMissingCredentials
	}

	client, err := deployhq.New(deployhq.Config{
		Credentials: opts.Credentials,
		Timeout:     opts.Timeout,
		BaseURL:     opts.BaseURL,
		Logger:      logger.WithGroup("deployhq"),
	})
	if err != nil {
		return err
	}

	logger.Info("Starting DeployHQ MCP server in stdio mode",
		"account", opts.Credentials.Account,
		"read_only", opts.ServerConfig.ReadOnlyMode,
		"read_only_source", opts.ServerConfig.Source,
	)

	if opts.ValidateCredentials {
		if err := validate(ctx, client, opts.ValidationTimeout, logger); err != nil {
			return err
		}
	}

	d := dispatch.New(client,
		dispatch.WithServerConfig(opts.ServerConfig),
		dispatch.WithLogger(logger.WithGroup("dispatch")),
	)
	srv := NewMCPServer(d, opts.Info, logger.WithGroup("mcp"))

	transport := opts.Transport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}

	logger.Info("DeployHQ MCP server running on stdio")
	if err := srv.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("DeployHQ MCP server stopped")
	return nil
}

func validate(ctx context.Context, client *deployhq.Client, timeout time.Duration, logger *slog.Logger) error {
	if timeout <= 0 {
		timeout = DefaultValidationTimeout
	}
	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("Validating credentials")
	err := client.ValidateCredentials(vctx)
	switch {
	case err == nil:
		logger.Info("Credentials validated successfully")
		return nil
	case errors.Is(err, deployhq.ErrAuthentication):
		logger.Error("Authentication failed", "error", err)
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	default:
		logger.Error("Failed to validate credentials", "error", err)
		return fmt.Errorf("%w: %w", ErrCredentialCheck, err)
	}
}
