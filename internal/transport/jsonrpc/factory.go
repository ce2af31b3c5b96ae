package jsonrpc

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/dispatch"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
)

// SessionFactory builds the per-session handler for a set of credentials.
type SessionFactory func(creds deployhq.Credentials) (*Handler, error)

// Factory holds what every session shares. Only the credentials differ
// between the sessions it creates.
type Factory struct {
	ServerConfig config.ServerConfig
	Registry     *tools.Registry
	Info         ServerInfo

	// Timeout bounds each upstream request. Zero means the client default.
	Timeout time.Duration

	// BaseURL overrides the per-account API endpoint.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewSession constructs a fresh API client and Dispatcher for creds.
func (f *Factory) NewSession(creds deployhq.Credentials) (*Handler, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := deployhq.New(deployhq.Config{
		Credentials: creds,
		Timeout:     f.Timeout,
		BaseURL:     f.BaseURL,
		HTTPClient:  f.HTTPClient,
		Logger:      logger.WithGroup("deployhq"),
	})
	if err != nil {
		return nil, err
	}

	d := dispatch.New(client,
		dispatch.WithRegistry(f.Registry),
		dispatch.WithServerConfig(f.ServerConfig),
		dispatch.WithLogger(logger.With("account", creds.Account)),
	)
	return NewHandler(d, f.Info, logger.WithGroup("jsonrpc")), nil
}
