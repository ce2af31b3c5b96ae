package dispatch

import (
	"log/slog"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
)

type Option func(*Dispatcher)

// WithRegistry replaces the default tool catalogue.
func WithRegistry(reg *tools.Registry) Option {
	return func(d *Dispatcher) {
		if reg != nil {
			d.registry = reg
		}
	}
}

// WithServerConfig sets the resolved read-only gate.
func WithServerConfig(cfg config.ServerConfig) Option {
	return func(d *Dispatcher) {
		d.cfg = cfg
	}
}

// WithLogger sets a custom logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithLogHandler sets a custom log handler for the Dispatcher.
func WithLogHandler(handler slog.Handler) Option {
	return func(d *Dispatcher) {
		d.logger = slog.New(handler)
	}
}
