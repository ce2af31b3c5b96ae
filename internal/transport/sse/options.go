package sse

import (
	"log/slog"
	"time"

	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
)

type Option func(*Handler)

// WithFallbackCredentials sets the per-field defaults for credentials that a
// client does not send as headers.
func WithFallbackCredentials(creds deployhq.Credentials) Option {
	return func(h *Handler) {
		h.fallback = creds
	}
}

// WithMessagePath sets the path announced in the endpoint event.
func WithMessagePath(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.messagePath = path
		}
	}
}

// WithKeepAlive sets the interval of keep-alive comments on idle streams.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.keepAlive = d
		}
	}
}

// WithQueueSize sets how many posted messages may wait per session.
func WithQueueSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithLogger sets a custom logger for the Handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithLogHandler sets a custom log handler for the Handler.
func WithLogHandler(handler slog.Handler) Option {
	return func(h *Handler) {
		h.logger = slog.New(handler)
	}
}
