// Package server hosts the SSE and HTTP JSON-RPC transports on one listener,
// next to the health and tool listing endpoints. A Server is a go-supervisor
// Runnable.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/httprpc"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/sse"
	"github.com/robbyt/go-supervisor/supervisor"
)

var _ supervisor.Runnable = (*Server)(nil)

const (
	// DefaultListen is the address used when none is configured.
	DefaultListen = ":8080"

	// DefaultDrainTimeout bounds the graceful shutdown.
	DefaultDrainTimeout = 10 * time.Second

	// ServiceName is reported by the health endpoint.
	ServiceName = "deployhq-mcp-server"
)

var ErrNilFactory = errors.New("session factory is required")

// Options configure a Server.
type Options struct {
	Listen string

	// Factory builds the per-session API client and dispatcher.
	Factory *jsonrpc.Factory

	// Fallback fills credentials that a client does not send as headers.
	Fallback deployhq.Credentials

	// Version is reported by the health endpoint.
	Version string

	ReadTimeout  time.Duration
	IdleTimeout  time.Duration
	DrainTimeout time.Duration

	// KeepAlive is the interval of comment frames on idle SSE streams.
	KeepAlive time.Duration

	Logger *slog.Logger
}

// Server serves every HTTP route of the MCP server.
type Server struct {
	address      string
	drainTimeout time.Duration
	version      string
	registry     *tools.Registry
	serverConfig config.ServerConfig

	sse     *sse.Handler
	handler http.Handler
	logger  *slog.Logger
	now     func() time.Time

	httpServer *http.Server

	mu        sync.Mutex
	addr      net.Addr
	ready     chan struct{}
	readyOnce sync.Once
	cancel    context.CancelFunc
}

// New builds a Server from opts.
func New(opts Options) (*Server, error) {
	if opts.Factory == nil {
		return nil, ErrNilFactory
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().WithGroup("server")
	}

	factory := *opts.Factory
	if factory.Registry == nil {
		factory.Registry = tools.Default()
	}
	registry := factory.Registry

	s := &Server{
		address:      opts.Listen,
		drainTimeout: opts.DrainTimeout,
		version:      opts.Version,
		registry:     registry,
		serverConfig: factory.ServerConfig,
		logger:       logger,
		now:          time.Now,
		ready:        make(chan struct{}),
	}
	if s.address == "" {
		s.address = DefaultListen
	}
	if s.drainTimeout <= 0 {
		s.drainTimeout = DefaultDrainTimeout
	}
	if s.version == "" {
		s.version = jsonrpc.DefaultServerInfo.Version
	}

	sseOpts := []sse.Option{
		sse.WithFallbackCredentials(opts.Fallback),
		sse.WithMessagePath(messagePath),
		sse.WithLogger(logger.WithGroup("sse")),
	}
	if opts.KeepAlive > 0 {
		sseOpts = append(sseOpts, sse.WithKeepAlive(opts.KeepAlive))
	}
	s.sse = sse.NewHandler(factory.NewSession, sseOpts...)

	rpc := httprpc.NewHandler(factory.NewSession, opts.Fallback, logger.WithGroup("httprpc"))
	s.handler = s.routes(rpc)

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
		IdleTimeout:       opts.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	return s, nil
}

func (s *Server) String() string {
	return fmt.Sprintf("HTTPServer[%s]", s.address)
}

// Handler returns the root handler with every route and middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the number of open SSE sessions.
func (s *Server) Sessions() int {
	return s.sse.Len()
}

// Addr blocks until the listener is bound, then returns its address. It
// returns nil if ctx ends first.
func (s *Server) Addr(ctx context.Context) net.Addr {
	select {
	case <-s.ready:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.addr
	case <-ctx.Done():
		return nil
	}
}

// Run listens on the configured address and serves until ctx is done or Stop
// is called.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.cancel = cancel
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	s.logger.Info("Starting HTTP server",
		"address", ln.Addr().String(),
		"readOnlyMode", s.serverConfig.ReadOnlyMode,
		"readOnlySource", s.serverConfig.Source,
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Stopping HTTP server", "address", ln.Addr().String())

	// open streams never finish on their own
	s.sse.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), s.drainTimeout)
	defer shutdownCancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server did not drain in time", "error", err)
		return s.httpServer.Close()
	}
	return nil
}

// Stop ends a running Server.
func (s *Server) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Run serves opts under a supervisor until ctx is cancelled or the process
// receives a termination signal.
func Run(ctx context.Context, opts Options) error {
	srv, err := New(opts)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	super, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(srv.logger.Handler()),
		supervisor.WithRunnables(srv),
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	if err := super.Run(); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	srv.logger.Info("Server shutdown complete")
	return nil
}
