package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/deployhq-mcp/internal/server"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
	"github.com/urfave/cli/v3"
)

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve MCP over HTTP (SSE on /sse, JSON-RPC on /mcp) with per-request credentials",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagListen,
				Aliases: []string{"l"},
				Usage:   "Address to listen on (host:port); PORT is used when unset",
				Sources: cli.EnvVars("DEPLOYHQ_MCP_LISTEN"),
			},
			&cli.DurationFlag{
				Name:  flagKeepAlive,
				Usage: "Interval of keep-alive comments on idle SSE streams",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := a.loadSettings(cmd)
			if err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}

			logger, err := setupLogger(s, false)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			return server.Run(ctx, serverOptions(cmd, s, logger))
		},
	}
}

// serverOptions builds the HTTP server settings. Credentials found in the
// environment become per-field fallbacks for clients that omit headers.
func serverOptions(cmd *cli.Command, s *settings, logger *slog.Logger) server.Options {
	version := cmd.Root().Version
	return server.Options{
		Listen: s.listen,
		Factory: &jsonrpc.Factory{
			ServerConfig: s.serverConfig,
			Info:         jsonrpc.ServerInfo{Name: jsonrpc.DefaultServerInfo.Name, Version: version},
			Timeout:      s.timeout,
			BaseURL:      s.baseURL,
			Logger:       logger,
		},
		Fallback:  s.credentials,
		Version:   version,
		KeepAlive: cmd.Duration(flagKeepAlive),
		Logger:    logger.WithGroup("server"),
	}
}
