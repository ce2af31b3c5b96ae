package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/stdio"
	"github.com/urfave/cli/v3"
)

func (a *app) stdioCommand() *cli.Command {
	return &cli.Command{
		Name:  "stdio",
		Usage: "Serve MCP over stdin and stdout with credentials from the environment",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := a.loadSettings(cmd)
			if err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}

			logger, err := setupLogger(s, true)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return stdio.Run(ctx, stdio.Options{
				Credentials:         s.credentials,
				ServerConfig:        s.serverConfig,
				Timeout:             s.timeout,
				BaseURL:             s.baseURL,
				ValidateCredentials: !cmd.Bool(flagSkipValidation),
				Info:                jsonrpc.ServerInfo{Name: jsonrpc.DefaultServerInfo.Name, Version: cmd.Root().Version},
				Logger:              logger,
				Transport:           a.transport,
			})
		},
	}
}
