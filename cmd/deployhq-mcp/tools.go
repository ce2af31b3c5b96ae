package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atlanticdynamic/deployhq-mcp/internal/fancy"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
	"github.com/atlanticdynamic/deployhq-mcp/internal/transport/jsonrpc"
	"github.com/urfave/cli/v3"
)

func (a *app) toolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List the tools this server exposes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagJSON,
				Usage: "Print the tools/list result as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := a.loadSettings(cmd)
			if err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}

			reg := tools.Default()
			if cmd.Bool(flagJSON) {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(jsonrpc.ListTools(reg))
			}

			_, err = fmt.Fprintln(a.stdout, fancy.ToolTree(reg, s.serverConfig.ReadOnlyMode))
			return err
		},
	}
}
