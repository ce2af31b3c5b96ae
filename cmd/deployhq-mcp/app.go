package main

import (
	"io"
	"log/slog"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/logging"
	"github.com/atlanticdynamic/deployhq-mcp/internal/logging/writers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"
)

// Flag names shared between commands.
const (
	flagConfig         = "config"
	flagLogLevel       = "log-level"
	flagLogFormat      = "log-format"
	flagLogOutput      = "log-output"
	flagTimeout        = "timeout"
	flagBaseURL        = "base-url"
	flagListen         = "listen"
	flagKeepAlive      = "keep-alive"
	flagSkipValidation = "skip-validation"
	flagJSON           = "json"
)

// app carries what the commands read from the process. Tests replace the
// fields to run commands in isolation.
type app struct {
	args      []string
	lookupEnv func(string) (string, bool)
	stdout    io.Writer

	// transport replaces stdin and stdout for the stdio command.
	transport mcp.Transport
}

func (a *app) command() *cli.Command {
	stdio := a.stdioCommand()
	return &cli.Command{
		Name:    "deployhq-mcp",
		Version: Version,
		Usage:   "Model Context Protocol server for the DeployHQ API",
		Writer:  a.stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Path to a TOML settings file",
				Sources: cli.EnvVars("DEPLOYHQ_MCP_CONFIG"),
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Usage:   "Log level (trace, debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    flagLogFormat,
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    flagLogOutput,
				Usage:   "Log destination: stderr, stdout, or a file path",
				Value:   "stderr",
				Sources: cli.EnvVars("LOG_OUTPUT"),
			},
			&cli.DurationFlag{
				Name:    flagTimeout,
				Usage:   "Timeout of each DeployHQ API request",
				Value:   deployhq.DefaultTimeout,
				Sources: cli.EnvVars("DEPLOYHQ_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    flagBaseURL,
				Usage:   "Override the https://<account>.deployhq.com API endpoint",
				Sources: cli.EnvVars("DEPLOYHQ_BASE_URL"),
			},
			&cli.BoolFlag{
				Name:    flagSkipValidation,
				Usage:   "Start the stdio server without checking the credentials first",
				Sources: cli.EnvVars("DEPLOYHQ_SKIP_VALIDATION"),
			},
			&cli.BoolFlag{
				Name:  config.FlagReadOnly,
				Usage: "Block create_deployment; also set by DEPLOYHQ_READ_ONLY",
			},
		},
		Commands: []*cli.Command{
			stdio,
			a.serveCommand(),
			a.toolsCommand(),
			versionCmd,
		},
		// without a subcommand the process speaks MCP on stdio
		Action: stdio.Action,
	}
}

// setupLogger installs the default logger. The stdio command passes
// forStdio; logs never share stdout with the protocol stream.
func setupLogger(s *settings, forStdio bool) (*slog.Logger, error) {
	create := writers.CreateWriter
	if forStdio {
		create = writers.CreateStdioWriter
	}
	w, err := create(s.logOutput)
	if err != nil {
		return nil, err
	}
	return logging.SetupLogger(s.logLevel, s.logFormat, w), nil
}
