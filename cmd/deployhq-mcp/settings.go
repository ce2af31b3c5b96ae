package main

import (
	"fmt"
	"time"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/server"
	"github.com/urfave/cli/v3"
)

// envPort is the conventional listen port variable of hosting platforms.
const envPort = "PORT"

// settings is the merged view of flags, environment and the settings file.
type settings struct {
	logLevel     string
	logFormat    string
	logOutput    string
	timeout      time.Duration
	baseURL      string
	listen       string
	serverConfig config.ServerConfig
	credentials  deployhq.Credentials
}

// loadSettings merges the sources of every setting. Flags and their
// environment variables win over the settings file, which wins over the flag
// defaults.
func (a *app) loadSettings(cmd *cli.Command) (*settings, error) {
	file := &config.FileConfig{}
	if path := cmd.String(flagConfig); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		file = loaded
	}

	s := &settings{
		logLevel:     pick(cmd, flagLogLevel, file.LogLevel.String()),
		logFormat:    pick(cmd, flagLogFormat, file.LogFormat.String()),
		logOutput:    cmd.String(flagLogOutput),
		timeout:      cmd.Duration(flagTimeout),
		baseURL:      cmd.String(flagBaseURL),
		serverConfig: a.resolveGate(cmd, file),
		credentials:  config.CredentialsFromEnv(a.lookupEnv),
	}

	if _, err := config.LogLevelFromString(s.logLevel); err != nil {
		return nil, err
	}
	if _, err := config.LogFormatFromString(s.logFormat); err != nil {
		return nil, err
	}

	if !cmd.IsSet(flagTimeout) && file.RequestTimeout > 0 {
		s.timeout = file.RequestTimeout.AsDuration()
	}
	if s.timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", config.ErrInvalidConfig)
	}

	s.listen = a.listenAddress(cmd, file)
	return s, nil
}

// resolveGate resolves the read-only gate from the raw arguments. A flag
// the parser accepted in a spelling the raw scan missed still counts as the
// command line source.
func (a *app) resolveGate(cmd *cli.Command, file *config.FileConfig) config.ServerConfig {
	gate := config.ResolveServerConfig(a.args, a.lookupEnv, file)
	if gate.Source != config.SourceFlag && cmd.IsSet(config.FlagReadOnly) {
		return config.ServerConfig{ReadOnlyMode: cmd.Bool(config.FlagReadOnly), Source: config.SourceFlag}
	}
	return gate
}

// pick returns the flag value when it was set explicitly, then the file
// value, then the flag default.
func pick(cmd *cli.Command, flag, fromFile string) string {
	if !cmd.IsSet(flag) && fromFile != "" {
		return fromFile
	}
	return cmd.String(flag)
}

func (a *app) listenAddress(cmd *cli.Command, file *config.FileConfig) string {
	if cmd.IsSet(flagListen) {
		return cmd.String(flagListen)
	}
	if a.lookupEnv != nil {
		if port, ok := a.lookupEnv(envPort); ok && port != "" {
			return ":" + port
		}
	}
	if file.Listen != "" {
		return file.Listen
	}
	return server.DefaultListen
}
