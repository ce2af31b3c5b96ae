package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileConfig is the optional TOML settings file for the HTTP server. It never
// holds credentials; those arrive per request or through the environment.
type FileConfig struct {
	Listen         string    `toml:"listen"`
	LogLevel       LogLevel  `toml:"log_level"`
	LogFormat      LogFormat `toml:"log_format"`
	RequestTimeout Duration  `toml:"request_timeout"`

	// ReadOnly is nil when the file does not mention read_only.
	ReadOnly *bool `toml:"read_only"`
}

// LoadFile loads server settings from a TOML file
func LoadFile(filePath string) (*FileConfig, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: config file does not exist: %s", ErrFailedToLoadConfig, filePath)
	}

	if ext := filepath.Ext(filePath); ext != ".toml" {
		return nil, fmt.Errorf("%w: %s, only .toml is supported", ErrUnsupportedFileType, ext)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	return LoadFromBytes(data)
}

// LoadFromReader loads server settings from an io.Reader providing TOML data
func LoadFromReader(reader io.Reader) (*FileConfig, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates TOML data. Unknown keys are rejected so
// that a misspelled setting is not silently ignored. String settings may
// reference the environment as ${VAR} or ${VAR:default}.
func LoadFromBytes(data []byte) (*FileConfig, error) {
	cfg := &FileConfig{}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	if err := cfg.expandEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated and numeric settings
func (c *FileConfig) Validate() error {
	var errs []error

	if _, err := LogLevelFromString(c.LogLevel.String()); err != nil {
		errs = append(errs, err)
	}
	if _, err := LogFormatFromString(c.LogFormat.String()); err != nil {
		errs = append(errs, err)
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: request_timeout must not be negative", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
