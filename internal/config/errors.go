package config

import "errors"

var (
	ErrFailedToLoadConfig  = errors.New("failed to load config")
	ErrInvalidConfig       = errors.New("invalid config")
	ErrUnsupportedFileType = errors.New("unsupported config file type")
)
