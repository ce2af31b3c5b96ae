package tools

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTool   = errors.New("unknown tool")
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrInvalidSchema = errors.New("invalid tool schema")
)

// ValidationError is an argument shape mismatch detected locally, before any
// request is made.
type ValidationError struct {
	Tool   string
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid arguments for tool %s: %s", e.Tool, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
