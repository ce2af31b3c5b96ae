package dispatch

import "errors"

// ReadOnlyMessage is returned in place of a deployment when the gate is on.
const ReadOnlyMessage = "FORBIDDEN: Cannot create deployment - server is running in read-only mode.\n\n" +
	"To enable deployments, set DEPLOYHQ_READ_ONLY=false or start the server with --read-only=false.\n\n" +
	"Read-only mode is a security feature that prevents unintended deployments, " +
	"particularly by AI assistants acting on your behalf."

var (
	ErrReadOnly    = errors.New(ReadOnlyMessage)
	ErrNoHandler   = errors.New("no handler for tool")
	ErrToolPanic   = errors.New("tool handler panicked")
	ErrEncodeValue = errors.New("failed to encode tool result")
)
