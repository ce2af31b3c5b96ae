package dispatch

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
	"github.com/stretchr/testify/assert"
)

// panicError fails while formatting itself.
type panicError struct{}

func (panicError) Error() string { panic("no message") }

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
		empty    bool
	}{
		{name: "nil", err: nil, empty: true},
		{name: "unrelated", err: errors.New("something odd"), empty: true},
		{
			name:     "read-only",
			err:      ErrReadOnly,
			contains: []string{hintReadOnly},
		},
		{
			name:     "unknown tool",
			err:      fmt.Errorf("%w: nope", tools.ErrUnknownTool),
			contains: []string{hintToolList},
		},
		{
			name:     "authentication",
			err:      deployhq.NewAuthenticationError("Invalid credentials or insufficient permissions"),
			contains: []string{hintCredentials, hintPermissions},
		},
		{
			name:     "timeout",
			err:      deployhq.NewTimeoutError(nil),
			contains: []string{hintTimeout},
		},
		{
			name:     "upstream validation mentions revision",
			err:      deployhq.NewValidationError("Validation failed", map[string]any{"end_revision": "unknown commit"}),
			contains: []string{hintUpstream, hintRevision},
		},
		{
			name:     "project not found",
			err:      fmt.Errorf("API request failed: Not Found: %s", "project missing"),
			contains: []string{hintNotFound, hintProject},
		},
		{
			name:     "server",
			err:      errors.New("server does not exist"),
			contains: []string{hintServer},
		},
		{
			name:     "deployment",
			err:      errors.New("deployment does not exist"),
			contains: []string{hintDeployment},
		},
		{
			name: "network",
			err: fmt.Errorf("call: %w", &deployhq.Error{
				Kind:    deployhq.KindPlatform,
				Message: "Request failed: dial tcp",
				Err:     &url.Error{Op: "Get", URL: "https://x", Err: errors.New("dial tcp")},
			}),
			contains: []string{hintNetwork},
		},
		{
			name:     "local validation",
			err:      &tools.ValidationError{Tool: tools.GetProject, Detail: "missing permalink"},
			contains: []string{hintSchema},
		},
		{name: "error that panics", err: panicError{}, empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hints []string
			assert.NotPanics(t, func() { hints = Suggestions(tt.err) })
			if tt.empty {
				assert.Empty(t, hints)
				return
			}
			for _, want := range tt.contains {
				assert.Contains(t, hints, want)
			}
		})
	}
}

func TestSuggestions_NoDuplicates(t *testing.T) {
	err := deployhq.NewAuthenticationError("credentials rejected for project; credentials unauthorized")
	hints := Suggestions(err)

	seen := map[string]bool{}
	for _, h := range hints {
		assert.False(t, seen[h], "duplicate hint %q", h)
		seen[h] = true
	}
}

func TestSuggestions_ReadOnlyIsExclusive(t *testing.T) {
	assert.Equal(t, []string{hintReadOnly}, Suggestions(ErrReadOnly))
}
