package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
)

// ContentTypeText is the only content block type produced.
const ContentTypeText = "text"

// Content is one block of a tool response.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the outcome of every tool call, successful or not. It is built
// fresh per call and not modified after it is returned.
type Envelope struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text returns the concatenated text of all content blocks.
func (e *Envelope) Text() string {
	var sb strings.Builder
	for _, c := range e.Content {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Error kinds reported in the "kind" field of an error body, beyond the
// API client's own kinds.
const (
	KindUnknownTool = "unknown_tool"
	KindValidation  = "validation"
	KindForbidden   = "forbidden"
	KindInternal    = "internal"
)

// ErrorBody is the JSON document carried by an error envelope.
type ErrorBody struct {
	Error       string   `json:"error"`
	Tool        string   `json:"tool"`
	Kind        string   `json:"kind"`
	StatusCode  int      `json:"status_code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Details     any      `json:"details,omitempty"`
}

func textEnvelope(v any) (*Envelope, error) {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeValue, err)
	}
	return &Envelope{Content: []Content{{Type: ContentTypeText, Text: string(text)}}}, nil
}

// newErrorBody classifies err into the body reported to the caller.
func newErrorBody(tool string, err error) ErrorBody {
	body := ErrorBody{
		Error:       err.Error(),
		Tool:        tool,
		Kind:        KindInternal,
		Suggestions: Suggestions(err),
	}

	var vErr *tools.ValidationError
	switch {
	case errors.Is(err, ErrReadOnly):
		body.Kind = KindForbidden
	case errors.Is(err, tools.ErrUnknownTool):
		body.Kind = KindUnknownTool
	case errors.As(err, &vErr):
		body.Kind = KindValidation
		body.Details = vErr.Detail
	default:
		if apiErr, ok := deployhq.AsError(err); ok {
			body.Kind = apiErr.Kind.String()
			body.StatusCode = apiErr.StatusCode
			if apiErr.Response != nil {
				body.Details = apiErr.Response
			}
		}
	}
	return body
}

func errorEnvelope(tool string, err error) *Envelope {
	env, encErr := textEnvelope(newErrorBody(tool, err))
	if encErr != nil {
		// details came from upstream and may not be encodable; drop them
		body := newErrorBody(tool, err)
		body.Details = nil
		env, _ = textEnvelope(body)
	}
	env.IsError = true
	return env
}
