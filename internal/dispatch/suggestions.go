package dispatch

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
)

const (
	hintCredentials = "Verify DEPLOYHQ_EMAIL, DEPLOYHQ_API_KEY and DEPLOYHQ_ACCOUNT (or the X-DeployHQ-* headers) are correct"
	hintPermissions = "Check that the API key belongs to a user with access to this account"
	hintTimeout     = "DeployHQ did not respond in time; retry the request"
	hintToolList    = "Use tools/list to see the available tools"
	hintSchema      = "Check the arguments against the tool's input schema"
	hintUpstream    = "DeployHQ rejected the request; check the details field for the fields it refused"
	hintProject     = "Check the project permalink; list_projects shows the valid values"
	hintServer      = "Check the server UUID; list_servers shows the servers of a project"
	hintDeployment  = "Check the deployment UUID; list_deployments shows recent deployments"
	hintRevision    = "Check that start_revision and end_revision exist in the repository"
	hintNotFound    = "The resource does not exist or is not visible to these credentials"
	hintReadOnly    = "Set DEPLOYHQ_READ_ONLY=false or pass --read-only=false to allow deployments"
	hintNetwork     = "Check network connectivity to deployhq.com"
)

// Suggestions derives remediation hints from an error. It matches on the
// error kind first and then on substrings of the message. The result is
// advisory only; it is nil when nothing applies.
func Suggestions(err error) (hints []string) {
	if err == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			hints = nil
		}
	}()

	add := func(h string) {
		if !slices.Contains(hints, h) {
			hints = append(hints, h)
		}
	}

	var vErr *tools.ValidationError
	switch {
	case errors.Is(err, ErrReadOnly):
		add(hintReadOnly)
		return hints
	case errors.Is(err, tools.ErrUnknownTool):
		add(hintToolList)
		return hints
	case errors.As(err, &vErr):
		add(hintSchema)
	}

	text := err.Error()
	if apiErr, ok := deployhq.AsError(err); ok {
		switch apiErr.Kind {
		case deployhq.KindAuthentication, deployhq.KindConfiguration:
			add(hintCredentials)
			add(hintPermissions)
		case deployhq.KindTimeout:
			add(hintTimeout)
		case deployhq.KindValidation:
			add(hintUpstream)
		case deployhq.KindPlatform:
			var urlErr *url.Error
			if errors.As(apiErr.Err, &urlErr) {
				add(hintNetwork)
			}
		}
		if s, ok := apiErr.Response.(string); ok {
			text += " " + s
		} else if apiErr.Response != nil {
			text += " " + fmt.Sprint(apiErr.Response)
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "not found") || strings.Contains(lower, "(status 404)") {
		add(hintNotFound)
	}
	if strings.Contains(lower, "project") {
		add(hintProject)
	}
	if strings.Contains(lower, "server") || strings.Contains(lower, "parent_identifier") {
		add(hintServer)
	}
	if strings.Contains(lower, "deployment") && !strings.Contains(lower, "read-only") {
		add(hintDeployment)
	}
	if strings.Contains(lower, "revision") || strings.Contains(lower, "commit") {
		add(hintRevision)
	}
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") {
		add(hintTimeout)
	}
	if strings.Contains(lower, "credential") || strings.Contains(lower, "unauthorized") {
		add(hintCredentials)
	}

	return hints
}
