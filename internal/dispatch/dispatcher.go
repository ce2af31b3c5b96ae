// Package dispatch turns a tool name and raw arguments into a response
// envelope. A call moves through lookup, validation, the read-only gate and
// invocation; any step may end it early, and every path yields exactly one
// envelope.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/atlanticdynamic/deployhq-mcp/internal/tools"
)

// API is the set of DeployHQ operations the tools map onto. *deployhq.Client
// implements it.
type API interface {
	ListProjects(ctx context.Context) ([]deployhq.Project, error)
	GetProject(ctx context.Context, permalink string) (*deployhq.Project, error)
	ListServers(ctx context.Context, project string) ([]deployhq.Server, error)
	ListDeployments(ctx context.Context, project string, opts deployhq.ListDeploymentsOptions) (*deployhq.DeploymentPage, error)
	GetDeployment(ctx context.Context, project, uuid string) (*deployhq.Deployment, error)
	GetDeploymentLog(ctx context.Context, project, uuid string) (string, error)
	CreateDeployment(ctx context.Context, project string, params deployhq.CreateDeploymentParams) (*deployhq.Deployment, error)
}

var _ API = (*deployhq.Client)(nil)

// DeploymentLog is the result of get_deployment_log.
type DeploymentLog struct {
	Project string `json:"project"`
	UUID    string `json:"uuid"`
	Log     string `json:"log"`
}

type invocation func(ctx context.Context) (any, error)

// Dispatcher executes tool calls against one API client. It keeps no state
// between calls.
type Dispatcher struct {
	api      API
	registry *tools.Registry
	cfg      config.ServerConfig
	logger   *slog.Logger
}

// New returns a Dispatcher bound to api. Without options it uses the default
// tool catalogue with the read-only gate off.
func New(api API, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		api:      api,
		registry: tools.Default(),
		cfg:      config.ServerConfig{ReadOnlyMode: config.DefaultReadOnly, Source: config.SourceDefault},
		logger:   slog.Default().WithGroup("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the tool catalogue the Dispatcher serves.
func (d *Dispatcher) Registry() *tools.Registry {
	return d.registry
}

// ServerConfig returns the gate setting the Dispatcher enforces.
func (d *Dispatcher) ServerConfig() config.ServerConfig {
	return d.cfg
}

// Call runs one tool. It never returns nil and never panics; failures are
// reported through an envelope with IsError set.
func (d *Dispatcher) Call(ctx context.Context, name string, raw json.RawMessage) (env *Envelope) {
	logger := d.logger.With("tool", name)
	logger.Info("Calling tool")
	logger.Debug("Tool arguments", "arguments", string(raw))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Tool handler panicked", "panic", r)
			env = errorEnvelope(name, fmt.Errorf("%w: %v", ErrToolPanic, r))
		}
	}()

	desc, ok := d.registry.Lookup(name)
	if !ok {
		logger.Warn("Unknown tool requested")
		return errorEnvelope(name, fmt.Errorf("%w: %s", tools.ErrUnknownTool, name))
	}

	invoke, err := d.bind(name, raw)
	if err != nil {
		logger.Warn("Tool arguments rejected", "error", err)
		return errorEnvelope(name, err)
	}

	if desc.Mutating && d.cfg.ReadOnlyMode {
		logger.Warn("Blocked mutating tool in read-only mode", "source", d.cfg.Source)
		return errorEnvelope(name, ErrReadOnly)
	}

	result, err := invoke(ctx)
	if err != nil {
		logger.Error("Tool call failed", "error", err)
		return errorEnvelope(name, err)
	}

	env, err = textEnvelope(result)
	if err != nil {
		logger.Error("Tool result could not be encoded", "error", err)
		return errorEnvelope(name, err)
	}
	logger.Debug("Tool completed", "bytes", len(env.Content[0].Text))
	return env
}

// bind validates raw for the named tool and returns the matching API call
// with its arguments already decoded.
func (d *Dispatcher) bind(name string, raw json.RawMessage) (invocation, error) {
	switch name {
	case tools.ListProjects:
		return prepare(d, name, raw, func(ctx context.Context, _ tools.NoArgs) (any, error) {
			return d.api.ListProjects(ctx)
		})
	case tools.GetProject:
		return prepare(d, name, raw, func(ctx context.Context, a tools.GetProjectArgs) (any, error) {
			return d.api.GetProject(ctx, a.Permalink)
		})
	case tools.ListServers:
		return prepare(d, name, raw, func(ctx context.Context, a tools.ProjectArgs) (any, error) {
			return d.api.ListServers(ctx, a.Project)
		})
	case tools.ListDeployments:
		return prepare(d, name, raw, func(ctx context.Context, a tools.ListDeploymentsArgs) (any, error) {
			return d.api.ListDeployments(ctx, a.Project, deployhq.ListDeploymentsOptions{
				Page:       a.Page,
				ServerUUID: a.ServerUUID,
			})
		})
	case tools.GetDeployment:
		return prepare(d, name, raw, func(ctx context.Context, a tools.DeploymentArgs) (any, error) {
			return d.api.GetDeployment(ctx, a.Project, a.UUID)
		})
	case tools.GetDeploymentLog:
		return prepare(d, name, raw, func(ctx context.Context, a tools.DeploymentArgs) (any, error) {
			text, err := d.api.GetDeploymentLog(ctx, a.Project, a.UUID)
			if err != nil {
				return nil, err
			}
			return DeploymentLog{Project: a.Project, UUID: a.UUID, Log: text}, nil
		})
	case tools.CreateDeployment:
		return prepare(d, name, raw, func(ctx context.Context, a tools.CreateDeploymentArgs) (any, error) {
			return d.api.CreateDeployment(ctx, a.Project, a.CreateDeploymentParams)
		})
	default:
		return nil, fmt.Errorf("%w: %w: %s", tools.ErrUnknownTool, ErrNoHandler, name)
	}
}

func prepare[T any](
	d *Dispatcher,
	name string,
	raw json.RawMessage,
	fn func(context.Context, T) (any, error),
) (invocation, error) {
	args, err := tools.Decode[T](d.registry, name, raw)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) (any, error) {
		return fn(ctx, args)
	}, nil
}
