package tools

import (
	"math"

	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/google/jsonschema-go/jsonschema"
)

// Tool names.
const (
	ListProjects     = "list_projects"
	GetProject       = "get_project"
	ListServers      = "list_servers"
	ListDeployments  = "list_deployments"
	GetDeployment    = "get_deployment"
	GetDeploymentLog = "get_deployment_log"
	CreateDeployment = "create_deployment"
)

// MaxPage is the largest page number list_deployments accepts.
const MaxPage = math.MaxInt32

// NoArgs is the argument record of tools without parameters.
type NoArgs struct{}

// GetProjectArgs are the arguments of get_project.
type GetProjectArgs struct {
	Permalink string `json:"permalink"`
}

// ProjectArgs are the arguments of list_servers.
type ProjectArgs struct {
	Project string `json:"project"`
}

// ListDeploymentsArgs are the arguments of list_deployments.
type ListDeploymentsArgs struct {
	Project    string `json:"project"`
	Page       int    `json:"page,omitempty"`
	ServerUUID string `json:"server_uuid,omitempty"`
}

// DeploymentArgs are the arguments of get_deployment and get_deployment_log.
type DeploymentArgs struct {
	Project string `json:"project"`
	UUID    string `json:"uuid"`
}

// CreateDeploymentArgs are the arguments of create_deployment. Everything
// except Project is forwarded as the deployment payload.
type CreateDeploymentArgs struct {
	Project string `json:"project"`
	deployhq.CreateDeploymentParams
}

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func boolean(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: description}
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

// Descriptors returns fresh descriptors for every DeployHQ tool, in the
// order they are advertised.
func Descriptors() []*Descriptor {
	return []*Descriptor{
		{
			Name: ListProjects,
			Description: "List all projects in the DeployHQ account. Returns project names, permalinks, " +
				"repository information, and deployment status.",
			Schema: object(nil, nil),
		},
		{
			Name: GetProject,
			Description: "Get detailed information about a specific project including repository details, " +
				"SSH keys, and deployment URLs.",
			Schema: object([]string{"permalink"}, map[string]*jsonschema.Schema{
				"permalink": str("Project permalink or identifier"),
			}),
		},
		{
			Name: ListServers,
			Description: "List all servers configured for a project. Returns server names, hostnames, " +
				"protocols, paths, and deployment settings.",
			Schema: object([]string{"project"}, map[string]*jsonschema.Schema{
				"project": str("Project permalink"),
			}),
		},
		{
			Name: ListDeployments,
			Description: "List deployments for a project with pagination support. Returns deployment status, " +
				"timestamps, revisions, and server information. Can be filtered by server UUID.",
			Schema: object([]string{"project"}, map[string]*jsonschema.Schema{
				"project":     str("Project permalink"),
				"page": {
					Type:        "integer",
					Minimum:     jsonschema.Ptr(1.0),
					Maximum:     jsonschema.Ptr(float64(MaxPage)),
					Description: "Page number for pagination, starting at 1 (optional)",
				},
				"server_uuid": str("Filter deployments by server UUID (optional)"),
			}),
		},
		{
			Name: GetDeployment,
			Description: "Get detailed information about a specific deployment including its status, " +
				"files changed, and server details.",
			Schema: object([]string{"project", "uuid"}, map[string]*jsonschema.Schema{
				"project": str("Project permalink"),
				"uuid":    str("Deployment UUID"),
			}),
		},
		{
			Name: GetDeploymentLog,
			Description: "Get the deployment log for a specific deployment. Returns the complete log output " +
				"as text, useful for debugging failed or completed deployments.",
			Schema: object([]string{"project", "uuid"}, map[string]*jsonschema.Schema{
				"project": str("Project permalink"),
				"uuid":    str("Deployment UUID"),
			}),
		},
		{
			Name: CreateDeployment,
			Description: "Create a new deployment for a project. Can queue for immediate deployment or " +
				"create a preview. Requires server UUID and commit revisions.",
			Mutating: true,
			Schema: object(
				[]string{"project", "parent_identifier", "start_revision", "end_revision"},
				map[string]*jsonschema.Schema{
					"project":           str("Project permalink"),
					"parent_identifier": str("Server or server group UUID to deploy to"),
					"start_revision":    str("Starting commit hash or revision"),
					"end_revision":      str("Ending commit hash or revision (usually HEAD or latest)"),
					"branch":            str("Branch to deploy from (optional)"),
					"mode": {
						Type:        "string",
						Enum:        []any{deployhq.ModeQueue, deployhq.ModePreview},
						Description: `Deployment mode: "queue" to deploy immediately, "preview" to preview changes (optional)`,
					},
					"copy_config_files":  boolean("Whether to copy configuration files (optional)"),
					"run_build_commands": boolean("Whether to run build commands (optional)"),
					"use_build_cache":    boolean("Whether to use the build cache (optional)"),
					"use_latest":         str(`Set to "1" to use the last deployed commit as start_revision (optional)`),
				},
			),
		},
	}
}

// Default returns a registry of every DeployHQ tool.
func Default() *Registry {
	r, err := NewRegistry(Descriptors()...)
	if err != nil {
		// the catalogue is static; a failure here is a programming error
		panic(err)
	}
	return r
}
