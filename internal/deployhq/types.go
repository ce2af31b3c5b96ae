package deployhq

// Repository describes the source control settings of a project.
type Repository struct {
	ScmType        string `json:"scm_type"`
	URL            string `json:"url"`
	Branch         string `json:"branch"`
	HostingService string `json:"hosting_service,omitempty"`
}

// Project is a DeployHQ project as returned by the API.
type Project struct {
	Name           string      `json:"name"`
	Permalink      string      `json:"permalink"`
	Identifier     string      `json:"identifier,omitempty"`
	Zone           string      `json:"zone,omitempty"`
	PublicKey      string      `json:"public_key,omitempty"`
	Repository     *Repository `json:"repository,omitempty"`
	LastDeployedAt string      `json:"last_deployed_at,omitempty"`
	AutoDeployURL  string      `json:"auto_deploy_url,omitempty"`
}

// Server is a deployment target configured for a project.
type Server struct {
	Identifier          string `json:"identifier"`
	Name                string `json:"name"`
	ProtocolType        string `json:"protocol_type,omitempty"`
	ServerPath          string `json:"server_path,omitempty"`
	Hostname            string `json:"hostname,omitempty"`
	Username            string `json:"username,omitempty"`
	Port                int    `json:"port,omitempty"`
	UseSSHKeys          *bool  `json:"use_ssh_keys,omitempty"`
	AutomaticDeployment *bool  `json:"automatic_deployment,omitempty"`
	BranchToDeploy      string `json:"branch_to_deploy,omitempty"`
}

// ProjectRef is the short project reference embedded in a deployment.
type ProjectRef struct {
	Name      string `json:"name"`
	Permalink string `json:"permalink"`
}

// Deployment is a single deployment run.
type Deployment struct {
	Identifier    string      `json:"identifier"`
	Status        string      `json:"status"`
	Servers       []Server    `json:"servers,omitempty"`
	Project       *ProjectRef `json:"project,omitempty"`
	StartRevision any         `json:"start_revision,omitempty"`
	EndRevision   any         `json:"end_revision,omitempty"`
	Branch        string      `json:"branch,omitempty"`
	CreatedAt     string      `json:"created_at,omitempty"`
	StartedAt     string      `json:"started_at,omitempty"`
	CompletedAt   string      `json:"completed_at,omitempty"`
}

// Pagination is the paging block of a listing response.
type Pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
}

// DeploymentPage is one page of deployments.
type DeploymentPage struct {
	Records    []Deployment `json:"records"`
	Pagination Pagination   `json:"pagination"`
}

// Deployment modes accepted by CreateDeploymentParams.Mode.
const (
	ModeQueue   = "queue"
	ModePreview = "preview"
)

// CreateDeploymentParams is the body of a deployment creation request.
type CreateDeploymentParams struct {
	ParentIdentifier string `json:"parent_identifier"`
	StartRevision    string `json:"start_revision"`
	EndRevision      string `json:"end_revision"`
	Branch           string `json:"branch,omitempty"`
	Mode             string `json:"mode,omitempty"`
	CopyConfigFiles  *bool  `json:"copy_config_files,omitempty"`
	RunBuildCommands *bool  `json:"run_build_commands,omitempty"`
	UseBuildCache    *bool  `json:"use_build_cache,omitempty"`
	UseLatest        string `json:"use_latest,omitempty"`
}

// ListDeploymentsOptions filters a deployment listing. Zero values are omitted.
type ListDeploymentsOptions struct {
	Page       int
	ServerUUID string
}
