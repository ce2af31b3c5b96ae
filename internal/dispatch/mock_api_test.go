package dispatch

import (
	"context"

	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
	"github.com/stretchr/testify/mock"
)

// mockAPI is a mock implementation of the API interface
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ListProjects(ctx context.Context) ([]deployhq.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]deployhq.Project)
	return projects, args.Error(1)
}

func (m *mockAPI) GetProject(ctx context.Context, permalink string) (*deployhq.Project, error) {
	args := m.Called(ctx, permalink)
	project, _ := args.Get(0).(*deployhq.Project)
	return project, args.Error(1)
}

func (m *mockAPI) ListServers(ctx context.Context, project string) ([]deployhq.Server, error) {
	args := m.Called(ctx, project)
	servers, _ := args.Get(0).([]deployhq.Server)
	return servers, args.Error(1)
}

func (m *mockAPI) ListDeployments(
	ctx context.Context,
	project string,
	opts deployhq.ListDeploymentsOptions,
) (*deployhq.DeploymentPage, error) {
	args := m.Called(ctx, project, opts)
	page, _ := args.Get(0).(*deployhq.DeploymentPage)
	return page, args.Error(1)
}

func (m *mockAPI) GetDeployment(ctx context.Context, project, uuid string) (*deployhq.Deployment, error) {
	args := m.Called(ctx, project, uuid)
	deployment, _ := args.Get(0).(*deployhq.Deployment)
	return deployment, args.Error(1)
}

func (m *mockAPI) GetDeploymentLog(ctx context.Context, project, uuid string) (string, error) {
	args := m.Called(ctx, project, uuid)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) CreateDeployment(
	ctx context.Context,
	project string,
	params deployhq.CreateDeploymentParams,
) (*deployhq.Deployment, error) {
	args := m.Called(ctx, project, params)
	deployment, _ := args.Get(0).(*deployhq.Deployment)
	return deployment, args.Error(1)
}
