// Package deployhq is a small client for the DeployHQ REST API.
//
// Every operation makes exactly one HTTP request, bounded by the client's
// timeout. Failures are always returned as *Error, classified by Kind.
package deployhq

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

const (
	// PlatformDomain is the domain under which every account has its own host.
	PlatformDomain = "deployhq.com"

	// DefaultTimeout bounds each request when Config.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	userAgent = "deployhq-mcp"
)

// Credentials identify a DeployHQ user within an account.
type Credentials struct {
	Email   string
	APIKey  string
	Account string
}

// Complete reports whether every field is set.
func (c Credentials) Complete() bool {
	return c.Email != "" && c.APIKey != "" && c.Account != ""
}

// Config is the client construction input.
type Config struct {
	Credentials

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// BaseURL overrides the https://{account}.deployhq.com endpoint.
	BaseURL string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one DeployHQ account with one set of credentials.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL    string
	authHeader string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New validates cfg and returns a client. Missing credentials are a
// KindConfiguration error.
func New(cfg Config) (*Client, error) {
	if !cfg.Complete() {
		return nil, newConfigurationError("Missing required configuration: username, password, or account")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		host := cfg.Account + "." + PlatformDomain
		if !httpguts.ValidHostHeader(host) || strings.ContainsAny(cfg.Account, "/?#@:") {
			return nil, newConfigurationError(fmt.Sprintf("invalid account name %q", cfg.Account))
		}
		baseURL = "https://" + host
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().WithGroup("deployhq")
	}

	token := base64.StdEncoding.EncodeToString([]byte(cfg.Email + ":" + cfg.APIKey))

	return &Client{
		baseURL:    baseURL,
		authHeader: "Basic " + token,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the endpoint every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// ListProjects lists all projects in the account.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches one project by permalink or identifier.
func (c *Client) GetProject(ctx context.Context, permalink string) (*Project, error) {
	var project Project
	if err := c.doJSON(ctx, http.MethodGet, projectPath(permalink), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListServers lists the servers of a project. The API returns a bare array.
func (c *Client) ListServers(ctx context.Context, project string) ([]Server, error) {
	var servers []Server
	if err := c.doJSON(ctx, http.MethodGet, projectPath(project)+"/servers", nil, &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// ListDeployments lists one page of deployments for a project.
func (c *Client) ListDeployments(
	ctx context.Context,
	project string,
	opts ListDeploymentsOptions,
) (*DeploymentPage, error) {
	var page DeploymentPage
	if err := c.doJSON(ctx, http.MethodGet, deploymentsPath(project, opts), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetDeployment fetches a single deployment.
func (c *Client) GetDeployment(ctx context.Context, project, uuid string) (*Deployment, error) {
	var deployment Deployment
	if err := c.doJSON(ctx, http.MethodGet, deploymentPath(project, uuid), nil, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

// GetDeploymentLog returns the plain-text log of a deployment.
func (c *Client) GetDeploymentLog(ctx context.Context, project, uuid string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, deploymentPath(project, uuid)+"/log", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// CreateDeployment queues or previews a deployment.
func (c *Client) CreateDeployment(
	ctx context.Context,
	project string,
	params CreateDeploymentParams,
) (*Deployment, error) {
	payload := struct {
		Deployment CreateDeploymentParams `json:"deployment"`
	}{Deployment: params}

	var deployment Deployment
	if err := c.doJSON(ctx, http.MethodPost, projectPath(project)+"/deployments", payload, &deployment); err != nil {
		return nil, err
	}
	return &deployment, nil
}

// ValidateCredentials performs one authenticated request and discards the result.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/projects", nil)
	return err
}

func projectPath(project string) string {
	return "/projects/" + url.PathEscape(project)
}

func deploymentPath(project, uuid string) string {
	return projectPath(project) + "/deployments/" + url.PathEscape(uuid)
}

// deploymentsPath appends page before the server filter.
func deploymentsPath(project string, opts ListDeploymentsOptions) string {
	path := projectPath(project) + "/deployments"

	var params []string
	if opts.Page > 0 {
		params = append(params, "page="+strconv.Itoa(opts.Page))
	}
	if opts.ServerUUID != "" {
		params = append(params, "to="+url.QueryEscape(opts.ServerUUID))
	}
	if len(params) == 0 {
		return path
	}
	return path + "?" + strings.Join(params, "&")
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newPlatformError(fmt.Sprintf("Request failed: invalid JSON response: %v", err), 0, string(data), err)
	}
	return nil
}

// do issues one request and classifies the outcome. The returned body is
// only meaningful for 2xx responses.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, newPlatformError(fmt.Sprintf("Request failed: %v", err), 0, nil, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, newPlatformError(fmt.Sprintf("Request failed: %v", err), 0, nil, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("Sending request", "method", method, "path", path)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("Received response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewAuthenticationError("Invalid credentials or insufficient permissions")

	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, NewValidationError("Validation failed", decodeErrorBody(resp.Body))

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		text := "Unknown error"
		if raw, readErr := io.ReadAll(resp.Body); readErr == nil {
			text = string(raw)
		}
		return nil, newPlatformError(
			"API request failed: "+http.StatusText(resp.StatusCode),
			resp.StatusCode,
			text,
			nil,
		)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, err)
	}
	return data, nil
}

// transportError distinguishes our own timeout from every other failure.
func (c *Client) transportError(parent, reqCtx context.Context, err error) error {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return NewTimeoutError(err)
	}
	return newPlatformError(fmt.Sprintf("Request failed: %v", err), 0, err.Error(), err)
}

// decodeErrorBody is best effort: anything unparseable becomes an empty object.
func decodeErrorBody(r io.Reader) any {
	var detail any
	if err := json.NewDecoder(r).Decode(&detail); err != nil || detail == nil {
		return map[string]any{}
	}
	return detail
}
