// Package gns3 is a typed client for the subset of the GNS3 controller v2
// REST API used to deploy a topology.
package gns3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Config holds controller connection settings.
type Config struct {
	Server     string        // controller host or IP
	Port       int           // controller port, usually 3080
	Timeout    time.Duration // per-request timeout; default 30s
	HTTPClient *http.Client  // optional; overrides Timeout
}

// Observer is called once per API call with the call name, the HTTP status
// (0 on transport failure) and the elapsed time.
type Observer func(call string, status int, elapsed time.Duration)

// Option configures a Client.
type Option func(*Client)

// WithObserver registers a per-call observer.
func WithObserver(fn Observer) Option {
	return func(c *Client) { c.observer = fn }
}

// Client talks to one GNS3 controller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
}

// NewClient creates a client for http://<server>:<port>/v2.
func NewClient(cfg Config, opts ...Option) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	c := &Client{
		baseURL:    fmt.Sprintf("http://%s:%d/v2", cfg.Server, cfg.Port),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProjects returns all projects known to the controller.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, "list projects", http.MethodGet, "/projects", nil, http.StatusOK, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// DeleteProject deletes a project by ID.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, "delete project", http.MethodDelete, "/projects/"+url.PathEscape(projectID), nil, http.StatusNoContent, nil)
}

// CreateProject creates a project and returns it with its assigned ID.
func (c *Client) CreateProject(ctx context.Context, name string) (*Project, error) {
	var project Project
	body := map[string]string{"name": name}
	if err := c.do(ctx, "create project", http.MethodPost, "/projects", body, http.StatusCreated, &project); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(project.ProjectID); err != nil {
		return nil, fmt.Errorf("gns3: create project: invalid project_id %q: %w", project.ProjectID, err)
	}
	return &project, nil
}

// ListAppliances returns the appliance template catalog.
func (c *Client) ListAppliances(ctx context.Context) ([]Appliance, error) {
	var appliances []Appliance
	if err := c.do(ctx, "list appliances", http.MethodGet, "/appliances", nil, http.StatusOK, &appliances); err != nil {
		return nil, err
	}
	return appliances, nil
}

// CreateNodeFromAppliance instantiates a node from an appliance template.
// The controller does not return the node; callers correlate by name via
// ListNodes.
func (c *Client) CreateNodeFromAppliance(ctx context.Context, projectID, applianceID string, placement NodePlacement) error {
	path := fmt.Sprintf("/projects/%s/appliances/%s", url.PathEscape(projectID), url.PathEscape(applianceID))
	return c.do(ctx, "create node", http.MethodPost, path, placement, http.StatusCreated, nil)
}

// ListNodes returns all nodes of a project.
func (c *Client) ListNodes(ctx context.Context, projectID string) ([]Node, error) {
	var nodes []Node
	path := fmt.Sprintf("/projects/%s/nodes", url.PathEscape(projectID))
	if err := c.do(ctx, "list nodes", http.MethodGet, path, nil, http.StatusOK, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetNode returns a single node including its live port list.
func (c *Client) GetNode(ctx context.Context, projectID, nodeID string) (*Node, error) {
	var node Node
	path := fmt.Sprintf("/projects/%s/nodes/%s", url.PathEscape(projectID), url.PathEscape(nodeID))
	if err := c.do(ctx, "get node", http.MethodGet, path, nil, http.StatusOK, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// CreateLink connects two node ports. Side order is preserved.
func (c *Client) CreateLink(ctx context.Context, projectID string, sides [2]LinkNode) (*Link, error) {
	var link Link
	body := Link{Nodes: []LinkNode{sides[0], sides[1]}}
	path := fmt.Sprintf("/projects/%s/links", url.PathEscape(projectID))
	if err := c.do(ctx, "create link", http.MethodPost, path, body, http.StatusCreated, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// StartNodes starts every node in a project.
func (c *Client) StartNodes(ctx context.Context, projectID string) error {
	path := fmt.Sprintf("/projects/%s/nodes/start", url.PathEscape(projectID))
	return c.do(ctx, "start nodes", http.MethodPost, path, nil, http.StatusNoContent, nil)
}

// do performs one API call and decodes the response into out when the
// status matches want. Responses with empty bodies leave out untouched.
func (c *Client) do(ctx context.Context, call, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gns3: %s: marshal request: %w", call, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gns3: %s: create request: %w", call, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(call, 0, time.Since(start))
		return fmt.Errorf("gns3: %s: %w", call, err)
	}
	defer resp.Body.Close()
	c.observe(call, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gns3: %s: read response: %w", call, err)
	}

	if resp.StatusCode != want {
		return &StatusError{
			Call:     call,
			Method:   method,
			Path:     path,
			Status:   resp.StatusCode,
			Expected: want,
			Message:  errorMessage(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("gns3: %s: decode response: %w", call, err)
	}
	return nil
}

func (c *Client) observe(call string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer(call, status, elapsed)
	}
}
