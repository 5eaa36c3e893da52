package gns3_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newtron-network/gns3lab/internal/testutil"
	"github.com/newtron-network/gns3lab/pkg/gns3"
	"github.com/newtron-network/gns3lab/pkg/util"
)

func TestNewClient_BaseURL(t *testing.T) {
	c := gns3.NewClient(gns3.Config{Server: "10.0.0.1", Port: 3080})
	assert.Equal(t, "http://10.0.0.1:3080/v2", c.BaseURL())
}

func TestProjectLifecycle(t *testing.T) {
	fake := testutil.NewFakeController(t)
	c := gns3.NewClient(fake.Config())
	ctx := testutil.Context(t)

	p, err := c.CreateProject(ctx, "lab1")
	require.NoError(t, err)
	assert.Equal(t, "lab1", p.Name)
	assert.NotEmpty(t, p.ProjectID)

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, p.ProjectID, projects[0].ProjectID)

	require.NoError(t, c.DeleteProject(ctx, p.ProjectID))

	projects, err = c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestCreateProject_Conflict(t *testing.T) {
	fake := testutil.NewFakeController(t)
	fake.AddProject("lab1")
	c := gns3.NewClient(fake.Config())

	_, err := c.CreateProject(testutil.Context(t), "lab1")
	require.Error(t, err)

	var se *gns3.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "create project", se.Call)
	assert.Equal(t, http.StatusConflict, se.Status)
	assert.Equal(t, http.StatusCreated, se.Expected)
	assert.Contains(t, se.Message, "already exists")
	assert.ErrorIs(t, err, util.ErrUnexpectedStatus)
}

func TestCreateProject_InvalidID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"project_id":"not-a-uuid","name":"lab1"}`))
	}))
	defer srv.Close()

	c := gns3.NewClient(gns3.Config{HTTPClient: rewriteClient(srv.URL)})
	_, err := c.CreateProject(context.Background(), "lab1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid project_id")
}

func TestNodesAndLinks(t *testing.T) {
	fake := testutil.NewFakeController(t, "Core Router")
	c := gns3.NewClient(fake.Config())
	ctx := testutil.Context(t)

	p, err := c.CreateProject(ctx, "lab1")
	require.NoError(t, err)

	appliances, err := c.ListAppliances(ctx)
	require.NoError(t, err)
	require.Len(t, appliances, 1)
	assert.Equal(t, "Core Router", appliances[0].Name)

	for i := 0; i < 2; i++ {
		err := c.CreateNodeFromAppliance(ctx, p.ProjectID, appliances[0].ApplianceID,
			gns3.NodePlacement{ComputeID: "local", X: i * 100, Y: 0})
		require.NoError(t, err)
	}

	nodes, err := c.ListNodes(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "CoreRouter-1", nodes[0].Name)
	assert.Equal(t, "CoreRouter-2", nodes[1].Name)
	assert.NotZero(t, nodes[0].Console)

	node, err := c.GetNode(ctx, p.ProjectID, nodes[1].NodeID)
	require.NoError(t, err)
	require.Len(t, node.Ports, testutil.DefaultPortsPerNode)
	assert.Equal(t, 1, node.Ports[3].AdapterNumber)
	assert.Equal(t, 1, node.Ports[3].PortNumber)

	link, err := c.CreateLink(ctx, p.ProjectID, [2]gns3.LinkNode{
		{NodeID: nodes[0].NodeID, AdapterNumber: 0, PortNumber: 0},
		{NodeID: nodes[1].NodeID, AdapterNumber: 1, PortNumber: 1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, link.LinkID)

	links := fake.Links(p.ProjectID)
	require.Len(t, links, 1)
	assert.Equal(t, nodes[0].NodeID, links[0].Nodes[0].NodeID)
	assert.Equal(t, nodes[1].NodeID, links[0].Nodes[1].NodeID)

	require.NoError(t, c.StartNodes(ctx, p.ProjectID))
	assert.True(t, fake.Started(p.ProjectID))
}

func TestUnexpectedStatus(t *testing.T) {
	tests := []struct {
		call string
		run  func(c *gns3.Client, ctx context.Context) error
	}{
		{"list projects", func(c *gns3.Client, ctx context.Context) error {
			_, err := c.ListProjects(ctx)
			return err
		}},
		{"list appliances", func(c *gns3.Client, ctx context.Context) error {
			_, err := c.ListAppliances(ctx)
			return err
		}},
		{"start nodes", func(c *gns3.Client, ctx context.Context) error {
			return c.StartNodes(ctx, "p1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.call, func(t *testing.T) {
			fake := testutil.NewFakeController(t)
			fake.FailOn(tt.call, http.StatusInternalServerError)
			c := gns3.NewClient(fake.Config())

			err := tt.run(c, testutil.Context(t))
			require.Error(t, err)
			var se *gns3.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.call, se.Call)
			assert.Equal(t, http.StatusInternalServerError, se.Status)
			assert.True(t, strings.HasPrefix(err.Error(), "gns3: "+tt.call+": "))
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host, port := (&testutil.FakeController{Server: srv}).HostPort()
	srv.Close()

	var observed []int
	c := gns3.NewClient(gns3.Config{Server: host, Port: port, Timeout: time.Second},
		gns3.WithObserver(func(_ string, status int, _ time.Duration) {
			observed = append(observed, status)
		}))

	_, err := c.ListProjects(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, util.ErrUnexpectedStatus)
	assert.Equal(t, []int{0}, observed)
}

func TestObserver(t *testing.T) {
	fake := testutil.NewFakeController(t)
	var calls []string
	var statuses []int
	c := gns3.NewClient(fake.Config(), gns3.WithObserver(func(call string, status int, _ time.Duration) {
		calls = append(calls, call)
		statuses = append(statuses, status)
	}))
	ctx := testutil.Context(t)

	p, err := c.CreateProject(ctx, "lab1")
	require.NoError(t, err)
	require.NoError(t, c.DeleteProject(ctx, p.ProjectID))

	assert.Equal(t, []string{"create project", "delete project"}, calls)
	assert.Equal(t, []int{http.StatusCreated, http.StatusNoContent}, statuses)
}

func TestStatusError_Message(t *testing.T) {
	err := &gns3.StatusError{
		Call: "create link", Method: "POST", Path: "/projects/p/links",
		Status: 409, Expected: 201, Message: "port in use",
	}
	assert.Equal(t, "gns3: create link: POST /projects/p/links returned HTTP 409 (expected 201): port in use", err.Error())
}

// rewriteClient sends every request to base regardless of the URL host.
func rewriteClient(base string) *http.Client {
	return &http.Client{Transport: &rewriteTransport{base: base}}
}

type rewriteTransport struct {
	base string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = "http"
	r.URL.Host = strings.TrimPrefix(t.base, "http://")
	return http.DefaultTransport.RoundTrip(r)
}
