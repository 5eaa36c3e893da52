package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/newtron-network/gns3lab/pkg/gns3"
)

// DefaultPortsPerNode is the number of ports every fake node exposes.
const DefaultPortsPerNode = 4

// Call is one request received by the fake controller.
type Call struct {
	Name   string // client call name, e.g. "create link"
	Method string
	Path   string
	Body   string
}

type failure struct {
	after  int // successful calls before failing
	status int
}

type fakeProject struct {
	project gns3.Project
	nodes   []*gns3.Node
	links   []gns3.Link
	started bool
}

// FakeController emulates the GNS3 v2 endpoints used by the deploy
// pipeline. Nodes get DefaultPortsPerNode ports laid out two per adapter,
// so interface i maps to adapter i/2 port i%2.
type FakeController struct {
	Server *httptest.Server

	mu           sync.Mutex
	projects     map[string]*fakeProject
	order        []string // project IDs in creation order
	appliances   []gns3.Appliance
	portsPerNode int
	nextConsole  int
	calls        []Call
	counts       map[string]int
	failures     map[string]failure
}

// NewFakeController starts a fake controller whose catalog holds the named
// appliances. The server is closed via t.Cleanup.
func NewFakeController(t *testing.T, appliances ...string) *FakeController {
	t.Helper()
	f := &FakeController{
		projects:     make(map[string]*fakeProject),
		portsPerNode: DefaultPortsPerNode,
		nextConsole:  5000,
		counts:       make(map[string]int),
		failures:     make(map[string]failure),
	}
	for _, name := range appliances {
		f.appliances = append(f.appliances, gns3.Appliance{ApplianceID: uuid.NewString(), Name: name})
	}

	r := chi.NewRouter()
	r.Route("/v2", func(r chi.Router) {
		r.Get("/projects", f.route("list projects", f.listProjects))
		r.Post("/projects", f.route("create project", f.createProject))
		r.Delete("/projects/{project}", f.route("delete project", f.deleteProject))
		r.Get("/appliances", f.route("list appliances", f.listAppliances))
		r.Post("/projects/{project}/appliances/{appliance}", f.route("create node", f.createNode))
		r.Get("/projects/{project}/nodes", f.route("list nodes", f.listNodes))
		r.Post("/projects/{project}/nodes/start", f.route("start nodes", f.startNodes))
		r.Get("/projects/{project}/nodes/{node}", f.route("get node", f.getNode))
		r.Post("/projects/{project}/links", f.route("create link", f.createLink))
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// Config returns a client configuration pointing at the fake.
func (f *FakeController) Config() gns3.Config {
	host, port := f.HostPort()
	return gns3.Config{Server: host, Port: port}
}

// HostPort returns the host and port the fake listens on.
func (f *FakeController) HostPort() (string, int) {
	host, portStr, _ := net.SplitHostPort(strings.TrimPrefix(f.Server.URL, "http://"))
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// SetPortsPerNode changes the port count for nodes created afterwards.
func (f *FakeController) SetPortsPerNode(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.portsPerNode = n
}

// FailOn makes every request for call answer with status.
func (f *FakeController) FailOn(call string, status int) {
	f.FailAfter(call, 0, status)
}

// FailAfter lets n requests for call succeed, then answers with status.
func (f *FakeController) FailAfter(call string, n, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[call] = failure{after: n, status: status}
}

// AddProject seeds an existing project and returns its ID.
func (f *FakeController) AddProject(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addProjectLocked(name).project.ProjectID
}

// ApplianceID returns the catalog ID of the named appliance.
func (f *FakeController) ApplianceID(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appliances {
		if a.Name == name {
			return a.ApplianceID
		}
	}
	return ""
}

// Projects returns all projects in creation order.
func (f *FakeController) Projects() []gns3.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []gns3.Project
	for _, id := range f.order {
		if p, ok := f.projects[id]; ok {
			out = append(out, p.project)
		}
	}
	return out
}

// Nodes returns copies of the nodes of a project.
func (f *FakeController) Nodes(projectID string) []gns3.Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	if !ok {
		return nil
	}
	out := make([]gns3.Node, 0, len(p.nodes))
	for _, n := range p.nodes {
		out = append(out, *n)
	}
	return out
}

// Links returns the links created in a project.
func (f *FakeController) Links(projectID string) []gns3.Link {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.projects[projectID]; ok {
		return append([]gns3.Link(nil), p.links...)
	}
	return nil
}

// Started reports whether start-all was called for a project.
func (f *FakeController) Started(projectID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	return ok && p.started
}

// Calls returns every request received, in order.
func (f *FakeController) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many requests were received for call.
func (f *FakeController) CallCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[call]
}

// route records the request and applies injected failures before
// dispatching to h. Handlers run with f.mu held.
func (f *FakeController) route(name string, h func(w http.ResponseWriter, r *http.Request, body []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, Call{Name: name, Method: r.Method, Path: r.URL.Path, Body: string(body)})
		f.counts[name]++

		if fail, ok := f.failures[name]; ok && f.counts[name] > fail.after {
			writeError(w, fail.status, "injected failure for "+name)
			return
		}
		h(w, r, body)
	}
}

func (f *FakeController) addProjectLocked(name string) *fakeProject {
	p := &fakeProject{project: gns3.Project{ProjectID: uuid.NewString(), Name: name, Status: "opened"}}
	f.projects[p.project.ProjectID] = p
	f.order = append(f.order, p.project.ProjectID)
	return p
}

func (f *FakeController) project(w http.ResponseWriter, r *http.Request) (*fakeProject, bool) {
	p, ok := f.projects[chi.URLParam(r, "project")]
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
	}
	return p, ok
}

func (f *FakeController) listProjects(w http.ResponseWriter, _ *http.Request, _ []byte) {
	out := []gns3.Project{}
	for _, id := range f.order {
		if p, ok := f.projects[id]; ok {
			out = append(out, p.project)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeController) createProject(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	for _, p := range f.projects {
		if p.project.Name == req.Name {
			writeError(w, http.StatusConflict, "project '"+req.Name+"' already exists")
			return
		}
	}
	p := f.addProjectLocked(req.Name)
	writeJSON(w, http.StatusCreated, p.project)
}

func (f *FakeController) deleteProject(w http.ResponseWriter, r *http.Request, _ []byte) {
	if _, ok := f.project(w, r); !ok {
		return
	}
	delete(f.projects, chi.URLParam(r, "project"))
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeController) listAppliances(w http.ResponseWriter, _ *http.Request, _ []byte) {
	writeJSON(w, http.StatusOK, append([]gns3.Appliance{}, f.appliances...))
}

func (f *FakeController) createNode(w http.ResponseWriter, r *http.Request, body []byte) {
	p, ok := f.project(w, r)
	if !ok {
		return
	}
	var appliance *gns3.Appliance
	for i := range f.appliances {
		if f.appliances[i].ApplianceID == chi.URLParam(r, "appliance") {
			appliance = &f.appliances[i]
		}
	}
	if appliance == nil {
		writeError(w, http.StatusNotFound, "appliance not found")
		return
	}
	var placement gns3.NodePlacement
	if err := json.Unmarshal(body, &placement); err != nil || placement.ComputeID == "" {
		writeError(w, http.StatusBadRequest, "compute_id is required")
		return
	}

	// GNS3 names nodes after the template with an increasing suffix.
	seq := 1
	prefix := strings.ReplaceAll(appliance.Name, " ", "")
	for _, n := range p.nodes {
		if strings.HasPrefix(n.Name, prefix+"-") {
			seq++
		}
	}
	node := &gns3.Node{
		NodeID:      uuid.NewString(),
		Name:        fmt.Sprintf("%s-%d", prefix, seq),
		Console:     f.nextConsole,
		ConsoleType: "telnet",
		Status:      "stopped",
	}
	f.nextConsole++
	for i := 0; i < f.portsPerNode; i++ {
		node.Ports = append(node.Ports, gns3.Port{
			Name:          fmt.Sprintf("Ethernet%d", i),
			AdapterNumber: i / 2,
			PortNumber:    i % 2,
		})
	}
	p.nodes = append(p.nodes, node)
	writeJSON(w, http.StatusCreated, node)
}

func (f *FakeController) listNodes(w http.ResponseWriter, r *http.Request, _ []byte) {
	p, ok := f.project(w, r)
	if !ok {
		return
	}
	out := make([]gns3.Node, 0, len(p.nodes))
	for _, n := range p.nodes {
		out = append(out, *n)
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeController) getNode(w http.ResponseWriter, r *http.Request, _ []byte) {
	p, ok := f.project(w, r)
	if !ok {
		return
	}
	for _, n := range p.nodes {
		if n.NodeID == chi.URLParam(r, "node") {
			writeJSON(w, http.StatusOK, n)
			return
		}
	}
	writeError(w, http.StatusNotFound, "node not found")
}

func (f *FakeController) createLink(w http.ResponseWriter, r *http.Request, body []byte) {
	p, ok := f.project(w, r)
	if !ok {
		return
	}
	var link gns3.Link
	if err := json.Unmarshal(body, &link); err != nil || len(link.Nodes) != 2 {
		writeError(w, http.StatusBadRequest, "a link needs exactly two nodes")
		return
	}
	for _, side := range link.Nodes {
		if !hasPort(p, side) {
			writeError(w, http.StatusConflict, fmt.Sprintf("node %s has no adapter %d port %d",
				side.NodeID, side.AdapterNumber, side.PortNumber))
			return
		}
	}
	link.LinkID = uuid.NewString()
	p.links = append(p.links, link)
	writeJSON(w, http.StatusCreated, link)
}

func (f *FakeController) startNodes(w http.ResponseWriter, r *http.Request, _ []byte) {
	p, ok := f.project(w, r)
	if !ok {
		return
	}
	p.started = true
	for _, n := range p.nodes {
		n.Status = "started"
	}
	w.WriteHeader(http.StatusNoContent)
}

func hasPort(p *fakeProject, side gns3.LinkNode) bool {
	for _, n := range p.nodes {
		if n.NodeID != side.NodeID {
			continue
		}
		for _, port := range n.Ports {
			if port.AdapterNumber == side.AdapterNumber && port.PortNumber == side.PortNumber {
				return true
			}
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg, "status": status})
}
