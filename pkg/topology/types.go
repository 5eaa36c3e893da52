// Package topology holds the declarative topology description and the
// identifiers the deploy pipeline resolves into it.
//
// The same structure is read from topology_config.yml and, once enriched
// with project, template, node and port identifiers, written back out as
// the topology_full.yml snapshot.
package topology

import "strconv"

// DefaultConfigFile is the conventional topology file name.
const DefaultConfigFile = "topology_config.yml"

// DefaultSnapshotFile is the conventional name of the resolved snapshot.
const DefaultSnapshotFile = "topology_full.yml"

// Spec is the top-level topology description.
type Spec struct {
	Server      string            `yaml:"gns3_server"`
	Port        int               `yaml:"gns3_port"`
	ProjectName string            `yaml:"project_name"`
	ProjectID   string            `yaml:"project_id,omitempty"` // resolved
	Appliances  []*ApplianceGroup `yaml:"nodes"`
	Links       []Link            `yaml:"links,omitempty"`

	index map[string]*Instance
}

// ApplianceGroup is a set of instances created from one appliance template.
type ApplianceGroup struct {
	Name       string      `yaml:"appliance_name"`
	TemplateID string      `yaml:"appliance_id,omitempty"` // resolved
	OS         string      `yaml:"os,omitempty"`           // day-0 script selector
	Instances  []*Instance `yaml:"instances"`
}

// Instance is one node to be created from its group's appliance.
type Instance struct {
	Name     string `yaml:"name,omitempty"`     // generated
	Sequence int    `yaml:"sequence,omitempty"` // generated, 1-based
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	IP       string `yaml:"ip,omitempty"`
	Gateway  string `yaml:"gw,omitempty"`
	OS       string `yaml:"os,omitempty"`      // overrides the group tag
	NodeID   string `yaml:"node_id,omitempty"` // resolved
	Console  int    `yaml:"console,omitempty"` // resolved
}

// Link is a point-to-point connection. A valid link has exactly two
// endpoints; index 0 is side A and index 1 is side Z.
type Link []*Endpoint

// A returns side 0 of the link.
func (l Link) A() *Endpoint { return l[0] }

// Z returns side 1 of the link.
func (l Link) Z() *Endpoint { return l[1] }

// Endpoint references an instance interface by generated name and the
// user-facing interface index.
type Endpoint struct {
	Name          string `yaml:"name"`
	Interface     int    `yaml:"interface"`
	NodeID        string `yaml:"node_id,omitempty"`        // resolved
	AdapterNumber *int   `yaml:"adapter_number,omitempty"` // resolved
	PortNumber    *int   `yaml:"port_number,omitempty"`    // resolved
}

// Resolved reports whether the endpoint carries a node/adapter/port triple.
func (e *Endpoint) Resolved() bool {
	return e.NodeID != "" && e.AdapterNumber != nil && e.PortNumber != nil
}

// Member pairs an instance with the appliance group that owns it.
type Member struct {
	Group    *ApplianceGroup
	Instance *Instance
}

// OS returns the effective operating-system tag: the instance override if
// set, otherwise the group's.
func (m Member) OS() string {
	if m.Instance.OS != "" {
		return m.Instance.OS
	}
	return m.Group.OS
}

// LoginID is the console-login identifier handed to day-0 scripts,
// e.g. "ios2" for the second instance tagged "ios".
func (m Member) LoginID() string {
	return m.OS() + strconv.Itoa(m.Instance.Sequence)
}
