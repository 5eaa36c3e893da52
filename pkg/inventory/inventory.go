// Package inventory builds a grouped Ansible host inventory from a deployed
// topology and renders it as INI or YAML, or publishes it to Redis.
package inventory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/newtron-network/gns3lab/pkg/topology"
	"github.com/newtron-network/gns3lab/pkg/util"
)

// Inventory formats.
const (
	FormatINI  = "ini"
	FormatYAML = "yaml"
)

// Host is one inventory entry.
type Host struct {
	Name    string
	Address string // ansible_host; empty when the instance has no IP
	NodeID  string
	Console int
}

// Group collects the hosts sharing one OS tag.
type Group struct {
	Name  string
	Hosts []Host
}

// Inventory is the grouped host list of one project. Groups are in order of
// first appearance in the topology; hosts keep topology order.
type Inventory struct {
	Project string
	Groups  []*Group
}

// Build groups every instance by its effective OS tag. Instances tagged
// with sentinel are left out.
func Build(spec *topology.Spec, sentinel string) *Inventory {
	inv := &Inventory{Project: spec.ProjectName}
	byName := make(map[string]*Group)

	for _, m := range spec.Members() {
		tag := m.OS()
		if tag == "" || tag == sentinel {
			continue
		}
		g, ok := byName[tag]
		if !ok {
			g = &Group{Name: tag}
			byName[tag] = g
			inv.Groups = append(inv.Groups, g)
		}
		g.Hosts = append(g.Hosts, Host{
			Name:    m.Instance.Name,
			Address: util.HostAddress(m.Instance.IP),
			NodeID:  m.Instance.NodeID,
			Console: m.Instance.Console,
		})
	}
	return inv
}

// HostCount returns the number of hosts across all groups.
func (inv *Inventory) HostCount() int {
	n := 0
	for _, g := range inv.Groups {
		n += len(g.Hosts)
	}
	return n
}

// FileName returns the conventional inventory file name for a project.
func FileName(project, format string) string {
	if format == FormatYAML {
		return "hosts-" + project + ".yml"
	}
	return "hosts-" + project
}

// Write renders the inventory in the given format.
func (inv *Inventory) Write(w io.Writer, format string) error {
	switch format {
	case FormatINI, "":
		return inv.WriteINI(w)
	case FormatYAML:
		return inv.WriteYAML(w)
	}
	return fmt.Errorf("inventory: unknown format %q: %w", format, util.ErrInvalidConfig)
}

// WriteFile writes the inventory into dir under its conventional name and
// returns the path written.
func (inv *Inventory) WriteFile(dir, format string) (string, error) {
	path := filepath.Join(dir, FileName(inv.Project, format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("inventory: %w", err)
	}
	if err := inv.Write(f, format); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("inventory: %w", err)
	}
	return path, nil
}
