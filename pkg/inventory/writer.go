package inventory

import (
	"bufio"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteINI renders
//
//	[group]
//	name ansible_host=addr
//
// with a blank line after each group.
func (inv *Inventory) WriteINI(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, g := range inv.Groups {
		fmt.Fprintf(bw, "[%s]\n", g.Name)
		for _, h := range g.Hosts {
			if h.Address == "" {
				fmt.Fprintln(bw, h.Name)
				continue
			}
			fmt.Fprintf(bw, "%s ansible_host=%s\n", h.Name, h.Address)
		}
		fmt.Fprintln(bw)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("inventory: write ini: %w", err)
	}
	return nil
}

// WriteYAML renders all.children.<group>.hosts.<name>.ansible_host.
// A mapping node is built by hand so groups and hosts keep topology order.
func (inv *Inventory) WriteYAML(w io.Writer) error {
	children := mapping()
	for _, g := range inv.Groups {
		hosts := mapping()
		for _, h := range g.Hosts {
			vars := mapping()
			if h.Address != "" {
				appendPair(vars, "ansible_host", scalar(h.Address))
			}
			appendPair(hosts, h.Name, vars)
		}
		group := mapping()
		appendPair(group, "hosts", hosts)
		appendPair(children, g.Name, group)
	}
	all := mapping()
	appendPair(all, "children", children)
	root := mapping()
	appendPair(root, "all", all)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("inventory: write yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("inventory: write yaml: %w", err)
	}
	return nil
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}
