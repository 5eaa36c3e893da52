package topology

import (
	"strconv"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// GenerateName derives the node name for the seq'th instance (1-based) of
// an appliance: "Core Router", 2 -> "CoreRouter-2".
func GenerateName(appliance string, seq int) string {
	return util.StripSpaces(appliance) + "-" + strconv.Itoa(seq)
}

// AssignNames gives every instance its generated name and sequence number.
// Sequences are per appliance (keyed by the space-stripped name), so two
// groups of the same appliance continue one counter and never collide.
// The name index is rebuilt afterwards.
func (s *Spec) AssignNames() {
	next := make(map[string]int)
	for _, g := range s.Appliances {
		key := util.StripSpaces(g.Name)
		for _, in := range g.Instances {
			next[key]++
			in.Sequence = next[key]
			in.Name = GenerateName(g.Name, in.Sequence)
		}
	}
	s.rebuildIndex()
}

// Members returns every instance with its group, in topology order.
func (s *Spec) Members() []Member {
	var out []Member
	for _, g := range s.Appliances {
		for _, in := range g.Instances {
			out = append(out, Member{Group: g, Instance: in})
		}
	}
	return out
}

// InstanceCount returns the total number of instances across all groups.
func (s *Spec) InstanceCount() int {
	n := 0
	for _, g := range s.Appliances {
		n += len(g.Instances)
	}
	return n
}

// Lookup finds an instance by generated name.
func (s *Spec) Lookup(name string) (*Instance, bool) {
	if s.index == nil {
		s.rebuildIndex()
	}
	in, ok := s.index[name]
	return in, ok
}

func (s *Spec) rebuildIndex() {
	s.index = make(map[string]*Instance, s.InstanceCount())
	for _, g := range s.Appliances {
		for _, in := range g.Instances {
			if in.Name != "" {
				s.index[in.Name] = in
			}
		}
	}
}
