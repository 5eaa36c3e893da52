package topology

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// Load reads a topology YAML file and validates its structure.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topology: reading %s: %w", path, err)
	}
	spec, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("topology: %s: %w", path, err)
	}
	return spec, nil
}

// Decode parses and validates a topology from r.
func Decode(r io.Reader) (*Spec, error) {
	var spec Spec
	if err := yaml.NewDecoder(r).Decode(&spec); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty topology: %w", util.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("parsing topology YAML: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the structural requirements of the topology. It does not
// check semantics the controller itself enforces (link cycles, port reuse).
func (s *Spec) Validate() error {
	v := &util.ValidationBuilder{}

	v.Add(s.Server != "", "gns3_server is required")
	v.Add(s.Port > 0 && s.Port <= 65535, fmt.Sprintf("gns3_port must be between 1 and 65535, got %d", s.Port))
	v.Add(s.ProjectName != "", "project_name is required")
	v.Add(len(s.Appliances) > 0, "at least one appliance group is required under nodes")

	for i, g := range s.Appliances {
		if g == nil {
			v.AddErrorf("nodes[%d]: empty appliance group", i)
			continue
		}
		v.Add(g.Name != "", fmt.Sprintf("nodes[%d]: appliance_name is required", i))
		for j, in := range g.Instances {
			if in == nil {
				v.AddErrorf("nodes[%d].instances[%d]: empty instance", i, j)
				continue
			}
			// ip and gw are handed to day-0 scripts verbatim; hostnames are fine
			if in.IP != "" && util.HostAddress(in.IP) == "" {
				v.AddErrorf("nodes[%d].instances[%d]: ip %q has no host address", i, j, in.IP)
			}
		}
	}

	for i, l := range s.Links {
		if len(l) != 2 {
			v.AddErrorf("links[%d]: must have exactly 2 endpoints, got %d", i, len(l))
			continue
		}
		for side, ep := range l {
			if ep == nil {
				v.AddErrorf("links[%d][%d]: empty endpoint", i, side)
				continue
			}
			v.Add(ep.Name != "", fmt.Sprintf("links[%d][%d]: name is required", i, side))
			v.Add(ep.Interface >= 0, fmt.Sprintf("links[%d][%d]: interface must be >= 0, got %d", i, side, ep.Interface))
		}
	}

	return v.Build()
}

// WriteSnapshot serializes the (resolved) topology to path.
func (s *Spec) WriteSnapshot(path string) error {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("topology: write snapshot: %w", err)
	}
	return nil
}

// Encode writes the topology as YAML to w.
func (s *Spec) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("topology: encode: %w", err)
	}
	return enc.Close()
}
