package deploy

import (
	"context"
	"fmt"

	"github.com/newtron-network/gns3lab/pkg/gns3"
	"github.com/newtron-network/gns3lab/pkg/topology"
	"github.com/newtron-network/gns3lab/pkg/util"
)

// linkStage resolves both endpoints of every link to a node/adapter/port
// triple and creates the link, side A first.
type linkStage struct{}

func (linkStage) Name() string { return StageLinks }

func (linkStage) Run(ctx context.Context, d *Deployer) error {
	for i, l := range d.spec.Links {
		var sides [2]gns3.LinkNode
		for side, ep := range l {
			ln, err := d.resolveEndpoint(ctx, ep)
			if err != nil {
				return fmt.Errorf("link %d: %w", i, err)
			}
			sides[side] = ln
		}

		if _, err := d.client.CreateLink(ctx, d.spec.ProjectID, sides); err != nil {
			return fmt.Errorf("link %d: %s: %w", i, describeLink(l), err)
		}
		util.WithStage(StageLinks).Debugf("Created link %d: %s", i, describeLink(l))
	}
	util.WithStage(StageLinks).Infof("Created %d links", len(d.spec.Links))
	return nil
}

// resolveEndpoint fills NodeID, AdapterNumber and PortNumber on ep.
func (d *Deployer) resolveEndpoint(ctx context.Context, ep *topology.Endpoint) (gns3.LinkNode, error) {
	in, ok := d.spec.Lookup(ep.Name)
	if !ok {
		return gns3.LinkNode{}, util.NewResolutionError("endpoint", ep.Name, "no instance with this name")
	}
	if in.NodeID == "" {
		return gns3.LinkNode{}, util.NewResolutionError("endpoint", ep.Name, "node was not provisioned")
	}

	ports, err := d.nodePorts(ctx, in.NodeID)
	if err != nil {
		return gns3.LinkNode{}, err
	}
	if ep.Interface < 0 || ep.Interface >= len(ports) {
		return gns3.LinkNode{}, util.NewResolutionError("interface", fmt.Sprintf("%s[%d]", ep.Name, ep.Interface),
			fmt.Sprintf("node has %d ports", len(ports)))
	}

	port := ports[ep.Interface]
	adapter, number := port.AdapterNumber, port.PortNumber
	ep.NodeID = in.NodeID
	ep.AdapterNumber = &adapter
	ep.PortNumber = &number
	return gns3.LinkNode{NodeID: in.NodeID, AdapterNumber: adapter, PortNumber: number}, nil
}

// nodePorts returns the node's port list, fetching it once per run.
func (d *Deployer) nodePorts(ctx context.Context, nodeID string) ([]gns3.Port, error) {
	if ports, ok := d.ports[nodeID]; ok {
		return ports, nil
	}
	node, err := d.client.GetNode(ctx, d.spec.ProjectID, nodeID)
	if err != nil {
		return nil, err
	}
	d.ports[nodeID] = node.Ports
	return node.Ports, nil
}

func describeLink(l topology.Link) string {
	return describeEndpoint(l.A()) + " -- " + describeEndpoint(l.Z())
}

func describeEndpoint(ep *topology.Endpoint) string {
	if ep.AdapterNumber == nil || ep.PortNumber == nil {
		return fmt.Sprintf("%s interface %d", ep.Name, ep.Interface)
	}
	return fmt.Sprintf("%s adapter %d port %d", ep.Name, *ep.AdapterNumber, *ep.PortNumber)
}
