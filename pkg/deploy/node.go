package deploy

import (
	"context"
	"fmt"

	"github.com/newtron-network/gns3lab/pkg/gns3"
	"github.com/newtron-network/gns3lab/pkg/topology"
	"github.com/newtron-network/gns3lab/pkg/util"
)

// nodeStage creates one node per instance, then lists the project's nodes
// once and correlates them back to instances by generated name.
type nodeStage struct{}

func (nodeStage) Name() string { return StageNodes }

func (nodeStage) Run(ctx context.Context, d *Deployer) error {
	d.spec.AssignNames()
	members := d.spec.Members()

	for _, m := range members {
		placement := gns3.NodePlacement{
			ComputeID: d.settings.ComputeID,
			X:         m.Instance.X,
			Y:         m.Instance.Y,
		}
		if err := d.client.CreateNodeFromAppliance(ctx, d.spec.ProjectID, m.Group.TemplateID, placement); err != nil {
			return fmt.Errorf("deploy: create %s: %w", m.Instance.Name, err)
		}
		util.WithNode(m.Instance.Name).Debugf("Created node at (%d, %d)", m.Instance.X, m.Instance.Y)
	}

	nodes, err := d.client.ListNodes(ctx, d.spec.ProjectID)
	if err != nil {
		return err
	}
	return correlate(members, nodes)
}

// correlate copies node IDs and console ports onto the instances by
// generated name. Every instance must match a node.
func correlate(members []topology.Member, nodes []gns3.Node) error {
	byName := make(map[string]gns3.Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
	}

	for _, m := range members {
		n, ok := byName[m.Instance.Name]
		if !ok {
			return util.NewResolutionError("node", m.Instance.Name, "no node with this name after creation")
		}
		m.Instance.NodeID = n.NodeID
		m.Instance.Console = n.Console
		util.WithNode(m.Instance.Name).WithFields(map[string]interface{}{
			"node_id": n.NodeID,
			"console": n.Console,
		}).Debugf("Resolved node")
	}
	util.WithStage(StageNodes).Infof("Provisioned %d nodes", len(members))
	return nil
}
