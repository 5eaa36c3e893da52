package deploy

import (
	"context"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// bootStage starts every node of the project, then waits the settle delay.
// There is no per-node readiness check; the verify stage provides one.
type bootStage struct{}

func (bootStage) Name() string { return StageBoot }

func (bootStage) Run(ctx context.Context, d *Deployer) error {
	if err := d.client.StartNodes(ctx, d.spec.ProjectID); err != nil {
		return err
	}
	delay := d.settings.SettleDelay
	util.WithStage(StageBoot).Infof("Started all nodes, waiting %s", delay)
	return sleep(ctx, delay)
}
