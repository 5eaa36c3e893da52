package deploy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/newtron-network/gns3lab/pkg/inventory"
	"github.com/newtron-network/gns3lab/pkg/topology"
	"github.com/newtron-network/gns3lab/pkg/util"
)

// inventoryStage writes hosts-<project> (or .yml) into the output directory.
type inventoryStage struct{}

func (inventoryStage) Name() string { return StageInventory }

func (inventoryStage) Run(_ context.Context, d *Deployer) error {
	inv := d.buildInventory()
	path, err := inv.WriteFile(d.opts.OutputDir, d.settings.InventoryFormat)
	if err != nil {
		return err
	}
	d.artifacts = append(d.artifacts, path)
	util.WithStage(StageInventory).Infof("Wrote %d hosts in %d groups to %s", inv.HostCount(), len(inv.Groups), path)
	return nil
}

// snapshotStage writes the fully resolved topology as topology_full.yml.
type snapshotStage struct{}

func (snapshotStage) Name() string { return StageSnapshot }

func (snapshotStage) Run(_ context.Context, d *Deployer) error {
	path := filepath.Join(d.opts.OutputDir, topology.DefaultSnapshotFile)
	if err := d.spec.WriteSnapshot(path); err != nil {
		return err
	}
	d.artifacts = append(d.artifacts, path)
	util.WithStage(StageSnapshot).Infof("Wrote %s", path)
	return nil
}

// pinger is implemented by publishers that can check their connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// publishStage hands the inventory to Redis (or Options.Publisher).
type publishStage struct{}

func (publishStage) Name() string { return StagePublish }

func (publishStage) Run(ctx context.Context, d *Deployer) error {
	pub := d.opts.Publisher
	if pub == nil {
		if d.settings.RedisAddr == "" {
			return fmt.Errorf("deploy: publish: redis_addr is not set: %w", util.ErrInvalidConfig)
		}
		rp := inventory.NewPublisher(d.settings.RedisAddr, d.settings.RedisDB)
		defer rp.Close()
		pub = rp
	}

	if p, ok := pub.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("deploy: publish: redis %s unreachable: %w", d.settings.RedisAddr, err)
		}
	}

	inv := d.buildInventory()
	if err := pub.Publish(ctx, inv); err != nil {
		return err
	}
	util.WithStage(StagePublish).Infof("Published %d hosts", inv.HostCount())
	return nil
}

func (d *Deployer) buildInventory() *inventory.Inventory {
	if d.inventory == nil {
		d.inventory = inventory.Build(d.spec, d.settings.NoConfigOS)
	}
	return d.inventory
}
