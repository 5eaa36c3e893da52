package deploy

import (
	"context"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// applianceStage maps every group's appliance name to its template ID.
// It runs before any node is created, so an unknown name leaves the new
// project empty.
type applianceStage struct{}

func (applianceStage) Name() string { return StageAppliances }

func (applianceStage) Run(ctx context.Context, d *Deployer) error {
	catalog, err := d.client.ListAppliances(ctx)
	if err != nil {
		return err
	}

	byName := make(map[string]string, len(catalog))
	for _, a := range catalog {
		byName[a.Name] = a.ApplianceID
	}

	for _, g := range d.spec.Appliances {
		id, ok := byName[g.Name]
		if !ok {
			return util.NewResolutionError("appliance", g.Name,
				"not in the controller's appliance catalog")
		}
		g.TemplateID = id
		util.WithStage(StageAppliances).WithField("appliance_id", id).Debugf("Resolved appliance %q", g.Name)
	}
	return nil
}
