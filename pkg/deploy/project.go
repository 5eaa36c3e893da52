package deploy

import (
	"context"
	"fmt"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// projectStage deletes any project carrying the topology's name and creates
// a fresh one, so a re-run always yields exactly one project.
type projectStage struct{}

func (projectStage) Name() string { return StageProject }

func (projectStage) Run(ctx context.Context, d *Deployer) error {
	log := util.WithStage(StageProject)

	deleted, err := DestroyProject(ctx, d.client, d.spec.ProjectName)
	if err != nil {
		return err
	}
	if deleted {
		log.Infof("Deleted existing project %s", d.spec.ProjectName)
	}

	p, err := d.client.CreateProject(ctx, d.spec.ProjectName)
	if err != nil {
		return err
	}
	d.spec.ProjectID = p.ProjectID
	log.WithField("project_id", p.ProjectID).Infof("Created project %s", p.Name)
	return nil
}

// DestroyProject deletes every project named name and reports whether any
// existed.
func DestroyProject(ctx context.Context, client Controller, name string) (bool, error) {
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return false, err
	}
	deleted := false
	for _, p := range projects {
		if p.Name != name {
			continue
		}
		util.WithStage(StageProject).WithField("project_id", p.ProjectID).Debugf("Deleting project %s", name)
		if err := client.DeleteProject(ctx, p.ProjectID); err != nil {
			return deleted, fmt.Errorf("deploy: delete project %s: %w", name, err)
		}
		deleted = true
	}
	return deleted, nil
}
