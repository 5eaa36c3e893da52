package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newtron-network/gns3lab/pkg/deploy"
)

func newDestroyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy",
		Short: "Delete the topology's project from the controller",
		Long: `Delete the project named in the topology file, with all its nodes
and links. Nothing happens if no such project exists.

  gns3lab destroy -c topology_config.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			spec, err := loadTopology(s)
			if err != nil {
				return err
			}

			deleted, err := deploy.DestroyProject(cmd.Context(), newClient(spec, s), spec.ProjectName)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Printf("%s Project %s not found on %s:%d\n", yellow("!"), spec.ProjectName, spec.Server, spec.Port)
				return nil
			}
			fmt.Printf("%s Project %s destroyed\n", green("✓"), spec.ProjectName)
			return nil
		},
	}
}
