package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/gns3lab/pkg/cli"
	"github.com/newtron-network/gns3lab/pkg/inventory"
	"github.com/newtron-network/gns3lab/pkg/topology"
)

func newInventoryCmd() *cobra.Command {
	var (
		from      string
		format    string
		outputDir string
		stdout    bool
		list      bool
	)

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Rebuild the Ansible inventory from a snapshot",
		Long: `Regenerate the Ansible inventory from topology_full.yml without
contacting the controller.

  gns3lab inventory
  gns3lab inventory --from lab/topology_full.yml --format yaml
  gns3lab inventory --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if format == "" {
				format = s.InventoryFormat
			}

			spec, err := topology.Load(from)
			if err != nil {
				return err
			}
			spec.AssignNames()
			inv := inventory.Build(spec, s.NoConfigOS)

			if list {
				t := cli.NewTable("HOST", "GROUP", "ADDRESS", "CONSOLE")
				for _, g := range inv.Groups {
					for _, h := range g.Hosts {
						t.Row(h.Name, g.Name, h.Address, fmt.Sprint(h.Console))
					}
				}
				t.Flush()
				return nil
			}
			if stdout {
				return inv.Write(os.Stdout, format)
			}

			path, err := inv.WriteFile(outputDir, format)
			if err != nil {
				return err
			}
			fmt.Printf("%s wrote %s (%d hosts)\n", green("✓"), path, inv.HostCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", topology.DefaultSnapshotFile, "snapshot to read")
	cmd.Flags().StringVar(&format, "format", "", "inventory format: ini or yaml (default from settings)")
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "directory for the inventory file")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the inventory instead of writing a file")
	cmd.Flags().BoolVar(&list, "list", false, "print a host table")
	return cmd
}
