package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/gns3lab/pkg/cli"
	"github.com/newtron-network/gns3lab/pkg/deploy"
	"github.com/newtron-network/gns3lab/pkg/gns3"
)

type deployFlags struct {
	debug       bool
	lenient     bool
	day0        bool
	failOnDay0  bool
	verify      bool
	noInventory bool
	publish     bool
	metricsFile string
	outputDir   string
}

func newDeployCmd() *cobra.Command {
	var f deployFlags

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the topology onto the controller",
		Long: `Deploy a topology onto a GNS3 controller.

An existing project of the same name is deleted first. Nodes are created
from appliance templates, links are wired by interface index, and every
node is started. The inventory is written to hosts-<project>.

Optional stages:
  --day0      run day0-<os>.exp for every configurable node; failed
              scripts are reported and the deploy continues unless
              --fail-on-day0 is given
  --verify    wait for SSH on every configured node
  --debug     also write topology_full.yml with every resolved ID
  --publish   publish the inventory to Redis (settings: redis_addr)

  gns3lab deploy -c topology_config.yml --day0
  gns3lab deploy --lenient --day0 --verify`,
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

			if f.outputDir != "" {
				if err := os.MkdirAll(f.outputDir, 0755); err != nil {
					return err
				}
			}

			var metrics *deploy.Metrics
			if f.metricsFile != "" {
				metrics = deploy.NewMetrics()
			}
			client := newClient(spec, s, gns3.WithObserver(metrics.ObserveCall))

			d := deploy.New(client, spec, deploy.Options{
				Mode:        f.mode(),
				Stages:      f.stages(),
				Settings:    s,
				Progress:    deploy.NewConsoleProgress(),
				Metrics:     metrics,
				OutputDir:   f.outputDir,
				MetricsFile: f.metricsFile,
				FailOnDay0:  f.failOnDay0,
			})
			if err := d.Run(cmd.Context()); err != nil {
				return err
			}

			if r := d.Day0Report(); r != nil && !r.OK() {
				fmt.Printf("%s day-0: %s\n", yellow("!"), r)
				t := cli.NewTable("NODE", "ERROR", "LAST OUTPUT").WithPrefix("    ")
				for _, fail := range r.Failed {
					t.Row(fail.Instance, fail.Err.Error(), fail.Output)
				}
				t.Flush()
			}
			for _, path := range d.Artifacts() {
				fmt.Printf("%s wrote %s\n", green("✓"), path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.debug, "debug", false, "write topology_full.yml snapshot")
	cmd.Flags().BoolVar(&f.lenient, "lenient", false, "continue past day-0, verify and publish failures")
	cmd.Flags().BoolVar(&f.day0, "day0", false, "apply day-0 configuration via console scripts")
	cmd.Flags().BoolVar(&f.failOnDay0, "fail-on-day0", false, "fail the deploy when any day-0 script fails")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "wait for SSH reachability of configured nodes")
	cmd.Flags().BoolVar(&f.noInventory, "no-inventory", false, "skip writing the Ansible inventory")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "publish the inventory to Redis")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "directory for inventory and snapshot files (default .)")
	return cmd
}

func (f deployFlags) mode() deploy.Mode {
	if f.lenient {
		return deploy.ModeLenient
	}
	return deploy.ModeStrict
}

// stages maps flags to the optional stage list. Order does not matter;
// the pipeline runs stages in its own fixed order.
func (f deployFlags) stages() []string {
	stages := []string{}
	if f.day0 || f.failOnDay0 {
		stages = append(stages, deploy.StageDay0)
	}
	if f.verify {
		stages = append(stages, deploy.StageVerify)
	}
	if !f.noInventory {
		stages = append(stages, deploy.StageInventory)
	}
	if f.debug {
		stages = append(stages, deploy.StageSnapshot)
	}
	if f.publish {
		stages = append(stages, deploy.StagePublish)
	}
	if f.metricsFile != "" {
		stages = append(stages, deploy.StageMetrics)
	}
	return stages
}
