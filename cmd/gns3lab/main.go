// gns3lab deploys virtual network topologies onto a GNS3 controller.
//
// gns3lab reads topology_config.yml, recreates the named project on the
// controller, instantiates nodes from appliance templates, wires links,
// boots the lab and writes an Ansible inventory of the result.
//
// Usage:
//
//	gns3lab deploy [-c topology_config.yml]   Deploy the topology
//	gns3lab destroy [-c topology_config.yml]  Delete the project
//	gns3lab inventory --from topology_full.yml  Rebuild the inventory
//	gns3lab settings show|set|get             Manage persistent settings
//	gns3lab version                           Print version information
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/gns3lab/pkg/cli"
	"github.com/newtron-network/gns3lab/pkg/gns3"
	"github.com/newtron-network/gns3lab/pkg/settings"
	"github.com/newtron-network/gns3lab/pkg/topology"
	"github.com/newtron-network/gns3lab/pkg/util"
	"github.com/newtron-network/gns3lab/pkg/version"
)

var (
	configFile   string
	settingsFile string
	verbose      bool
	logFormat    string
	logFile      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "gns3lab",
	Short:             "Deploy network topologies onto a GNS3 controller",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `gns3lab deploys a declarative network topology onto a GNS3 controller.

It recreates the project named in topology_config.yml, creates nodes from
appliance templates, wires links between interfaces, starts every node and
writes an Ansible inventory grouped by OS.

  gns3lab deploy -c topology_config.yml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		if err := util.SetLogLevel(level); err != nil {
			return err
		}
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("opening --log-file: %w", err)
			}
			util.SetLogOutput(f)
		}
		switch logFormat {
		case "text":
		case "json":
			util.SetJSONFormat()
		default:
			return fmt.Errorf("unknown --log-format %q (valid: text, json)", logFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "topology file (default from settings: topology_config.yml)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default ~/.gns3lab/settings.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file instead of stderr")

	rootCmd.AddCommand(
		newDeployCmd(),
		newDestroyCmd(),
		newInventoryCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)
}

func settingsPath() string {
	if settingsFile != "" {
		return settingsFile
	}
	return settings.DefaultSettingsPath()
}

func loadSettings() (*settings.Settings, error) {
	if settingsFile == "" {
		return settings.Load()
	}
	return settings.LoadFrom(settingsFile)
}

// loadTopology resolves the topology path from: -c flag > settings, and
// applies GNS3LAB_SERVER / GNS3LAB_PORT overrides.
func loadTopology(s *settings.Settings) (*topology.Spec, error) {
	path := configFile
	if path == "" {
		path = s.ConfigFile
	}
	spec, err := topology.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyServerOverride(spec, os.Getenv("GNS3LAB_SERVER"), os.Getenv("GNS3LAB_PORT")); err != nil {
		return nil, err
	}
	return spec, nil
}

func applyServerOverride(spec *topology.Spec, server, port string) error {
	if server != "" {
		spec.Server = server
	}
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("GNS3LAB_PORT: invalid port %q: %w", port, util.ErrInvalidConfig)
		}
		spec.Port = p
	}
	return nil
}

func newClient(spec *topology.Spec, s *settings.Settings, opts ...gns3.Option) *gns3.Client {
	return gns3.NewClient(gns3.Config{
		Server:  spec.Server,
		Port:    spec.Port,
		Timeout: s.HTTPTimeout,
	}, opts...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gns3lab %s\n", version.Info())
		},
	}
}

// Color helpers delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
