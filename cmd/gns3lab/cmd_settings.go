package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/gns3lab/pkg/cli"
	"github.com/newtron-network/gns3lab/pkg/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persistent settings",
		Long: `Manage persistent settings stored in ~/.gns3lab/settings.yaml.

Every setting may be overridden by a GNS3LAB_<SETTING> environment
variable, e.g. GNS3LAB_SETTLE_DELAY=30s.

Examples:
  gns3lab settings show
  gns3lab settings set settle_delay 30s
  gns3lab settings set redis_addr 127.0.0.1:6379
  gns3lab settings get compute_id`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := loadSettings()
				if err != nil {
					return fmt.Errorf("loading settings: %w", err)
				}

				fmt.Printf("Settings file: %s\n\n", settingsPath())

				t := cli.NewTable("SETTING", "VALUE")
				for _, key := range settings.Keys() {
					value, _ := s.Get(key)
					if key == "ssh_pass" && value != "" {
						value = "********"
					}
					if value == "" {
						value = "(not set)"
					}
					t.Row(key, value)
				}
				t.Flush()
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <setting>",
			Short: "Get a setting value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := loadSettings()
				if err != nil {
					return fmt.Errorf("loading settings: %w", err)
				}
				value, err := s.Get(args[0])
				if err != nil {
					return fmt.Errorf("%w (valid: %s)", err, strings.Join(settings.Keys(), ", "))
				}
				if value == "" {
					fmt.Println("(not set)")
				} else {
					fmt.Println(value)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <setting> <value>",
			Short: "Set a setting value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := loadSettings()
				if err != nil {
					s = settings.Default()
				}
				if err := s.Set(args[0], args[1]); err != nil {
					return fmt.Errorf("%w (valid: %s)", err, strings.Join(settings.Keys(), ", "))
				}
				if err := s.SaveTo(settingsPath()); err != nil {
					return fmt.Errorf("saving settings: %w", err)
				}
				value, _ := s.Get(args[0])
				fmt.Printf("%s set to: %s\n", args[0], value)
				return nil
			},
		},
	)
	return cmd
}
