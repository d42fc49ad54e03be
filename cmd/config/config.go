// Package config provides the config command for writing and inspecting
// configuration files.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/mediaseed/internal/conf"
)

const masked = "********"

// Command creates the config command with its init and show subcommands.
// initCmd is created separately so the root command can skip loading the
// configuration for it.
func Command(settings *conf.Settings, initCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or show the configuration",
	}
	cmd.AddCommand(initCmd, showCommand(settings))
	return cmd
}

// InitCommand creates the config init command.
func InitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := conf.WriteDefaultConfig(path, force); err != nil {
				return err
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", abs)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func showCommand(settings *conf.Settings) *cobra.Command {
	var (
		showSecrets bool
		output      string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			effective := *settings
			if !showSecrets {
				maskSecrets(&effective)
			}
			if output != "" {
				if err := conf.SaveYAMLConfig(output, &effective); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Effective configuration written to %s\n", output)
				return nil
			}
			data, err := yaml.Marshal(&effective)
			if err != nil {
				return fmt.Errorf("error marshaling settings to YAML: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print passwords and keys in clear text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the configuration to this file instead of stdout")
	return cmd
}

// maskSecrets replaces every non-empty credential in s. s must be a copy;
// only value fields are modified.
func maskSecrets(s *conf.Settings) {
	for _, secret := range []*string{
		&s.Elasticsearch.APIKey,
		&s.Elasticsearch.Password,
		&s.Export.S3.SecretAccessKey,
		&s.Export.FTP.Password,
		&s.Sentry.DSN,
	} {
		if *secret != "" {
			*secret = masked
		}
	}
}
