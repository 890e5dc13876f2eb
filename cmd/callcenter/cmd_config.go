package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write client settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}

	var out string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := out
			if path == "" {
				path = a.cfgPath
			}
			if path == "" {
				return errors.New("-o or --config is required")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite", path)
			}
			if err := a.cfg.Save(path); err != nil {
				return err
			}
			a.log.WithField("path", path).Info("config written")
			fmt.Fprintf(a.out, "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&out, "output", "o", "", "file to write (defaults to --config)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
