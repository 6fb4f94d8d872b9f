package main

import (
	"github.com/spf13/cobra"

	"github.com/scribe-dev/scribe/internal/config"
)

func checkConfigCmd() *cobra.Command {
	var writeDefault bool

	cmd := &cobra.Command{
		Use:   "check-config [dir]",
		Short: "Validate scribe.json",
		Long: `Validate the configuration file and report problems.

Without arguments the current directory is checked. With --write-default
a fresh default scribe.json is written instead; existing files are never
overwritten.

Examples:
  scribed check-config
  scribed check-config /etc/scribe
  scribed check-config --write-default`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runCheckConfig(dir, writeDefault)
		},
	}

	cmd.Flags().BoolVar(&writeDefault, "write-default", false, "Write a default scribe.json instead of validating")

	return cmd
}

func runCheckConfig(dir string, writeDefault bool) error {
	if writeDefault {
		path, err := config.WriteDefault(dir)
		if err != nil {
			return err
		}
		success("Wrote %s", path)
		return nil
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := cfg.SecretBytes(); err != nil {
		return err
	}

	success("%s is valid", cfg.Path())
	info("control listener   %s", cfg.ControlAddress())
	info("admin listener     %s", cfg.AdminAddress())
	info("max sessions       %d", cfg.Control.MaxSessions)
	info("session timeout    %s", cfg.SessionTimeout())
	if cfg.OffloadEnabled() {
		info("segment offload    %s", cfg.OffloadPath())
	} else {
		info("segment offload    disabled")
	}
	return nil
}
