package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytharvest/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check directories, API key, and optional services before a harvest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			status := newStatusWriter(cmd.OutOrStdout())
			status.section("Preflight")
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				status.line(r.Name, kind, r.Detail)
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}
}
