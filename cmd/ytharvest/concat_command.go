package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ytharvest/internal/dataset"
	"ytharvest/internal/logging"
)

func newConcatCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:         "concat -o OUTPUT INPUT...",
		Short:       "Merge output files from several runs into one CSV",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(output)
			if target == "" {
				return errors.New("--output is required")
			}
			logger, err := logging.NewFromConfig(nil)
			if err != nil {
				return err
			}
			report, err := dataset.Concat(args, target, logger)
			if err != nil {
				return err
			}
			status := newStatusWriter(cmd.OutOrStdout())
			for _, skipped := range report.Skipped {
				status.line("Skipped", statusWarn, skipped+" (missing or empty)")
			}
			if !report.Written {
				fmt.Fprintln(cmd.OutOrStdout(), "no input files found; nothing written")
				return nil
			}
			status.line("Merged", statusOK, fmt.Sprintf("%d files, %d rows", len(report.Merged), report.Rows))
			status.line("Output", statusInfo, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination CSV file")
	return cmd
}
