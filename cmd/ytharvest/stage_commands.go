package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ytharvest/internal/pipeline"
)

type bandFlags struct {
	minSubs int64
	maxSubs int64
}

func (b *bandFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&b.minSubs, "min-subs", -1, "Override discovery.subscriber_min")
	cmd.Flags().Int64Var(&b.maxSubs, "max-subs", -1, "Override discovery.subscriber_max")
}

func (b *bandFlags) apply(ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if b.minSubs >= 0 {
		cfg.Discovery.SubscriberMin = b.minSubs
	}
	if b.maxSubs >= 0 {
		cfg.Discovery.SubscriberMax = b.maxSubs
	}
	if cfg.Discovery.SubscriberMax < cfg.Discovery.SubscriberMin {
		return errors.New("--max-subs must be >= --min-subs")
	}
	return nil
}

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var band bandFlags
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Sample channels in the subscriber band and save the channel table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := band.apply(ctx); err != nil {
				return err
			}
			return ctx.withPipeline(cmd.Context(), func(p *pipeline.Pipeline) error {
				summary, err := p.Discover(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderDiscoverySummary(summary))
				return nil
			})
		},
	}
	band.register(cmd)
	return cmd
}

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Pick a video per saved channel, enrich it, and write the output table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd.Context(), func(p *pipeline.Pipeline) error {
				summary, err := p.Enrich(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderEnrichmentSummary(summary))
				return nil
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var band bandFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run discovery then enrichment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := band.apply(ctx); err != nil {
				return err
			}
			return ctx.withPipeline(cmd.Context(), func(p *pipeline.Pipeline) error {
				summary, err := p.Run(cmd.Context())
				out := cmd.OutOrStdout()
				if summary.Discovery.RunID != "" {
					fmt.Fprint(out, renderDiscoverySummary(summary.Discovery))
				}
				if err != nil {
					return err
				}
				fmt.Fprint(out, renderEnrichmentSummary(summary.Enrichment))
				return nil
			})
		},
	}
	band.register(cmd)
	return cmd
}
