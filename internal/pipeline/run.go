package pipeline

import "context"

// RunSummary reports a full two-stage run.
type RunSummary struct {
	Discovery  DiscoverySummary
	Enrichment EnrichmentSummary
}

// Run executes Discover then Enrich. Enrichment starts only after discovery
// saved its table.
func (p *Pipeline) Run(ctx context.Context) (RunSummary, error) {
	var summary RunSummary
	var err error
	if summary.Discovery, err = p.Discover(ctx); err != nil {
		return summary, err
	}
	summary.Enrichment, err = p.Enrich(ctx)
	return summary, err
}
