package pipeline

import (
	"context"
	"fmt"
	"time"

	"ytharvest/internal/discovery"
	"ytharvest/internal/logging"
	"ytharvest/internal/notifications"
	"ytharvest/internal/store"
)

// DiscoverySummary reports a discovery stage.
type DiscoverySummary struct {
	RunID          string
	Target         int
	Channels       int
	Attempts       int
	FailedSearches int
	FailedBatches  int
	Rejected       map[string]int
	Band           discovery.Band
	Elapsed        time.Duration
}

// Band returns the configured subscriber band.
func (p *Pipeline) Band() discovery.Band {
	return discovery.Band{Low: p.cfg.Discovery.SubscriberMin, High: p.cfg.Discovery.SubscriberMax}
}

// Discover samples channels and replaces the channel table with them. A
// partial result is saved as-is.
func (p *Pipeline) Discover(ctx context.Context) (DiscoverySummary, error) {
	start := time.Now()
	summary := DiscoverySummary{Target: p.cfg.Discovery.TargetCount, Band: p.Band()}

	runID, err := p.runStage(ctx, StageDiscovery, []lockSpec{{path: p.tableLock, mode: lockExclusive}},
		func(ctx context.Context) (store.Outcome, error) {
			sampler := discovery.NewSampler(p.api, discovery.Options{
				Target:         p.cfg.Discovery.TargetCount,
				MaxAttempts:    p.cfg.Discovery.MaxAttempts,
				QueryLength:    p.cfg.Discovery.QueryLength,
				SearchPageSize: p.cfg.Discovery.SearchPageSize,
				BatchSize:      p.cfg.Discovery.BatchSize,
				Band:           summary.Band,
				Pause:          millis(p.cfg.Discovery.PauseMillis),
				Policy:         p.policy(StageDiscovery),
			}, p.rng, p.logger)

			result, err := sampler.Run(ctx)
			summary.Channels = len(result.Channels)
			summary.Attempts = result.Attempts
			summary.FailedSearches = result.FailedSearches
			summary.FailedBatches = result.FailedBatches
			summary.Rejected = result.Rejected
			outcome := store.Outcome{Requested: summary.Target, Produced: summary.Channels}
			if err != nil {
				return outcome, err
			}

			p.metrics.Admitted(len(result.Channels))
			for reason, n := range result.Rejected {
				p.metrics.Rejected(reason, n)
			}

			if err := p.table.SaveChannels(ctx, result.Channels); err != nil {
				return outcome, fmt.Errorf("save channel table: %w", err)
			}
			if summary.Channels < summary.Target {
				logging.WarnWithContext(logging.WithContext(ctx, p.logger), "discovery fell short of target", "discovery_short",
					logging.Int("collected", summary.Channels),
					logging.Int("target", summary.Target),
					logging.String(logging.FieldErrorHint, "raise discovery.max_attempts or widen the subscriber band"),
					logging.String(logging.FieldImpact, "channel table holds fewer channels than requested"),
				)
			}
			return outcome, nil
		})
	summary.RunID = runID
	summary.Elapsed = time.Since(start)
	if err != nil {
		return summary, err
	}

	p.notify(ctx, notifications.EventDiscoveryCompleted, notifications.Payload{
		"channels": summary.Channels,
		"target":   summary.Target,
		"attempts": summary.Attempts,
		"band":     fmt.Sprintf("%d-%d", summary.Band.Low, summary.Band.High),
	})
	return summary, nil
}
