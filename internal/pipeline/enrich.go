package pipeline

import (
	"context"
	"fmt"
	"time"

	"ytharvest/internal/catalog"
	"ytharvest/internal/enrich"
	"ytharvest/internal/features"
	"ytharvest/internal/logging"
	"ytharvest/internal/notifications"
	"ytharvest/internal/store"
)

// ReasonVideoMissing marks channels whose selected video had no details.
const ReasonVideoMissing = "video_missing"

// EnrichmentSummary reports an enrichment stage.
type EnrichmentSummary struct {
	RunID    string
	Channels int
	Selected int
	Resolved int
	// Unresolved counts channels without a video by reason.
	Unresolved map[string]int
	Rows       int
	Output     string
	Elapsed    time.Duration
}

// Enrich loads the channel table, picks and enriches one video per channel,
// and writes one output row per input channel. A missing channel table is
// fatal.
func (p *Pipeline) Enrich(ctx context.Context) (EnrichmentSummary, error) {
	start := time.Now()
	summary := EnrichmentSummary{Unresolved: map[string]int{}, Output: p.outputPath}

	locks := []lockSpec{
		{path: p.tableLock, mode: lockShared},
		{path: p.outputLock, mode: lockExclusive},
	}
	runID, err := p.runStage(ctx, StageEnrichment, locks, func(ctx context.Context) (store.Outcome, error) {
		logger := logging.WithContext(ctx, p.logger)

		channels, err := p.table.LoadChannels(ctx)
		if err != nil {
			return store.Outcome{}, err
		}
		summary.Channels = len(channels)
		logger.Info("channel table loaded", logging.Int("channels", len(channels)))

		ids := make([]string, 0, len(channels))
		for _, ch := range channels {
			ids = append(ids, ch.ID)
		}

		selector := enrich.NewSelector(p.api, p.cache, enrich.SelectOptions{
			BatchSize:  p.cfg.Enrichment.BatchSize,
			PageSize:   p.cfg.Enrichment.PlaylistPageSize,
			MaxPages:   p.cfg.Enrichment.PlaylistMaxPages,
			Workers:    p.cfg.Enrichment.Workers,
			Pause:      millis(p.cfg.Enrichment.SelectPauseMillis),
			BatchPause: millis(p.cfg.Enrichment.BatchPauseMillis),
			Policy:     p.policy("selection"),
		}, p.rng, p.logger)
		selections, selReport, err := selector.Select(ctx, ids)
		if err != nil {
			return store.Outcome{Requested: len(channels)}, err
		}
		summary.Selected = selReport.Selected

		videoIDs := make([]string, 0, len(selections))
		for _, id := range ids {
			if sel, ok := selections[id]; ok {
				videoIDs = append(videoIDs, sel.VideoID)
			}
		}
		enricher := enrich.NewEnricher(p.api, p.cache, enrich.BatchOptions{
			Size:   p.cfg.Enrichment.BatchSize,
			Pause:  millis(p.cfg.Enrichment.BatchPauseMillis),
			Policy: p.policy(StageEnrichment),
		}, p.logger)
		videos, _, err := enricher.Videos(ctx, videoIDs)
		if err != nil {
			return store.Outcome{Requested: len(channels)}, err
		}

		rows := Merge(channels, selections, videos, selReport.Reasons, summary.Unresolved)
		for _, row := range rows {
			if row.Resolved() {
				summary.Resolved++
			}
		}
		summary.Rows = len(rows)

		p.metrics.VideosResolved(summary.Resolved)
		for reason, n := range summary.Unresolved {
			p.metrics.VideosUnresolved(reason, n)
		}

		outcome := store.Outcome{
			Requested:  summary.Channels,
			Produced:   summary.Resolved,
			Unresolved: summary.Rows - summary.Resolved,
		}
		if err := p.output.WriteRows(ctx, rows); err != nil {
			return outcome, fmt.Errorf("write output table: %w", err)
		}
		logger.Info("output table written",
			logging.Int("rows", summary.Rows),
			logging.Int("with_video", summary.Resolved),
			logging.Int("without_video", summary.Rows-summary.Resolved),
			logging.String("path", p.outputPath),
		)
		return outcome, nil
	})
	summary.RunID = runID
	summary.Elapsed = time.Since(start)
	if err != nil {
		return summary, err
	}

	p.notify(ctx, notifications.EventEnrichmentCompleted, notifications.Payload{
		"rows":       summary.Rows,
		"resolved":   summary.Resolved,
		"unresolved": summary.Rows - summary.Resolved,
		"output":     summary.Output,
	})
	return summary, nil
}

// Merge builds one row per channel, in channel order. Rows get a video and
// its features only when a video was selected and its details were fetched.
// Channels left without a video are counted into unresolved by reason; the
// selection reason is used when known.
func Merge(
	channels []catalog.Channel,
	selections map[string]enrich.Selection,
	videos map[string]catalog.Video,
	reasons map[string]string,
	unresolved map[string]int,
) []catalog.Row {
	rows := make([]catalog.Row, 0, len(channels))
	for _, ch := range channels {
		row := catalog.Row{Channel: ch}
		sel, selected := selections[ch.ID]
		video, fetched := videos[sel.VideoID]
		switch {
		case selected && fetched:
			feats := features.Extract(video)
			row.Video = &video
			row.Features = &feats
		case selected:
			unresolved[ReasonVideoMissing]++
		case reasons[ch.ID] != "":
			unresolved[reasons[ch.ID]]++
		default:
			unresolved[enrich.ReasonNoChannel]++
		}
		rows = append(rows, row)
	}
	return rows
}
