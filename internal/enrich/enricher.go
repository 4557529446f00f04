package enrich

import (
	"context"
	"log/slog"

	"ytharvest/internal/cache"
	"ytharvest/internal/catalog"
	"ytharvest/internal/logging"
	"ytharvest/internal/youtube"
)

// VideoSource is the slice of the YouTube API used for video details.
type VideoSource interface {
	VideosByID(ctx context.Context, ids []string) ([]youtube.Video, error)
}

// Enricher resolves video ids into full records.
type Enricher struct {
	api    VideoSource
	cache  *cache.Cache
	opts   BatchOptions
	logger *slog.Logger
}

// NewEnricher builds an Enricher. cache may be nil.
func NewEnricher(api VideoSource, c *cache.Cache, opts BatchOptions, logger *slog.Logger) *Enricher {
	logger = logging.NewComponentLogger(logger, "enrichment")
	opts.Logger = logger
	if opts.Operation == "" {
		opts.Operation = "videos"
	}
	return &Enricher{api: api, cache: c, opts: opts, logger: logger}
}

// Videos returns the records the API knows about, keyed by id. Ids without a
// record are absent from the map and listed in Report.Missing.
func (e *Enricher) Videos(ctx context.Context, ids []string) (map[string]catalog.Video, Report, error) {
	unique := Dedup(ids)
	out := make(map[string]catalog.Video, len(unique))
	pending := make([]string, 0, len(unique))
	for _, id := range unique {
		if video, ok := e.cache.Video(ctx, id); ok {
			out[id] = video
			continue
		}
		pending = append(pending, id)
	}
	cached := len(out)

	fetched, report, err := Batch(ctx, pending, e.opts,
		func(ctx context.Context, batch []string) ([]youtube.Video, error) {
			return e.api.VideosByID(ctx, batch)
		},
		func(v youtube.Video) string { return v.ID },
	)
	for id, item := range fetched {
		video := item.Record()
		out[id] = video
		e.cache.StoreVideo(ctx, video)
	}

	report.Requested = len(unique)
	report.Returned = len(out)
	logging.WithContext(ctx, e.logger).Info("videos enriched",
		logging.Int("requested", report.Requested),
		logging.Int("returned", report.Returned),
		logging.Int("cached", cached),
		logging.Int("missing", len(report.Missing)),
		logging.Int("failed_batches", report.FailedBatches),
	)
	return out, report, err
}
