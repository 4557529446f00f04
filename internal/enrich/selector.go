package enrich

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"ytharvest/internal/backoff"
	"ytharvest/internal/cache"
	"ytharvest/internal/logging"
	"ytharvest/internal/paginate"
	"ytharvest/internal/services"
	"ytharvest/internal/youtube"
)

// Reasons a channel ends up without a sample video.
const (
	ReasonNoChannel   = "no_channel"
	ReasonNoUploads   = "no_uploads"
	ReasonFetchFailed = "fetch_failed"
	ReasonNoItems     = "no_items"
)

var uploadsParts = []string{"contentDetails"}

// PlaylistSource is the slice of the YouTube API used for video selection.
type PlaylistSource interface {
	ChannelsByID(ctx context.Context, parts []string, ids []string) ([]youtube.Channel, error)
	PlaylistItemsPage(ctx context.Context, playlistID, pageToken string, maxResults int) (youtube.Page, error)
}

// SelectOptions configures a Selector.
type SelectOptions struct {
	BatchSize int
	PageSize  int
	// MaxPages bounds how much of the uploads playlist is sampled. The
	// default of 1 samples the most recent page only.
	MaxPages   int
	Workers    int
	Pause      time.Duration
	BatchPause time.Duration
	Policy     backoff.Policy
}

// Selection is the representative video chosen for a channel.
type Selection struct {
	ChannelID  string
	PlaylistID string
	VideoID    string
	Candidates int
}

// SelectReport summarizes a selection pass.
type SelectReport struct {
	Requested  int
	Selected   int
	Unresolved map[string]int
	// Reasons maps each unresolved channel id to its reason.
	Reasons map[string]string
}

// Selector picks one uploaded video per channel.
type Selector struct {
	api    PlaylistSource
	cache  *cache.Cache
	opts   SelectOptions
	rng    *rand.Rand
	logger *slog.Logger
}

// NewSelector builds a Selector. cache may be nil; rng must not be shared
// with concurrent users.
func NewSelector(api PlaylistSource, c *cache.Cache, opts SelectOptions, rng *rand.Rand, logger *slog.Logger) *Selector {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.PageSize <= 0 || opts.PageSize > youtube.MaxResults {
		opts.PageSize = youtube.MaxResults
	}
	if opts.Policy.Sleep == nil {
		opts.Policy.Sleep = backoff.ContextSleep
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Selector{
		api:    api,
		cache:  c,
		opts:   opts,
		rng:    rng,
		logger: logging.NewComponentLogger(logger, "selection"),
	}
}

type candidate struct {
	channelID  string
	playlistID string
	items      []string
	err        error
}

// Select resolves each channel's uploads playlist, fetches its first page(s)
// on a bounded worker pool, then draws one item per channel in input order.
// Channels that cannot be resolved are absent from the map and counted by
// reason. The error is non-nil only when ctx is done.
func (s *Selector) Select(ctx context.Context, channelIDs []string) (map[string]Selection, SelectReport, error) {
	logger := logging.WithContext(ctx, s.logger)
	unique := Dedup(channelIDs)
	report := SelectReport{
		Requested:  len(unique),
		Unresolved: map[string]int{},
		Reasons:    map[string]string{},
	}
	unresolved := func(channelID, reason string) {
		report.Unresolved[reason]++
		report.Reasons[channelID] = reason
	}

	uploads, failed, err := s.resolveUploads(ctx, unique)
	if err != nil {
		return nil, report, err
	}

	candidates := make([]candidate, 0, len(unique))
	for _, id := range unique {
		playlist, ok := uploads[id]
		switch {
		case failed[id]:
			unresolved(id, ReasonFetchFailed)
		case !ok:
			unresolved(id, ReasonNoChannel)
		case playlist == "":
			unresolved(id, ReasonNoUploads)
		default:
			candidates = append(candidates, candidate{channelID: id, playlistID: playlist})
		}
	}

	if err := s.fetchPages(ctx, candidates); err != nil {
		return nil, report, err
	}

	selections := make(map[string]Selection, len(candidates))
	for _, cand := range candidates {
		switch {
		case len(cand.items) > 0:
			pick := cand.items[s.rng.IntN(len(cand.items))]
			selections[cand.channelID] = Selection{
				ChannelID:  cand.channelID,
				PlaylistID: cand.playlistID,
				VideoID:    pick,
				Candidates: len(cand.items),
			}
			logger.Info("video selected",
				logging.String(logging.FieldChannelID, cand.channelID),
				logging.String(logging.FieldVideoID, pick),
				logging.Int("candidates", len(cand.items)),
			)
		case cand.err != nil && !errors.Is(cand.err, services.ErrMissingResource):
			unresolved(cand.channelID, ReasonFetchFailed)
			logging.WarnWithContext(logger, "uploads page fetch failed; channel left without video", "playlist_fetch_failed",
				logging.String(logging.FieldChannelID, cand.channelID),
				logging.String("playlist_id", cand.playlistID),
				logging.String(logging.FieldErrorKind, services.Kind(cand.err)),
				logging.Error(cand.err),
				logging.String(logging.FieldImpact, "row written with empty video columns"),
			)
		default:
			unresolved(cand.channelID, ReasonNoItems)
			logger.Info("uploads playlist empty", logging.String(logging.FieldChannelID, cand.channelID))
		}
	}
	report.Selected = len(selections)

	logger.Info("video selection finished",
		logging.Int("channels", report.Requested),
		logging.Int("selected", report.Selected),
		logging.Int("missing", report.Requested-report.Selected),
	)
	return selections, report, nil
}

// resolveUploads maps channel ids to uploads playlist ids. Channels absent
// from the API response are absent from the map; failed marks channels whose
// lookup batch failed.
func (s *Selector) resolveUploads(ctx context.Context, ids []string) (map[string]string, map[string]bool, error) {
	uploads := make(map[string]string, len(ids))
	pending := make([]string, 0, len(ids))
	for _, id := range ids {
		if playlist, ok := s.cache.UploadsPlaylist(ctx, id); ok && playlist != "" {
			uploads[id] = playlist
			continue
		}
		pending = append(pending, id)
	}

	channels, report, err := Batch(ctx, pending,
		BatchOptions{
			Size:      s.opts.BatchSize,
			Pause:     s.opts.BatchPause,
			Policy:    s.opts.Policy,
			Operation: "channels.contentDetails",
			Logger:    s.logger,
		},
		func(ctx context.Context, batch []string) ([]youtube.Channel, error) {
			return s.api.ChannelsByID(ctx, uploadsParts, batch)
		},
		func(ch youtube.Channel) string { return ch.ID },
	)
	if err != nil {
		return nil, nil, err
	}
	for id, ch := range channels {
		playlist := ch.UploadsPlaylistID()
		uploads[id] = playlist
		if playlist != "" {
			s.cache.StoreUploadsPlaylist(ctx, id, playlist)
		}
	}
	failed := make(map[string]bool, len(report.Failed))
	for _, id := range report.Failed {
		failed[id] = true
	}
	return uploads, failed, nil
}

// fetchPages fills candidates[i].items on a bounded pool. Each worker writes
// only its own slot.
func (s *Selector) fetchPages(ctx context.Context, candidates []candidate) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i := range candidates {
		g.Go(func() error {
			if s.opts.Pause > 0 {
				if err := s.opts.Policy.Sleep(gctx, s.opts.Pause); err != nil {
					return err
				}
			}
			cand := &candidates[i]
			fetch := func(ctx context.Context, cursor string) (paginate.Page[string], error) {
				page, err := s.api.PlaylistItemsPage(ctx, cand.playlistID, cursor, s.opts.PageSize)
				return paginate.Page[string]{Items: page.Items, Next: page.Next}, err
			}
			items, err := paginate.Drain(gctx, fetch, paginate.Options{MaxPages: s.opts.MaxPages, Policy: s.opts.Policy})
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			cand.items = items
			cand.err = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
