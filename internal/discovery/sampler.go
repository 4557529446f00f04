package discovery

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"ytharvest/internal/backoff"
	"ytharvest/internal/catalog"
	"ytharvest/internal/logging"
	"ytharvest/internal/services"
	"ytharvest/internal/youtube"
)

const queryAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// Rejection reasons reported in Result.Rejected.
const (
	RejectHidden     = "hidden"
	RejectMissing    = "missing"
	RejectUnparsable = "unparsable"
	RejectOutOfBand  = "out_of_band"
)

var statisticsParts = []string{"statistics", "snippet"}

// Searcher is the slice of the YouTube API used by discovery.
type Searcher interface {
	SearchChannelIDs(ctx context.Context, query string, maxResults int) ([]string, error)
	ChannelsByID(ctx context.Context, parts []string, ids []string) ([]youtube.Channel, error)
}

// Band is a closed subscriber-count interval.
type Band struct {
	Low  int64
	High int64
}

// Contains reports whether Low <= n <= High.
func (b Band) Contains(n int64) bool {
	return n >= b.Low && n <= b.High
}

// Options configures a Sampler.
type Options struct {
	Target         int
	MaxAttempts    int
	QueryLength    int
	SearchPageSize int
	BatchSize      int
	Band           Band
	Pause          time.Duration
	Policy         backoff.Policy
}

// Result is the outcome of a sampling run. Channels is in admission order
// and never longer than the target.
type Result struct {
	Channels       []catalog.Channel
	Attempts       int
	FailedSearches int
	FailedBatches  int
	Rejected       map[string]int
}

// Sampler draws channels by searching random short queries and filtering the
// hits by subscriber count.
type Sampler struct {
	api    Searcher
	opts   Options
	rng    *rand.Rand
	logger *slog.Logger
}

// NewSampler builds a Sampler. rng must not be shared with concurrent users.
func NewSampler(api Searcher, opts Options, rng *rand.Rand, logger *slog.Logger) *Sampler {
	if opts.QueryLength <= 0 {
		opts.QueryLength = 3
	}
	if opts.SearchPageSize <= 0 || opts.SearchPageSize > youtube.MaxResults {
		opts.SearchPageSize = youtube.MaxResults
	}
	if opts.BatchSize <= 0 || opts.BatchSize > youtube.MaxResults {
		opts.BatchSize = youtube.MaxResults
	}
	if opts.Policy.Sleep == nil {
		opts.Policy.Sleep = backoff.ContextSleep
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Sampler{
		api:    api,
		opts:   opts,
		rng:    rng,
		logger: logging.NewComponentLogger(logger, "discovery"),
	}
}

// Run samples until the target is reached or the attempt budget is spent.
// A spent budget returns the partial result without error; only context
// cancellation aborts the run.
func (s *Sampler) Run(ctx context.Context) (Result, error) {
	logger := logging.WithContext(ctx, s.logger)
	result := Result{Channels: make([]catalog.Channel, 0, max(s.opts.Target, 0)), Rejected: map[string]int{}}
	admitted := make(map[string]struct{})

	for attempt := 0; attempt < s.opts.MaxAttempts && len(result.Channels) < s.opts.Target; attempt++ {
		if attempt > 0 && s.opts.Pause > 0 {
			if err := s.opts.Policy.Sleep(ctx, s.opts.Pause); err != nil {
				return result, err
			}
		}
		result.Attempts++
		query := Query(s.rng, s.opts.QueryLength)

		ids, err := backoff.Do(ctx, s.opts.Policy, func(ctx context.Context) ([]string, error) {
			return s.api.SearchChannelIDs(ctx, query, s.opts.SearchPageSize)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.FailedSearches++
			logging.WarnWithContext(logger, "channel search failed; skipping attempt", "search_failed",
				logging.String("query", query),
				logging.Int("attempt", attempt+1),
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check API quota and network connectivity"),
				logging.String(logging.FieldImpact, "attempt skipped"),
			)
			continue
		}

		fresh := freshIDs(ids, admitted)
		logger.Debug("search returned candidates",
			logging.String("query", query),
			logging.Int("returned", len(ids)),
			logging.Int("fresh", len(fresh)),
		)

		for start := 0; start < len(fresh) && len(result.Channels) < s.opts.Target; start += s.opts.BatchSize {
			batch := fresh[start:min(start+s.opts.BatchSize, len(fresh))]
			if done, err := s.admitBatch(ctx, logger, batch, admitted, &result); err != nil {
				return result, err
			} else if done {
				break
			}
		}
	}

	logger.Info("discovery finished",
		logging.Int("collected", len(result.Channels)),
		logging.Int("target", s.opts.Target),
		logging.Int("attempts", result.Attempts),
		logging.Int("failed_searches", result.FailedSearches),
	)
	return result, nil
}

func (s *Sampler) admitBatch(ctx context.Context, logger *slog.Logger, batch []string, admitted map[string]struct{}, result *Result) (bool, error) {
	channels, err := backoff.Do(ctx, s.opts.Policy, func(ctx context.Context) ([]youtube.Channel, error) {
		return s.api.ChannelsByID(ctx, statisticsParts, batch)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		result.FailedBatches++
		logging.WarnWithContext(logger, "channel statistics batch failed; skipping batch", "stats_batch_failed",
			logging.Int("batch_size", len(batch)),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check API quota and network connectivity"),
			logging.String(logging.FieldImpact, "candidates in this batch were not evaluated"),
		)
		return false, nil
	}

	for _, ch := range channels {
		if ch.ID == "" {
			continue
		}
		if _, seen := admitted[ch.ID]; seen {
			continue
		}
		subscribers, reason := Classify(ch.Statistics, s.opts.Band)
		if reason != "" {
			result.Rejected[reason]++
			continue
		}
		admitted[ch.ID] = struct{}{}
		record := ch.Record(subscribers)
		result.Channels = append(result.Channels, record)
		logger.Info("channel admitted",
			logging.Int("found", len(result.Channels)),
			logging.String(logging.FieldChannelID, record.ID),
			logging.String("title", record.Title),
			logging.Int64("subscribers", record.SubscriberCount),
			logging.Int64("videos", record.VideoCount),
			logging.Int64("views", record.ViewCount),
			logging.String("country", record.Country),
		)
		if len(result.Channels) >= s.opts.Target {
			return true, nil
		}
	}
	return false, nil
}

// Classify evaluates a candidate's statistics against band. It returns the
// parsed subscriber count and an empty reason when the channel is admissible.
func Classify(stats youtube.ChannelStatistics, band Band) (int64, string) {
	if stats.HiddenSubscriberCount {
		return 0, RejectHidden
	}
	if !stats.SubscriberCount.Present || strings.TrimSpace(stats.SubscriberCount.Raw) == "" {
		return 0, RejectMissing
	}
	n, ok := stats.SubscriberCount.Int64()
	if !ok {
		return 0, RejectUnparsable
	}
	if !band.Contains(n) {
		return n, RejectOutOfBand
	}
	return n, ""
}

// Admit reports whether a candidate qualifies, with its subscriber count.
func Admit(stats youtube.ChannelStatistics, band Band) (int64, bool) {
	n, reason := Classify(stats, band)
	return n, reason == ""
}

// Query draws a random search string of length n.
func Query(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(queryAlphabet[rng.IntN(len(queryAlphabet))])
	}
	return b.String()
}

func freshIDs(ids []string, admitted map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := admitted[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
