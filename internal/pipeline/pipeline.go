package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"ytharvest/internal/backoff"
	"ytharvest/internal/cache"
	"ytharvest/internal/catalog"
	"ytharvest/internal/config"
	"ytharvest/internal/dataset"
	"ytharvest/internal/logging"
	"ytharvest/internal/metrics"
	"ytharvest/internal/notifications"
	"ytharvest/internal/store"
	"ytharvest/internal/youtube"
)

// Stage names recorded in logs, metrics, and the ledger.
const (
	StageDiscovery  = "discovery"
	StageEnrichment = "enrichment"
)

// Ledger records stage executions.
type Ledger interface {
	BeginRun(ctx context.Context, id, stage string) error
	FinishRun(ctx context.Context, id string, outcome store.Outcome) error
}

// Deps are the collaborators a Pipeline drives. Only API, Table, and Output
// are required.
type Deps struct {
	API      youtube.API
	Table    catalog.ChannelTable
	Output   catalog.RowWriter
	Ledger   Ledger
	Cache    *cache.Cache
	Metrics  *metrics.Recorder
	Notifier notifications.Service
	Rand     *rand.Rand

	// TableLock and OutputLock are lock file paths guarding the channel
	// table and the output table. Empty disables locking.
	TableLock  string
	OutputLock string
	// OutputPath is reported in summaries and notifications.
	OutputPath string
}

// Pipeline owns all state for harvesting runs.
type Pipeline struct {
	cfg      *config.Config
	api      youtube.API
	table    catalog.ChannelTable
	output   catalog.RowWriter
	ledger   Ledger
	cache    *cache.Cache
	metrics  *metrics.Recorder
	notifier notifications.Service
	rng      *rand.Rand
	logger   *slog.Logger

	tableLock  string
	outputLock string
	outputPath string

	closers []func() error
}

// New assembles a Pipeline from explicit dependencies.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	if deps.API == nil || deps.Table == nil || deps.Output == nil {
		return nil, errors.New("pipeline requires api, channel table, and output")
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(nil)
	}
	if deps.Rand == nil {
		deps.Rand = newRand(cfg.Discovery.Seed)
	}
	return &Pipeline{
		cfg:        cfg,
		api:        deps.API,
		table:      deps.Table,
		output:     deps.Output,
		ledger:     deps.Ledger,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		notifier:   deps.Notifier,
		rng:        deps.Rand,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		tableLock:  deps.TableLock,
		outputLock: deps.OutputLock,
		outputPath: deps.OutputPath,
	}, nil
}

// Open builds a Pipeline from configuration: the YouTube client, the state
// database, the configured channel table, the CSV output, and the optional
// cache, metrics, and notifier. Close releases what Open acquired.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	recorder := metrics.New()
	client, err := youtube.New(cfg.YouTube.APIKey, cfg.YouTube.BaseURL,
		youtube.WithRateLimit(cfg.YouTube.RequestsPerSecond, cfg.YouTube.Burst),
		youtube.WithRequestTimeout(cfg.RequestTimeout()),
		youtube.WithObserver(recorder.APIRequest),
	)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Storage.Database)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	deps := Deps{
		API:        client,
		Output:     dataset.NewOutputFile(cfg.Paths.OutputFile),
		Ledger:     st,
		Metrics:    recorder,
		Notifier:   notifications.NewService(cfg),
		OutputLock: cfg.Paths.OutputFile + lockSuffix,
		OutputPath: cfg.Paths.OutputFile,
	}
	if cfg.UsesSQLiteChannels() {
		deps.Table = st.Channels()
		deps.TableLock = cfg.Storage.Database + lockSuffix
	} else {
		deps.Table = dataset.NewChannelFile(cfg.Paths.ChannelsFile)
		deps.TableLock = cfg.Paths.ChannelsFile + lockSuffix
	}
	deps.Cache = cache.Connect(ctx, cfg.Cache.RedisURL, cache.Options{
		UploadsTTL: time.Duration(cfg.Cache.UploadsTTLHours) * time.Hour,
		VideoTTL:   time.Duration(cfg.Cache.VideoTTLHours) * time.Hour,
		Observer:   recorder.CacheLookup,
	}, logger)

	p, err := New(cfg, deps, logger)
	if err != nil {
		_ = deps.Cache.Close()
		_ = st.Close()
		return nil, err
	}
	p.closers = append(p.closers, deps.Cache.Close, st.Close)
	return p, nil
}

// Close releases resources acquired by Open.
func (p *Pipeline) Close() error {
	var errs []error
	for _, closeFn := range p.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

// policy derives the retry policy for one component from configuration.
func (p *Pipeline) policy(operation string) backoff.Policy {
	return backoff.Policy{
		MaxAttempts: p.cfg.Retry.MaxAttempts,
		BaseDelay:   p.cfg.RetryBaseDelay(),
		MaxDelay:    p.cfg.RetryMaxDelay(),
		Jitter:      p.cfg.Retry.Jitter,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			p.metrics.Retry(operation)
			p.logger.Debug("retrying remote call",
				logging.String("operation", operation),
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Error(err),
			)
		},
	}
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
