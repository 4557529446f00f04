package testsupport

import (
	"path/filepath"
	"testing"

	"ytharvest/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retries are fast, pauses are off, and the seed is fixed so runs are
// reproducible.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.YouTube.APIKey = "test"
	cfgVal.YouTube.BaseURL = "http://127.0.0.1:0"
	cfgVal.YouTube.RequestsPerSecond = 1000
	cfgVal.YouTube.Burst = 1000
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ChannelsFile = filepath.Join(base, "channels.csv")
	cfgVal.Paths.OutputFile = filepath.Join(base, "videos.csv")
	cfgVal.Storage.Database = filepath.Join(base, "state", "ytharvest.db")
	cfgVal.Discovery.PauseMillis = 0
	cfgVal.Discovery.Seed = 1
	cfgVal.Enrichment.SelectPauseMillis = 0
	cfgVal.Enrichment.BatchPauseMillis = 0
	cfgVal.Retry.MaxAttempts = 2
	cfgVal.Retry.BaseDelayMillis = 1
	cfgVal.Retry.MaxDelayMillis = 5
	cfgVal.Cache.RedisURL = ""
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithYouTubeServer points the config at a fake API server.
func WithYouTubeServer(server *FakeYouTube) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.BaseURL = server.URL()
	}
}

// WithAPIKey sets the YouTube API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YouTube.APIKey = key
	}
}

// WithBand overrides the discovery subscriber band.
func WithBand(low, high int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Discovery.SubscriberMin = low
		b.cfg.Discovery.SubscriberMax = high
	}
}

// WithTarget overrides the discovery target and search budget.
func WithTarget(target, attempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Discovery.TargetCount = target
		b.cfg.Discovery.MaxAttempts = attempts
	}
}

// WithSQLiteChannels stores the channel table in the state database.
func WithSQLiteChannels() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.ChannelTable = config.ChannelTableSQLite
	}
}

// WithMetricsTextfile enables the Prometheus textfile export under the temp dir.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "ytharvest.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ChannelsFile)
}
