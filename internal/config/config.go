package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"ytharvest/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// YouTube contains configuration for the YouTube Data API v3.
type YouTube struct {
	APIKey            string  `toml:"api_key" yaml:"api_key"`
	BaseURL           string  `toml:"base_url" yaml:"base_url"`
	RequestTimeout    int     `toml:"request_timeout" yaml:"request_timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `toml:"burst" yaml:"burst"`
}

// Paths contains table locations and working directories.
type Paths struct {
	ChannelsFile string `toml:"channels_file" yaml:"channels_file"`
	OutputFile   string `toml:"output_file" yaml:"output_file"`
	StateDir     string `toml:"state_dir" yaml:"state_dir"`
	LogDir       string `toml:"log_dir" yaml:"log_dir"`
}

// Discovery contains the channel sampling knobs.
type Discovery struct {
	TargetCount    int   `toml:"target_count" yaml:"target_count"`
	MaxAttempts    int   `toml:"max_attempts" yaml:"max_attempts"`
	SubscriberMin  int64 `toml:"subscriber_min" yaml:"subscriber_min"`
	SubscriberMax  int64 `toml:"subscriber_max" yaml:"subscriber_max"`
	QueryLength    int   `toml:"query_length" yaml:"query_length"`
	SearchPageSize int   `toml:"search_page_size" yaml:"search_page_size"`
	BatchSize      int   `toml:"batch_size" yaml:"batch_size"`
	PauseMillis    int   `toml:"pause_ms" yaml:"pause_ms"`
	// Seed makes sampling and video selection reproducible. Zero seeds from the clock.
	Seed uint64 `toml:"seed" yaml:"seed"`
}

// Enrichment contains the video selection and batch enrichment knobs.
type Enrichment struct {
	BatchSize         int `toml:"batch_size" yaml:"batch_size"`
	PlaylistPageSize  int `toml:"playlist_page_size" yaml:"playlist_page_size"`
	PlaylistMaxPages  int `toml:"playlist_max_pages" yaml:"playlist_max_pages"`
	Workers           int `toml:"workers" yaml:"workers"`
	SelectPauseMillis int `toml:"select_pause_ms" yaml:"select_pause_ms"`
	BatchPauseMillis  int `toml:"batch_pause_ms" yaml:"batch_pause_ms"`
}

// Retry contains the backoff policy applied to every remote call.
type Retry struct {
	MaxAttempts     int     `toml:"max_attempts" yaml:"max_attempts"`
	BaseDelayMillis int     `toml:"base_delay_ms" yaml:"base_delay_ms"`
	MaxDelayMillis  int     `toml:"max_delay_ms" yaml:"max_delay_ms"`
	Jitter          float64 `toml:"jitter" yaml:"jitter"`
}

// Storage selects the medium used for the intermediate channel table.
type Storage struct {
	ChannelTable string `toml:"channel_table" yaml:"channel_table"`
	Database     string `toml:"database" yaml:"database"`
}

// Cache contains the optional Redis response cache settings.
type Cache struct {
	RedisURL        string `toml:"redis_url" yaml:"redis_url"`
	UploadsTTLHours int    `toml:"uploads_ttl_hours" yaml:"uploads_ttl_hours"`
	VideoTTLHours   int    `toml:"video_ttl_hours" yaml:"video_ttl_hours"`
}

// Metrics contains Prometheus export settings.
type Metrics struct {
	Textfile string `toml:"textfile" yaml:"textfile"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic" yaml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout" yaml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Config encapsulates all configuration values for ytharvest.
//
// Configuration sections by subsystem:
//   - YouTube: API credential, endpoint, and request budget
//   - Paths: channel table, output table, state and log directories
//   - Discovery: random channel sampling and the subscriber band
//   - Enrichment: video selection and batch detail lookups
//   - Retry: backoff policy for remote calls
//   - Storage: CSV or SQLite channel table
//   - Cache: optional Redis cache for stable lookups
//   - Metrics: Prometheus textfile export
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	YouTube       YouTube       `toml:"youtube" yaml:"youtube"`
	Paths         Paths         `toml:"paths" yaml:"paths"`
	Discovery     Discovery     `toml:"discovery" yaml:"discovery"`
	Enrichment    Enrichment    `toml:"enrichment" yaml:"enrichment"`
	Retry         Retry         `toml:"retry" yaml:"retry"`
	Storage       Storage       `toml:"storage" yaml:"storage"`
	Cache         Cache         `toml:"cache" yaml:"cache"`
	Metrics       Metrics       `toml:"metrics" yaml:"metrics"`
	Notifications Notifications `toml:"notifications" yaml:"notifications"`
	Logging       Logging       `toml:"logging" yaml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ytharvest.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RequireAPIKey reports a configuration error when no YouTube credential is
// available. Commands that talk to the remote API call it before doing any work.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.YouTube.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return services.Wrap(services.ErrConfiguration, "config", "youtube.api_key",
		fmt.Sprintf("required; set %s or edit %s (create with 'ytharvest config init')", envAPIKey, defaultPath), nil)
}

// EnsureDirectories creates the state and log directories plus the parent
// directories of both tables.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir, c.Paths.LogDir}
	for _, file := range []string{c.Paths.ChannelsFile, c.Paths.OutputFile, c.Storage.Database} {
		if strings.TrimSpace(file) != "" {
			dirs = append(dirs, filepath.Dir(file))
		}
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RetryBaseDelay returns the configured backoff base as a duration.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Retry.BaseDelayMillis) * time.Millisecond
}

// RetryMaxDelay returns the configured backoff cap as a duration. Zero means uncapped.
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Retry.MaxDelayMillis) * time.Millisecond
}

// RequestTimeout returns the per-request deadline for remote calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.YouTube.RequestTimeout) * time.Second
}

// UsesSQLiteChannels reports whether the channel table lives in the SQLite state database.
func (c *Config) UsesSQLiteChannels() bool {
	return c.Storage.ChannelTable == ChannelTableSQLite
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
