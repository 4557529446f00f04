package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. The API key is not checked here
// so offline commands work without one; see RequireAPIKey.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateEnrichment(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateYouTube() error {
	parsed, err := url.Parse(c.YouTube.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("youtube.base_url must be an absolute URL, got %q", c.YouTube.BaseURL)
	}
	if c.YouTube.RequestsPerSecond <= 0 {
		return errors.New("youtube.requests_per_second must be positive")
	}
	return ensurePositiveMap(map[string]int{
		"youtube.request_timeout": c.YouTube.RequestTimeout,
		"youtube.burst":           c.YouTube.Burst,
	})
}

func (c *Config) validateDiscovery() error {
	if err := ensurePositiveMap(map[string]int{
		"discovery.target_count":     c.Discovery.TargetCount,
		"discovery.max_attempts":     c.Discovery.MaxAttempts,
		"discovery.query_length":     c.Discovery.QueryLength,
		"discovery.search_page_size": c.Discovery.SearchPageSize,
		"discovery.batch_size":       c.Discovery.BatchSize,
	}); err != nil {
		return err
	}
	if c.Discovery.SearchPageSize > MaxBatchSize {
		return fmt.Errorf("discovery.search_page_size must be <= %d", MaxBatchSize)
	}
	if c.Discovery.BatchSize > MaxBatchSize {
		return fmt.Errorf("discovery.batch_size must be <= %d", MaxBatchSize)
	}
	if c.Discovery.SubscriberMin < 0 {
		return errors.New("discovery.subscriber_min must be >= 0")
	}
	if c.Discovery.SubscriberMax < c.Discovery.SubscriberMin {
		return errors.New("discovery.subscriber_max must be >= discovery.subscriber_min")
	}
	if c.Discovery.PauseMillis < 0 {
		return errors.New("discovery.pause_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateEnrichment() error {
	if err := ensurePositiveMap(map[string]int{
		"enrichment.batch_size":         c.Enrichment.BatchSize,
		"enrichment.playlist_page_size": c.Enrichment.PlaylistPageSize,
		"enrichment.playlist_max_pages": c.Enrichment.PlaylistMaxPages,
		"enrichment.workers":            c.Enrichment.Workers,
	}); err != nil {
		return err
	}
	if c.Enrichment.BatchSize > MaxBatchSize {
		return fmt.Errorf("enrichment.batch_size must be <= %d", MaxBatchSize)
	}
	if c.Enrichment.PlaylistPageSize > MaxBatchSize {
		return fmt.Errorf("enrichment.playlist_page_size must be <= %d", MaxBatchSize)
	}
	if c.Enrichment.SelectPauseMillis < 0 || c.Enrichment.BatchPauseMillis < 0 {
		return errors.New("enrichment pauses must be >= 0")
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxAttempts <= 0 {
		return errors.New("retry.max_attempts must be positive")
	}
	if c.Retry.BaseDelayMillis < 0 {
		return errors.New("retry.base_delay_ms must be >= 0")
	}
	if c.Retry.MaxDelayMillis < 0 {
		return errors.New("retry.max_delay_ms must be >= 0")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		return errors.New("retry.jitter must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.ChannelTable {
	case ChannelTableCSV, ChannelTableSQLite:
		return nil
	default:
		return fmt.Errorf("storage.channel_table must be %q or %q, got %q", ChannelTableCSV, ChannelTableSQLite, c.Storage.ChannelTable)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
