package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"ytharvest/internal/catalog"
	"ytharvest/internal/logging"
)

const (
	keyPrefix     = "ytharvest:"
	bucketUploads = "uploads"
	bucketVideo   = "video"
	pingTimeout   = 3 * time.Second
)

// LookupObserver is told about every cache read.
type LookupObserver func(bucket string, hit bool)

// Cache is a Redis cache-aside layer for lookups that rarely change between
// runs. A Cache without a client is disabled and every call is a no-op miss.
type Cache struct {
	rdb        *redis.Client
	logger     *slog.Logger
	uploadsTTL time.Duration
	videoTTL   time.Duration
	observe    LookupObserver
}

// Options configures a Cache.
type Options struct {
	UploadsTTL time.Duration
	VideoTTL   time.Duration
	Observer   LookupObserver
}

// Connect dials redisURL. An empty URL, an invalid URL, or an unreachable
// server all yield a disabled cache.
func Connect(ctx context.Context, redisURL string, opts Options, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "cache")
	if redisURL == "" {
		logger.Debug("redis not configured; caching disabled")
		return New(nil, opts, logger)
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.WarnWithContext(logger, "invalid redis url; caching disabled", "cache_disabled",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache.redis_url or YTHARVEST_REDIS_URL"),
			logging.String(logging.FieldImpact, "every lookup goes to the YouTube API"),
		)
		return New(nil, opts, logger)
	}
	rdb := redis.NewClient(redisOpts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		logging.WarnWithContext(logger, "redis unreachable; caching disabled", "cache_disabled",
			logging.Error(err),
			logging.String("addr", redisOpts.Addr),
			logging.String(logging.FieldErrorHint, "start redis or unset cache.redis_url"),
			logging.String(logging.FieldImpact, "every lookup goes to the YouTube API"),
		)
		return New(nil, opts, logger)
	}
	logger.Info("redis connected; caching enabled", logging.String("addr", redisOpts.Addr))
	return New(rdb, opts, logger)
}

// New wraps an existing client. rdb may be nil.
func New(rdb *redis.Client, opts Options, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		rdb:        rdb,
		logger:     logger,
		uploadsTTL: opts.UploadsTTL,
		videoTTL:   opts.VideoTTL,
		observe:    opts.Observer,
	}
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// UploadsPlaylist returns the cached uploads playlist id for a channel.
func (c *Cache) UploadsPlaylist(ctx context.Context, channelID string) (string, bool) {
	return lookup[string](ctx, c, bucketUploads, channelID)
}

// StoreUploadsPlaylist caches a channel's uploads playlist id.
func (c *Cache) StoreUploadsPlaylist(ctx context.Context, channelID, playlistID string) {
	store(ctx, c, bucketUploads, channelID, playlistID, c.ttl(bucketUploads))
}

// Video returns a cached video record.
func (c *Cache) Video(ctx context.Context, videoID string) (catalog.Video, bool) {
	return lookup[catalog.Video](ctx, c, bucketVideo, videoID)
}

// StoreVideo caches a video record.
func (c *Cache) StoreVideo(ctx context.Context, video catalog.Video) {
	store(ctx, c, bucketVideo, video.ID, video, c.ttl(bucketVideo))
}

func (c *Cache) ttl(bucket string) time.Duration {
	if c == nil {
		return 0
	}
	if bucket == bucketUploads {
		return c.uploadsTTL
	}
	return c.videoTTL
}

// Key builds the Redis key for an entry.
func Key(bucket, id string) string {
	return keyPrefix + bucket + ":" + id
}

func lookup[T any](ctx context.Context, c *Cache, bucket, id string) (T, bool) {
	var zero T
	if !c.Enabled() || id == "" {
		return zero, false
	}
	data, err := c.rdb.Get(ctx, Key(bucket, id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("cache read failed", logging.String("bucket", bucket), logging.Error(err))
		}
		c.record(bucket, false)
		return zero, false
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Debug("cache entry undecodable", logging.String("bucket", bucket), logging.Error(err))
		c.record(bucket, false)
		return zero, false
	}
	c.record(bucket, true)
	return value, true
}

func store(ctx context.Context, c *Cache, bucket, id string, value any, ttl time.Duration) {
	if !c.Enabled() || id == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("cache encode failed", logging.String("bucket", bucket), logging.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, Key(bucket, id), data, ttl).Err(); err != nil {
		c.logger.Debug("cache write failed", logging.String("bucket", bucket), logging.Error(err))
	}
}

func (c *Cache) record(bucket string, hit bool) {
	if c.observe != nil {
		c.observe(bucket, hit)
	}
}
