package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"ytharvest/internal/cache"
	"ytharvest/internal/catalog"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	c := cache.Connect(context.Background(), "", cache.Options{}, nil)
	assert.False(t, c.Enabled())

	c.StoreUploadsPlaylist(context.Background(), "UC1", "UU1")
	_, ok := c.UploadsPlaylist(context.Background(), "UC1")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *cache.Cache
	assert.False(t, c.Enabled())
	_, ok := c.Video(context.Background(), "v1")
	assert.False(t, ok)
	c.StoreVideo(context.Background(), catalog.Video{ID: "v1"})
}

func TestInvalidURLDisablesCache(t *testing.T) {
	c := cache.Connect(context.Background(), "not a url", cache.Options{}, nil)
	assert.False(t, c.Enabled())
}

func TestUnreachableServerCountsMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	var hits, misses int
	c := cache.New(rdb, cache.Options{
		VideoTTL: time.Hour,
		Observer: func(bucket string, hit bool) {
			assert.Equal(t, "video", bucket)
			if hit {
				hits++
			} else {
				misses++
			}
		},
	}, nil)

	c.StoreVideo(context.Background(), catalog.Video{ID: "v1"})
	_, ok := c.Video(context.Background(), "v1")
	assert.False(t, ok)
	assert.Equal(t, 0, hits)
	assert.Equal(t, 1, misses)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "ytharvest:uploads:UC1", cache.Key("uploads", "UC1"))
}
