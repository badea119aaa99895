package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"aura-be/internal/entity"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const trendingKey = "aura:posts:trending"

// TrendingCache holds the last computed trending list for a short TTL.
type TrendingCache interface {
	Get(ctx context.Context) ([]*entity.Post, bool)
	Set(ctx context.Context, posts []*entity.Post)
	Invalidate(ctx context.Context)
}

type memoryTrendingCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemoryTrendingCache keeps entries in process.
func NewMemoryTrendingCache(ttl time.Duration) TrendingCache {
	return &memoryTrendingCache{
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (c *memoryTrendingCache) Get(_ context.Context) ([]*entity.Post, bool) {
	if x, found := c.cache.Get(trendingKey); found {
		return clonePosts(x.([]*entity.Post)), true
	}
	return nil, false
}

func (c *memoryTrendingCache) Set(_ context.Context, posts []*entity.Post) {
	c.cache.Set(trendingKey, clonePosts(posts), c.ttl)
}

func (c *memoryTrendingCache) Invalidate(_ context.Context) {
	c.cache.Delete(trendingKey)
}

type redisTrendingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTrendingCache shares entries across instances. Redis errors
// degrade to cache misses.
func NewRedisTrendingCache(rdb *redis.Client, ttl time.Duration) TrendingCache {
	return &redisTrendingCache{rdb: rdb, ttl: ttl}
}

func (c *redisTrendingCache) Get(ctx context.Context) ([]*entity.Post, bool) {
	raw, err := c.rdb.Get(ctx, trendingKey).Bytes()
	if err != nil {
		return nil, false
	}
	var posts []*entity.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

func (c *redisTrendingCache) Set(ctx context.Context, posts []*entity.Post) {
	raw, err := json.Marshal(posts)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, trendingKey, raw, c.ttl).Err()
}

func (c *redisTrendingCache) Invalidate(ctx context.Context) {
	_ = c.rdb.Del(ctx, trendingKey).Err()
}

// NewTrendingCache picks redis when it answers a ping, the in-process cache otherwise.
func NewTrendingCache(ctx context.Context, rdb *redis.Client, ttl time.Duration) (TrendingCache, error) {
	if rdb == nil {
		return NewMemoryTrendingCache(ttl), errors.New("no redis client")
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return NewMemoryTrendingCache(ttl), err
	}
	return NewRedisTrendingCache(rdb, ttl), nil
}

func clonePosts(in []*entity.Post) []*entity.Post {
	out := make([]*entity.Post, len(in))
	for i, p := range in {
		cp := *p
		cp.Tags = append([]string(nil), p.Tags...)
		out[i] = &cp
	}
	return out
}
