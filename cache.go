package sharehub

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eringen/sharehub/content"
)

// ErrNotFound is returned when a requested link does not exist.
var ErrNotFound = sql.ErrNoRows

// ErrCacheMiss is returned by a LinkCache that does not hold the link.
var ErrCacheMiss = errors.New("sharehub: cache miss")

// LinkCache caches resolved links, with their posts, by link id.
type LinkCache interface {
	Get(ctx context.Context, linkID string) (content.GeneratedLink, error)
	Set(ctx context.Context, link content.GeneratedLink) error
	Invalidate(ctx context.Context, linkID string) error
	Flush(ctx context.Context) error
}

// MemoryLinkCache is a process-local LinkCache with a fixed TTL.
type MemoryLinkCache struct {
	mu      sync.RWMutex
	entries map[string]cachedLink
	ttl     time.Duration
	max     int
}

type cachedLink struct {
	link    content.GeneratedLink
	fetched time.Time
}

// NewMemoryLinkCache creates a cache holding at most max links for ttl each.
func NewMemoryLinkCache(ttl time.Duration, max int) *MemoryLinkCache {
	if max <= 0 {
		max = 1000
	}
	return &MemoryLinkCache{entries: make(map[string]cachedLink), ttl: ttl, max: max}
}

func (c *MemoryLinkCache) valid(e cachedLink) bool {
	return time.Since(e.fetched) < c.ttl
}

func (c *MemoryLinkCache) Get(_ context.Context, linkID string) (content.GeneratedLink, error) {
	c.mu.RLock()
	e, ok := c.entries[linkID]
	c.mu.RUnlock()
	if !ok || !c.valid(e) {
		return content.GeneratedLink{}, ErrCacheMiss
	}
	return e.link, nil
}

func (c *MemoryLinkCache) Set(_ context.Context, link content.GeneratedLink) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.max {
		c.evict()
	}
	c.entries[link.LinkID] = cachedLink{link: link, fetched: time.Now()}
	return nil
}

// evict drops expired entries, or everything if none had expired. Callers
// hold the write lock.
func (c *MemoryLinkCache) evict() {
	for id, e := range c.entries {
		if !c.valid(e) {
			delete(c.entries, id)
		}
	}
	if len(c.entries) >= c.max {
		c.entries = make(map[string]cachedLink)
	}
}

func (c *MemoryLinkCache) Invalidate(_ context.Context, linkID string) error {
	c.mu.Lock()
	delete(c.entries, linkID)
	c.mu.Unlock()
	return nil
}

func (c *MemoryLinkCache) Flush(context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]cachedLink)
	c.mu.Unlock()
	return nil
}

const redisLinkKeyPrefix = "sharehub:link:"

// RedisLinkCache shares cached links between server instances.
type RedisLinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLinkCache connects to the Redis server at url (redis://...) and
// verifies the connection.
func NewRedisLinkCache(ctx context.Context, url string, ttl time.Duration) (*RedisLinkCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisLinkCache{client: client, ttl: ttl}, nil
}

func (c *RedisLinkCache) key(linkID string) string {
	return redisLinkKeyPrefix + linkID
}

func (c *RedisLinkCache) Get(ctx context.Context, linkID string) (content.GeneratedLink, error) {
	val, err := c.client.Get(ctx, c.key(linkID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return content.GeneratedLink{}, ErrCacheMiss
		}
		return content.GeneratedLink{}, fmt.Errorf("get link from cache: %w", err)
	}
	var link content.GeneratedLink
	if err := json.Unmarshal(val, &link); err != nil {
		return content.GeneratedLink{}, fmt.Errorf("unmarshal cached link: %w", err)
	}
	return link, nil
}

func (c *RedisLinkCache) Set(ctx context.Context, link content.GeneratedLink) error {
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("marshal link: %w", err)
	}
	if err := c.client.Set(ctx, c.key(link.LinkID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set link cache: %w", err)
	}
	return nil
}

func (c *RedisLinkCache) Invalidate(ctx context.Context, linkID string) error {
	if err := c.client.Del(ctx, c.key(linkID)).Err(); err != nil {
		return fmt.Errorf("delete link from cache: %w", err)
	}
	return nil
}

// Flush removes every cached link.
func (c *RedisLinkCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, redisLinkKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan link cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Close closes the Redis connection.
func (c *RedisLinkCache) Close() error {
	return c.client.Close()
}
