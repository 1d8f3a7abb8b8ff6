// Package linkcache keeps resolved links in Redis so redirects can skip
// PostgreSQL.
package linkcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sundayezeilo/shortlinks/internal/metrics"
	"github.com/sundayezeilo/shortlinks/internal/shortener"
)

const (
	keyPrefix  = "sl:"
	DefaultTTL = 10 * time.Minute
)

// entry is the cached form of a link.
type entry struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"ownerId"`
	OriginalURL string    `json:"originalUrl"`
	ShortCode   string    `json:"shortCode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Cache implements shortener.Cache on top of a Redis client.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ shortener.Cache = (*Cache)(nil)

func New(client redis.UniversalClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func key(code string) string {
	return keyPrefix + code
}

func (c *Cache) Get(ctx context.Context, code string) (shortener.Link, bool, error) {
	raw, err := c.client.Get(ctx, key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return shortener.Link{}, false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return shortener.Link{}, false, err
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return shortener.Link{}, false, err
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()

	return shortener.Link{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		OriginalURL: e.OriginalURL,
		ShortCode:   e.ShortCode,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}, true, nil
}

func (c *Cache) Set(ctx context.Context, link shortener.Link) error {
	raw, err := json.Marshal(entry{
		ID:          link.ID,
		OwnerID:     link.OwnerID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(link.ShortCode), raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, key(code))
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
