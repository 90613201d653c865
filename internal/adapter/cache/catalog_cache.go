// Package cache keeps catalog listings in Redis. Keys carry a generation
// number; invalidation advances the generation so listings computed before a
// mutation are never read again and expire on their own.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/acceloka/internal/core/domain"
)

type CatalogCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewCatalogCache(rdb redis.Cmdable, ttl time.Duration, prefix string) *CatalogCache {
	if prefix == "" {
		prefix = "acceloka"
	}
	return &CatalogCache{rdb: rdb, ttl: ttl, prefix: prefix}
}

// Generation returns the current generation, 0 before the first invalidation.
func (c *CatalogCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

func (c *CatalogCache) Get(ctx context.Context, gen int64, q domain.CatalogQuery) ([]domain.Ticket, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(gen, q)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var tickets []domain.Ticket
	if err := json.Unmarshal([]byte(raw), &tickets); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, true, nil
}

// Set stores tickets under gen. A write tagged with a generation that has
// since been invalidated lands on a key no reader asks for.
func (c *CatalogCache) Set(ctx context.Context, gen int64, q domain.CatalogQuery, tickets []domain.Ticket) error {
	body, err := json.Marshal(tickets)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.SetEx(ctx, c.key(gen, q), string(body), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate retires every cached listing by advancing the generation.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *CatalogCache) genKey() string {
	return c.prefix + ":catalog:gen"
}

func (c *CatalogCache) key(gen int64, q domain.CatalogQuery) string {
	sum := sha1.Sum([]byte(canonical(q)))
	return c.prefix + ":catalog:" + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(sum[:])
}

func canonical(q domain.CatalogQuery) string {
	var maxPrice, start, end string
	if q.MaxPrice != nil {
		maxPrice = q.MaxPrice.String()
	}
	if q.StartDate != nil {
		start = q.StartDate.UTC().Format(time.RFC3339Nano)
	}
	if q.EndDate != nil {
		end = q.EndDate.UTC().Format(time.RFC3339Nano)
	}
	return strings.Join([]string{
		"category=" + q.CategoryName,
		"code=" + q.TicketCode,
		"name=" + q.TicketName,
		"max=" + maxPrice,
		"start=" + start,
		"end=" + end,
		"order=" + string(q.OrderBy),
		"dir=" + string(q.OrderState),
	}, "\x1f")
}
