// Package cache keeps job custom field definitions in Redis so repeated
// previews for the same job do not hit the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/candidate-import/internal/core"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long cached definitions are trusted.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "candidate-import:custom-fields:"

// FieldCache is a read-through cache in front of a core.FieldSource.
// Redis failures fall back to the source; the cache never fails a request.
type FieldCache struct {
	client *redis.Client
	source core.FieldSource
	ttl    time.Duration
}

var _ core.FieldSource = (*FieldCache)(nil)

// NewFieldCache wraps source. A non-positive ttl uses DefaultTTL.
func NewFieldCache(client *redis.Client, source core.FieldSource, ttl time.Duration) *FieldCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FieldCache{client: client, source: source, ttl: ttl}
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func cacheKey(jobID string) string {
	return keyPrefix + jobID
}

// CustomFields returns cached definitions, loading and storing them on a miss.
func (c *FieldCache) CustomFields(ctx context.Context, jobID string) ([]core.CustomFieldDefinition, error) {
	key := cacheKey(jobID)

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var fields []core.CustomFieldDefinition
		if err := json.Unmarshal(val, &fields); err == nil {
			return fields, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.Warn("field cache unavailable", "job_id", jobID, "error", err)
	}

	fields, err := c.source.CustomFields(ctx, jobID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fields, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("field cache write failed", "job_id", jobID, "error", err)
	}
	return fields, nil
}

// Invalidate drops the cached definitions of a job.
func (c *FieldCache) Invalidate(ctx context.Context, jobID string) error {
	return c.client.Del(ctx, cacheKey(jobID)).Err()
}
