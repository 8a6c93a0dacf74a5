package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stwalsh4118/landbroker/api/internal/models"
)

// recordKeyPrefix namespaces cached land records; bump the version when the
// cached JSON shape changes.
const recordKeyPrefix = "landbroker:record:v1:"

// generationKeyPrefix holds a per-record counter bumped by every invalidation.
const generationKeyPrefix = "landbroker:record-gen:v1:"

// generationTTL bounds how long an idle record's counter is kept. A counter
// that expires reads as 0, which only ever causes a skipped fill.
const generationTTL = 24 * time.Hour

// RecordCache is a read-through cache for assembled land records.
//
// A reader that misses takes the record's Generation before loading it from
// storage and passes it to Fill. Invalidate bumps the generation, so a fill
// carrying a record loaded before a concurrent write is discarded.
type RecordCache interface {
	// Get returns the cached record. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, landID string) (*models.LandRecord, bool, error)
	// Generation returns the record's current invalidation counter.
	Generation(ctx context.Context, landID string) (int64, error)
	// Fill stores record only if its generation is still generation.
	// It reports whether the record was stored.
	Fill(ctx context.Context, record *models.LandRecord, generation int64) (bool, error)
	Invalidate(ctx context.Context, landIDs ...string) error
}

// RedisRecordCache stores records as JSON strings with a fixed TTL.
type RedisRecordCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRecordCache creates a Redis-backed RecordCache.
// The client lifecycle is managed by the caller.
func NewRedisRecordCache(client *redis.Client, ttl time.Duration) *RedisRecordCache {
	return &RedisRecordCache{client: client, ttl: ttl}
}

func recordKey(landID string) string {
	return recordKeyPrefix + landID
}

func generationKey(landID string) string {
	return generationKeyPrefix + landID
}

// fillScript sets KEYS[1] only while KEYS[2] still holds the caller's generation.
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Get returns the cached record for landID.
func (c *RedisRecordCache) Get(ctx context.Context, landID string) (*models.LandRecord, bool, error) {
	raw, err := c.client.Get(ctx, recordKey(landID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached record: %w", err)
	}

	var record models.LandRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		// A stale or corrupt entry is treated as a miss and dropped
		_ = c.client.Del(ctx, recordKey(landID)).Err()
		return nil, false, nil
	}
	return &record, true, nil
}

// Generation returns 0 for a record that has never been invalidated.
func (c *RedisRecordCache) Generation(ctx context.Context, landID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(landID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read record generation: %w", err)
	}
	return gen, nil
}

// Fill stores record under its LandID unless it was invalidated after generation was read.
func (c *RedisRecordCache) Fill(ctx context.Context, record *models.LandRecord, generation int64) (bool, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("failed to encode record: %w", err)
	}

	stored, err := fillScript.Run(ctx, c.client,
		[]string{recordKey(record.LandID), generationKey(record.LandID)},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache record: %w", err)
	}
	return stored == 1, nil
}

// Invalidate removes the given records from the cache.
func (c *RedisRecordCache) Invalidate(ctx context.Context, landIDs ...string) error {
	if len(landIDs) == 0 {
		return nil
	}

	keys := make([]string, len(landIDs))
	for i, id := range landIDs {
		keys[i] = recordKey(id)
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, id := range landIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Expire(ctx, generationKey(id), generationTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate records: %w", err)
	}
	return nil
}

// NoopRecordCache is used when Redis is not configured; every lookup misses.
type NoopRecordCache struct{}

func (NoopRecordCache) Get(context.Context, string) (*models.LandRecord, bool, error) {
	return nil, false, nil
}

func (NoopRecordCache) Generation(context.Context, string) (int64, error) { return 0, nil }

func (NoopRecordCache) Fill(context.Context, *models.LandRecord, int64) (bool, error) {
	return false, nil
}

func (NoopRecordCache) Invalidate(context.Context, ...string) error { return nil }
