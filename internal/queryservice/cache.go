package queryservice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/common/metrics"
	"vehicle-search/internal/models"
)

const cacheKeyPrefix = "vehicles:query:"

// CachedStore is a read-through Redis cache in front of another Store.
// Cache failures are logged and the query falls through to the store.
type CachedStore struct {
	next   Store
	client redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(next Store, client redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "query-cache"}),
	}
}

func (c *CachedStore) Query(ctx context.Context, q models.VehicleQuery) ([]models.Vehicle, error) {
	key, err := cacheKey(q)
	if err != nil {
		return c.next.Query(ctx, q)
	}

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rows []models.Vehicle
		if jerr := json.Unmarshal(cached, &rows); jerr == nil {
			metrics.RecordCache(true)
			return rows, nil
		}
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	metrics.RecordCache(false)

	rows, err := c.next.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	if blob, jerr := json.Marshal(rows); jerr == nil {
		if serr := c.client.Set(ctx, key, blob, c.ttl).Err(); serr != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": serr.Error()})
		}
	}
	return rows, nil
}

// cacheKey hashes the canonical JSON of the query. Struct field order
// makes the encoding stable.
func cacheKey(q models.VehicleQuery) (string, error) {
	blob, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(blob)
	return cacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}
