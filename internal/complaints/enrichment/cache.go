package enrichment

import (
	"context"
	"encoding/json"
	"time"

	"reclamations/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache keeps normalized customer details in Redis so repeated submissions
// for the same customer skip the lookup API.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(q Query) string {
	return "customer:" + q.Key()
}

// Get returns the cached detail. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, q Query) (models.CustomerDetail, bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(q)).Bytes()
	if err == redis.Nil {
		return models.CustomerDetail{}, false, nil
	}
	if err != nil {
		return models.CustomerDetail{}, false, err
	}
	var d models.CustomerDetail
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.CustomerDetail{}, false, err
	}
	return d, true, nil
}

func (c *Cache) Set(ctx context.Context, q Query, d models.CustomerDetail) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(q), raw, c.ttl).Err()
}
