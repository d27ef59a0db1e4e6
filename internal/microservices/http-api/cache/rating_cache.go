package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// stored for titles that have no reviews, so a cached "no rating" is not a miss
const nullRating = "null"

// RatingCache keeps computed title ratings in Redis. A nil *RatingCache is a valid,
// disabled cache: every Get misses and every write is a no-op.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache connects to redisURL (redis://[:password@]host:port/db) and pings it.
func NewRatingCache(ctx context.Context, redisURL string, ttl time.Duration) (*RatingCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRatingCacheWithClient(rdb, ttl), nil
}

func NewRatingCacheWithClient(client *redis.Client, ttl time.Duration) *RatingCache {
	return &RatingCache{client: client, ttl: ttl}
}

func key(titleID int64) string {
	return fmt.Sprintf("rating:title:%d", titleID)
}

// genKey holds a counter bumped by every Invalidate. A value computed from the database
// is only stored while the counter still reads what it read before the computation.
func genKey(titleID int64) string {
	return fmt.Sprintf("rating:gen:%d", titleID)
}

// Get returns (rating, true, gen, nil) on a hit; rating is nil for a title without reviews.
// On a miss gen is the generation to pass back to Set once the rating is computed.
func (c *RatingCache) Get(ctx context.Context, titleID int64) (*float64, bool, int64, error) {
	if c == nil || c.client == nil {
		return nil, false, 0, nil
	}
	vals, err := c.client.MGet(ctx, key(titleID), genKey(titleID)).Result()
	if err != nil {
		return nil, false, 0, err
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		return nil, false, 0, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, false, gen, nil
	}
	rating, hit, err := decode(raw)
	return rating, hit, gen, err
}

// Set stores rating if no Invalidate ran since the Get that returned gen. It reports
// whether the value was written; a skipped write is not an error.
func (c *RatingCache) Set(ctx context.Context, titleID int64, rating *float64, gen int64) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	stored := false
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, genKey(titleID)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		current, err := parseGen(raw)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(titleID), encode(rating), c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey(titleID))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate drops the cached rating and bumps its generation; called on every review
// write for the title.
func (c *RatingCache) Invalidate(ctx context.Context, titleID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(titleID))
		pipe.Del(ctx, key(titleID))
		return nil
	})
	return err
}

func (c *RatingCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func encode(rating *float64) string {
	if rating == nil {
		return nullRating
	}
	return strconv.FormatFloat(*rating, 'g', -1, 64)
}

func parseGen(v any) (int64, error) {
	switch raw := v.(type) {
	case nil:
		return 0, nil
	case string:
		if raw == "" {
			return 0, nil
		}
		gen, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt rating generation %q: %w", raw, err)
		}
		return gen, nil
	}
	return 0, fmt.Errorf("unexpected rating generation %T", v)
}

func decode(raw string) (*float64, bool, error) {
	if raw == nullRating {
		return nil, true, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cached rating %q: %w", raw, err)
	}
	return &v, true, nil
}
