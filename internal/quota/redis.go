package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/apperr"
)

const defaultKeyPrefix = "tennis:quota"

// Redis is a counter shared by every process pointed at the same Redis.
// Each fixed window gets its own key, which expires when the window ends.
type Redis struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRedis creates a Redis-backed counter. window must be positive.
func NewRedis(client *redis.Client, max int, window time.Duration) *Redis {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Redis{
		client: client,
		prefix: defaultKeyPrefix,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

func (r *Redis) key(start time.Time) string {
	return fmt.Sprintf("%s:%d", r.prefix, start.Unix())
}

// Take implements Counter. INCR is atomic, so concurrent takers never both
// get the last unit; an over-limit increment is given back with DECR.
func (r *Redis) Take(ctx context.Context) (Status, error) {
	start, end := windowBounds(r.now(), r.window)
	key := r.key(start)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, end)
	if _, err := pipe.Exec(ctx); err != nil {
		return Status{}, apperr.Wrap(err, apperr.KindTransport, "increment quota counter")
	}

	used := int(incr.Val())
	if used > r.max {
		if err := r.client.Decr(ctx, key).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to give back over-limit quota unit")
		}
		st := newStatus(r.max, r.max, &end)
		return st, exceeded(st)
	}

	return newStatus(used, r.max, &end), nil
}

// Status implements Counter
func (r *Redis) Status(ctx context.Context) (Status, error) {
	start, end := windowBounds(r.now(), r.window)

	key := r.key(start)
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return newStatus(0, r.max, &end), nil
	}
	if err != nil {
		return Status{}, apperr.Wrap(err, apperr.KindTransport, "read quota counter")
	}

	used, err := strconv.Atoi(val)
	if err != nil {
		err = apperr.Wrap(err, apperr.KindTransport, fmt.Sprintf("corrupt quota counter %q", val))
		return Status{}, apperr.WithHint(err, fmt.Sprintf("delete the Redis key %s; the next call starts the window at zero", key))
	}
	if used > r.max {
		used = r.max
	}
	return newStatus(used, r.max, &end), nil
}
