package cache

import (
	"aviators/pkg/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "aviators:post:"

const purgeBatch = 100

// Redis implements PostCache on top of Redis. Entries are stored as JSON with
// a TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis post cache. An empty prefix uses DefaultPrefix.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(slug string) string {
	return r.prefix + slug
}

func (r *Redis) Post(ctx context.Context, slug string) (*domain.Post, error) {
	b, err := r.client.Get(ctx, r.key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil //nolint: nilnil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read cached post %s: %w", slug, err)
	}

	var p domain.Post
	if err := json.Unmarshal(b, &p); err != nil {
		// a stale layout is just a miss
		_ = r.client.Del(ctx, r.key(slug)).Err()

		return nil, nil //nolint: nilnil
	}

	return &p, nil
}

func (r *Redis) SetPost(ctx context.Context, p *domain.Post) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("could not marshal post: %w", err)
	}
	if err := r.client.Set(ctx, r.key(p.Slug), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("could not cache post %s: %w", p.Slug, err)
	}

	return nil
}

func (r *Redis) Invalidate(ctx context.Context, slugs ...string) error {
	if len(slugs) == 0 {
		return nil
	}

	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = r.key(s)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("could not invalidate cached posts: %w", err)
	}

	return nil
}

func (r *Redis) Purge(ctx context.Context) (int64, error) {
	var (
		removed int64
		cursor  uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", purgeBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("could not scan cached posts: %w", err)
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("could not purge cached posts: %w", err)
			}
			removed += n
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Name implements monitor.Checker.
func (r *Redis) Name() string { return "redis" }

// Check implements monitor.Checker.
func (r *Redis) Check(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not ping redis: %w", err)
	}

	return nil
}
