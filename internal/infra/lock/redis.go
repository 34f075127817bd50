package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisOptions struct {
	Prefix        string
	TTL           time.Duration
	RetryInterval time.Duration
}

// Redis is a lock shared by every process talking to the same Redis. The
// TTL bounds how long a crashed holder keeps the key.
type Redis struct {
	client redis.Cmdable
	opts   RedisOptions
	log    *zap.Logger
}

func NewRedis(client redis.Cmdable, opts RedisOptions, log *zap.Logger) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{client: client, opts: opts, log: log}
}

func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	name := r.opts.Prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.opts.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, name, token, r.opts.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, name, ctx.Err())
			}
			return nil, fmt.Errorf("acquiring %s: %w", name, err)
		}
		if ok {
			return r.releaser(name, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Redis) releaser(name, token string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be done; release regardless.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if err := releaseScript.Run(ctx, r.client, []string{name}, token).Err(); err != nil {
				r.log.Warn("failed to release lock",
					zap.String("key", name),
					zap.Error(err),
				)
			}
		})
	}
}

var _ Locker = (*Redis)(nil)
