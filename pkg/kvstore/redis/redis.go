// Package redis implements kvstore.Store on top of a Redis server.
//
// Every mutating call is sent as a single MULTI/EXEC transaction against one
// key, so a push is never observed without its trim and expiration.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mindneox/recall/pkg/kvstore"
)

const (
	// DefaultAddr is the default Redis address.
	DefaultAddr = "localhost:6379"

	// DefaultTimeout bounds dialing and each read/write on the connection.
	DefaultTimeout = 2 * time.Second
)

// Config holds connection settings for the Redis driver.
type Config struct {
	// Addr is the host:port of the Redis server. Defaults to DefaultAddr.
	Addr string

	// Password is the optional AUTH password.
	Password string

	// DB selects the logical database.
	DB int

	// Timeout bounds dial, read and write operations. Defaults to DefaultTimeout.
	// A shorter deadline on the call's context takes precedence.
	Timeout time.Duration
}

// Driver implements kvstore.Store using go-redis.
type Driver struct {
	client *goredis.Client
}

// NewDriver creates a Redis-backed store. The connection is established
// lazily, so an unreachable server does not fail construction; callers that
// want to surface it early should call Ping.
func NewDriver(cfg Config) *Driver {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		MaxRetries:   1,

		// Context deadlines bound each call, so a caller's operation
		// timeout wins over the longer socket timeouts above.
		ContextTimeoutEnabled: true,
	})

	return &Driver{client: client}
}

// PushCapped runs LPUSH, LTRIM and EXPIRE for key in one transaction.
func (d *Driver) PushCapped(ctx context.Context, key, value string, maxLen int64, ttl time.Duration) error {
	_, err := d.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, key, value)
		if maxLen > 0 {
			pipe.LTrim(ctx, key, 0, maxLen-1)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	return wrap("push", key, err)
}

// Range returns LRANGE key start stop.
func (d *Driver) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := d.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrap("range", key, err)
	}
	return values, nil
}

// IncrMembers runs one ZINCRBY per member occurrence followed by EXPIRE, in
// one transaction.
func (d *Driver) IncrMembers(ctx context.Context, key string, members []string, ttl time.Duration) error {
	if len(members) == 0 {
		return nil
	}

	_, err := d.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, m := range members {
			pipe.ZIncrBy(ctx, key, 1, m)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	return wrap("incr", key, err)
}

// TopMembers returns ZREVRANGE key 0 limit-1 WITHSCORES.
func (d *Driver) TopMembers(ctx context.Context, key string, limit int64) ([]kvstore.ScoredMember, error) {
	if limit <= 0 {
		return []kvstore.ScoredMember{}, nil
	}

	zs, err := d.client.ZRevRangeWithScores(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, wrap("top", key, err)
	}

	members := make([]kvstore.ScoredMember, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			member = fmt.Sprint(z.Member)
		}
		members = append(members, kvstore.ScoredMember{Member: member, Score: z.Score})
	}

	return members, nil
}

// Delete runs DEL for the given keys.
func (d *Driver) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return wrap("delete", keys[0], d.client.Del(ctx, keys...).Err())
}

// Ping checks connectivity to the server.
func (d *Driver) Ping(ctx context.Context) error {
	return wrap("ping", "", d.client.Ping(ctx).Err())
}

// Close closes the underlying connection pool.
func (d *Driver) Close() error {
	return d.client.Close()
}

// wrap annotates err with the operation and key. Errors replied by the server
// itself (e.g. WRONGTYPE) are passed through; everything else is a transport
// problem and is marked kvstore.ErrUnavailable.
func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}

	var replyErr goredis.Error
	if errors.As(err, &replyErr) {
		return fmt.Errorf("redis %s %q: %w", op, key, err)
	}

	return fmt.Errorf("%w: redis %s %q: %v", kvstore.ErrUnavailable, op, key, err)
}
