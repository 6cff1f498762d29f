// Package inmemory provides an in-process implementation of kvstore.Store.
//
// It reproduces the Redis semantics the memory layer relies on (LRANGE
// indexing, ZREVRANGE ordering, whole-key expiration) so that local
// development and tests behave the same as production. Expiration is
// evaluated lazily against an injectable clock.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mindneox/recall/pkg/kvstore"
)

var errWrongType = errors.New("operation against a key holding the wrong kind of value")

type entry struct {
	list      []string
	zset      map[string]float64
	expiresAt time.Time
}

// Driver implements kvstore.Store using in-process data structures.
type Driver struct {
	mu     sync.Mutex
	now    func() time.Time
	keys   map[string]*entry
	closed bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock overrides the time source used for expiration.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		d.now = now
	}
}

// NewDriver creates an empty in-memory store.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		now:  time.Now,
		keys: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// PushCapped prepends value to the list at key, trims it and refreshes the TTL.
func (d *Driver) PushCapped(_ context.Context, key, value string, maxLen int64, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return unavailable("push", key)
	}

	e, err := d.lookup(key, true)
	if err != nil {
		return fmt.Errorf("push %q: %w", key, err)
	}
	if e.zset != nil {
		return fmt.Errorf("push %q: %w", key, errWrongType)
	}

	e.list = append([]string{value}, e.list...)
	if maxLen > 0 && int64(len(e.list)) > maxLen {
		e.list = e.list[:maxLen]
	}
	d.expire(e, ttl)

	return nil
}

// Range returns list entries between start and stop inclusive.
func (d *Driver) Range(_ context.Context, key string, start, stop int64) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, unavailable("range", key)
	}

	e, err := d.lookup(key, false)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", key, err)
	}
	if e == nil {
		return []string{}, nil
	}
	if e.zset != nil {
		return nil, fmt.Errorf("range %q: %w", key, errWrongType)
	}

	n := int64(len(e.list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return []string{}, nil
	}

	out := make([]string, stop-start+1)
	copy(out, e.list[start:stop+1])
	return out, nil
}

// IncrMembers increments each member occurrence by one and refreshes the TTL.
func (d *Driver) IncrMembers(_ context.Context, key string, members []string, ttl time.Duration) error {
	if len(members) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return unavailable("incr", key)
	}

	e, err := d.lookup(key, true)
	if err != nil {
		return fmt.Errorf("incr %q: %w", key, err)
	}
	if e.list != nil {
		return fmt.Errorf("incr %q: %w", key, errWrongType)
	}
	if e.zset == nil {
		e.zset = make(map[string]float64)
	}

	for _, m := range members {
		e.zset[m]++
	}
	d.expire(e, ttl)

	return nil
}

// TopMembers returns the highest scored members, ties broken by descending
// member order as Redis ZREVRANGE does.
func (d *Driver) TopMembers(_ context.Context, key string, limit int64) ([]kvstore.ScoredMember, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, unavailable("top", key)
	}

	e, err := d.lookup(key, false)
	if err != nil {
		return nil, fmt.Errorf("top %q: %w", key, err)
	}
	if e == nil || limit <= 0 {
		return []kvstore.ScoredMember{}, nil
	}
	if e.list != nil {
		return nil, fmt.Errorf("top %q: %w", key, errWrongType)
	}

	members := make([]kvstore.ScoredMember, 0, len(e.zset))
	for m, s := range e.zset {
		members = append(members, kvstore.ScoredMember{Member: m, Score: s})
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].Member > members[j].Member
	})

	if int64(len(members)) > limit {
		members = members[:limit]
	}

	return members, nil
}

// Delete removes the given keys.
func (d *Driver) Delete(_ context.Context, keys ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return unavailable("delete", "")
	}

	for _, k := range keys {
		delete(d.keys, k)
	}
	return nil
}

// Ping reports whether the driver is still open.
func (d *Driver) Ping(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return unavailable("ping", "")
	}
	return nil
}

// TTL returns the remaining time to live of key, or zero when the key does
// not exist or has no expiration.
func (d *Driver) TTL(key string) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(key, false)
	if err != nil || e == nil || e.expiresAt.IsZero() {
		return 0
	}
	return e.expiresAt.Sub(d.now())
}

// Close marks the driver closed. Subsequent calls fail with
// kvstore.ErrUnavailable, which makes it a convenient stand-in for an
// unreachable server.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	return nil
}

// lookup returns the live entry for key, evicting it first if it expired.
// When create is true a missing key is created.
func (d *Driver) lookup(key string, create bool) (*entry, error) {
	e, ok := d.keys[key]
	if ok && !e.expiresAt.IsZero() && !d.now().Before(e.expiresAt) {
		delete(d.keys, key)
		ok = false
	}

	if !ok {
		if !create {
			return nil, nil
		}
		e = &entry{}
		d.keys[key] = e
	}

	return e, nil
}

func (d *Driver) expire(e *entry, ttl time.Duration) {
	if ttl > 0 {
		e.expiresAt = d.now().Add(ttl)
	}
}

func unavailable(op, key string) error {
	return fmt.Errorf("%w: inmemory %s %q: driver closed", kvstore.ErrUnavailable, op, key)
}
