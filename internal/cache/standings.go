// Package cache keeps ranked standings snapshots out of the database hot
// path. The database stays the source of truth; every cache error is
// reported to the caller, which treats it as a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sinaulab/sinau/internal/domain"
)

// Scope names one ranked population: every student (the zero value) or the
// students of one module.
type Scope struct {
	ModuleID string
}

// GlobalScope ranks every student by total points.
var GlobalScope = Scope{}

func ModuleScope(moduleID string) Scope {
	return Scope{ModuleID: moduleID}
}

func (s Scope) IsGlobal() bool {
	return s.ModuleID == ""
}

// String is "global" or "module:<id>"; a module may itself be called
// "global" without colliding.
func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "module:" + s.ModuleID
}

// StandingsCache stores ranked standings per scope. Every scope carries a
// generation that Invalidate advances; a snapshot is served only while the
// generation it was built under is still current.
type StandingsCache interface {
	// Get returns the scope's current generation even on a miss (ok=false).
	Get(ctx context.Context, scope Scope) (standings []domain.Standing, gen int64, ok bool, err error)
	// Set stores standings read from the database after gen was observed.
	Set(ctx context.Context, scope Scope, gen int64, standings []domain.Standing) error
	Invalidate(ctx context.Context, scopes ...Scope) error
}

// NoopStandingsCache never hits.
type NoopStandingsCache struct{}

func (NoopStandingsCache) Get(context.Context, Scope) ([]domain.Standing, int64, bool, error) {
	return nil, 0, false, nil
}

func (NoopStandingsCache) Set(context.Context, Scope, int64, []domain.Standing) error { return nil }

func (NoopStandingsCache) Invalidate(context.Context, ...Scope) error { return nil }

const (
	snapshotPrefix   = "sinau:standings:"
	generationPrefix = "sinau:standings-gen:"
)

// SnapshotKey is the redis key holding the snapshot of scope.
func SnapshotKey(scope Scope) string {
	return snapshotPrefix + scope.String()
}

// GenerationKey is the redis counter Invalidate increments for scope.
func GenerationKey(scope Scope) string {
	return generationPrefix + scope.String()
}

// RedisStandingsCache stores each scope as one JSON snapshot with a TTL next
// to a counter without expiry.
type RedisStandingsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStandingsCache(client redis.Cmdable, ttl time.Duration) *RedisStandingsCache {
	return &RedisStandingsCache{client: client, ttl: ttl}
}

// snapshot is the stored form; Version lets a reader drop entries written by
// an incompatible build.
type snapshot struct {
	Version    int               `json:"version"`
	Generation int64             `json:"generation"`
	CachedAt   time.Time         `json:"cached_at"`
	Standings  []domain.Standing `json:"standings"`
}

const snapshotVersion = 2

func (c *RedisStandingsCache) Get(ctx context.Context, scope Scope) ([]domain.Standing, int64, bool, error) {
	vals, err := c.client.MGet(ctx, SnapshotKey(scope), GenerationKey(scope)).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("reading standings cache: %w", err)
	}
	if len(vals) != 2 {
		return nil, 0, false, fmt.Errorf("reading standings cache: got %d values, want 2", len(vals))
	}
	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, false, fmt.Errorf("reading standings generation: %w", err)
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}
	s, ok, err := decodeSnapshot([]byte(data))
	if err != nil {
		return nil, gen, false, fmt.Errorf("decoding standings cache: %w", err)
	}
	if !ok || s.Generation != gen {
		return nil, gen, false, nil
	}
	return s.Standings, gen, true, nil
}

func (c *RedisStandingsCache) Set(ctx context.Context, scope Scope, gen int64, standings []domain.Standing) error {
	data, err := encodeSnapshot(standings, gen, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("encoding standings cache: %w", err)
	}
	if err := c.client.Set(ctx, SnapshotKey(scope), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing standings cache: %w", err)
	}
	return nil
}

// Invalidate advances each scope's generation, which retires any snapshot
// built before it, then deletes the snapshots.
func (c *RedisStandingsCache) Invalidate(ctx context.Context, scopes ...Scope) error {
	if len(scopes) == 0 {
		return nil
	}
	var errs []error
	keys := make([]string, len(scopes))
	for i, s := range scopes {
		keys[i] = SnapshotKey(s)
		if err := c.client.Incr(ctx, GenerationKey(s)).Err(); err != nil {
			errs = append(errs, fmt.Errorf("advancing %s generation: %w", s, err))
		}
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		errs = append(errs, fmt.Errorf("deleting snapshots: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalidating standings cache: %w", err)
	}
	return nil
}

func parseGeneration(v any) (int64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected value %T", v)
	}
}

func encodeSnapshot(standings []domain.Standing, gen int64, at time.Time) ([]byte, error) {
	if standings == nil {
		standings = []domain.Standing{}
	}
	return json.Marshal(snapshot{Version: snapshotVersion, Generation: gen, CachedAt: at, Standings: standings})
}

func decodeSnapshot(data []byte) (snapshot, bool, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return snapshot{}, false, err
	}
	if s.Version != snapshotVersion {
		return snapshot{}, false, nil
	}
	return s, true, nil
}

// NewRedisClient connects and pings within timeout.
func NewRedisClient(ctx context.Context, addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}
