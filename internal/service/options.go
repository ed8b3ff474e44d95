package service

import (
	"context"
	"time"

	"github.com/sinaulab/sinau/internal/cache"
	"go.uber.org/zap"
)

// Option configures the ambient parts of a service.
type Option func(*settings)

// settings is shared by every service implementation.
type settings struct {
	observer UseCaseObserver
	cache    cache.StandingsCache
	logger   *zap.Logger
	retry    RetryPolicy
	now      func() time.Time
}

func WithObserver(o UseCaseObserver) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithStandingsCache sets the cache that ranking reads from and that awards
// invalidate.
func WithStandingsCache(c cache.StandingsCache) Option {
	return func(s *settings) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *settings) {
		s.retry = p
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		observer: NoopUseCaseObserver{},
		cache:    cache.NoopStandingsCache{},
		logger:   zap.NewNop(),
		retry:    DefaultRetryPolicy(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s *settings) clock() time.Time {
	return s.now().UTC()
}

// invalidateStandings retires the global snapshot and the snapshot of every
// listed module. It runs after commit; failures are logged and the snapshot
// then lives until its TTL.
func (s *settings) invalidateStandings(ctx context.Context, moduleIDs ...string) {
	scopes := make([]cache.Scope, 0, 1+len(moduleIDs))
	scopes = append(scopes, cache.GlobalScope)
	for _, id := range moduleIDs {
		if id != "" {
			scopes = append(scopes, cache.ModuleScope(id))
		}
	}
	if err := s.cache.Invalidate(ctx, scopes...); err != nil {
		names := make([]string, len(scopes))
		for i, sc := range scopes {
			names[i] = sc.String()
		}
		s.logger.Warn("standings cache invalidation failed",
			zap.Strings("scopes", names), zap.Error(err))
	}
}
