package service

import (
	"context"

	"github.com/sinaulab/sinau/internal/cache"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
	"go.uber.org/zap"
)

type rankingService struct {
	settings
	users     repository.UserRepo
	content   repository.ContentRepo
	standings repository.StandingsRepo
}

func NewRankingService(users repository.UserRepo, content repository.ContentRepo, standings repository.StandingsRepo, opts ...Option) RankingService {
	return &rankingService{
		settings:  newSettings(opts),
		users:     users,
		content:   content,
		standings: standings,
	}
}

func (s *rankingService) GetRank(ctx context.Context, userID, moduleID string) (st *domain.Standing, err error) {
	done := observe(ctx, s.observer, "get_rank", map[string]any{"user_id": userID, "module_id": moduleID})
	defer func() { done(err) }()

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	ranked, err := s.ranked(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	return domain.FindStanding(ranked, userID), nil
}

// Leaderboard returns the top limit standings; limit <= 0 means all.
func (s *rankingService) Leaderboard(ctx context.Context, moduleID string, limit int) ([]domain.Standing, error) {
	ranked, err := s.ranked(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ranked serves a scope from the cache, falling back to the database. Cache
// failures degrade to a database read. An empty moduleID is the global scope.
func (s *rankingService) ranked(ctx context.Context, moduleID string) ([]domain.Standing, error) {
	scope := cache.GlobalScope
	if moduleID != "" {
		if _, err := s.content.GetModule(ctx, moduleID); err != nil {
			return nil, err
		}
		scope = cache.ModuleScope(moduleID)
	}

	cached, gen, ok, cacheErr := s.cache.Get(ctx, scope)
	if cacheErr != nil {
		s.logger.Warn("standings cache read failed", zap.Stringer("scope", scope), zap.Error(cacheErr))
	} else if ok {
		return cached, nil
	}

	var raw []domain.Standing
	var err error
	if scope.IsGlobal() {
		raw, err = s.standings.GlobalStandings(ctx)
	} else {
		raw, err = s.standings.ModuleStandings(ctx, moduleID)
	}
	if err != nil {
		return nil, err
	}
	ranked := domain.RankStandings(raw)

	// gen was read before the database, so a write that commits in between
	// has already advanced it and the cache drops this snapshot.
	if cacheErr == nil {
		if err := s.cache.Set(ctx, scope, gen, ranked); err != nil {
			s.logger.Warn("standings cache write failed", zap.Stringer("scope", scope), zap.Error(err))
		}
	}
	return ranked, nil
}
