package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
)

type ledgerService struct {
	settings
	uow      db.UnitOfWork
	progress repository.ProgressRepo
}

func NewLedgerService(uow db.UnitOfWork, progress repository.ProgressRepo, opts ...Option) LedgerService {
	return &ledgerService{settings: newSettings(opts), uow: uow, progress: progress}
}

func (s *ledgerService) MarkCompleted(ctx context.Context, userID string, kind domain.UnitKind, unitID string, overridePoints *int) (c *domain.Completion, err error) {
	fields := map[string]any{"user_id": userID, "unit_kind": string(kind), "unit_id": unitID}
	done := observe(ctx, s.observer, "mark_completed", fields)
	defer func() { done(err) }()

	if err := requireIDs("user id", userID, "unit id", unitID); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unit kind %q: %w", kind, domain.ErrValidation)
	}
	if overridePoints != nil && *overridePoints < 0 {
		return nil, fmt.Errorf("points %d must not be negative: %w", *overridePoints, domain.ErrValidation)
	}

	var unit domain.CompletableUnit
	err = s.runInTx(ctx, s.uow, "mark_completed", func(ctx context.Context, tx db.DBTX) error {
		var err error
		unit, err = ResolveUnit(ctx, repository.NewSQLContentRepo(tx), kind, unitID)
		if err != nil {
			return err
		}
		c, err = award(ctx, tx, userID, unit, domain.ResolvePoints(unit, overridePoints), s.clock())
		return err
	})
	if err != nil {
		return nil, err
	}

	fields["already_completed"] = c.AlreadyCompleted
	fields["points"] = c.AwardedPoints()
	if !c.AlreadyCompleted {
		s.invalidateStandings(ctx, unit.ModuleID)
	}
	return c, nil
}

func (s *ledgerService) IsCompletedBy(ctx context.Context, userID string, kind domain.UnitKind, unitID string) (bool, error) {
	rec, err := s.progress.Get(ctx, userID, kind, unitID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.IsCompleted, nil
}

func (s *ledgerService) GetCompletedUnits(ctx context.Context, userID, moduleID string) ([]domain.UnitRef, error) {
	records, err := s.progress.ListCompletedByModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.UnitRef, 0, len(records))
	for _, r := range records {
		refs = append(refs, domain.UnitRef{Kind: r.UnitKind, ID: r.UnitID})
	}
	return refs, nil
}
