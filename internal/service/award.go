package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
)

// award is the single place points enter the system. It must run inside the
// caller's transaction so the ledger row and the balance move together. An
// enrichment award also marks the enrichment's progress row completed.
func award(ctx context.Context, tx db.DBTX, userID string, unit domain.CompletableUnit, points int, now time.Time) (*domain.Completion, error) {
	users := repository.NewSQLUserRepo(tx)
	progress := repository.NewSQLProgressRepo(tx)

	if _, err := users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	rec := domain.NewCompletedRecord(uuid.New().String(), userID, unit, points, now)
	claimed, err := progress.Claim(ctx, rec)
	if err != nil {
		return nil, err
	}
	if unit.Kind == domain.KindEnrichment {
		if err := completeEnrichmentProgress(ctx, tx, userID, unit, now); err != nil {
			return nil, err
		}
	}
	if !claimed {
		existing, err := progress.Get(ctx, userID, unit.Kind, unit.ID)
		if err != nil {
			return nil, err
		}
		return &domain.Completion{Record: existing, AlreadyCompleted: true}, nil
	}

	if rec.PointsEarned > 0 {
		if err := users.IncrementPoints(ctx, userID, rec.PointsEarned); err != nil {
			return nil, err
		}
	}

	// A stale incomplete row keeps its original id; read back what is stored.
	stored, err := progress.Get(ctx, userID, unit.Kind, unit.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Completion{Record: stored}, nil
}

func completeEnrichmentProgress(ctx context.Context, tx db.DBTX, userID string, unit domain.CompletableUnit, now time.Time) error {
	repo := repository.NewSQLEnrichmentProgressRepo(tx)
	e := &domain.Enrichment{ID: unit.ID, ModuleID: unit.ModuleID}
	p, err := repo.GetOrCreate(ctx, domain.NewEnrichmentProgress(uuid.New().String(), userID, e, now))
	if err != nil {
		return err
	}
	if !p.MarkCompleted(now) {
		return nil
	}
	return repo.MarkCompleted(ctx, p)
}

func requireIDs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%s is required: %w", pairs[i], domain.ErrValidation)
		}
	}
	return nil
}
