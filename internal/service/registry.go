package service

import (
	"context"
	"fmt"

	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
)

// ResolveUnit looks up (kind, id) and returns it as a CompletableUnit. An
// assignment resolves with zero reward; its points depend on the submission
// tier and are always passed as an override.
func ResolveUnit(ctx context.Context, content repository.ContentRepo, kind domain.UnitKind, id string) (domain.CompletableUnit, error) {
	switch kind {
	case domain.KindMaterial:
		m, err := content.GetMaterial(ctx, id)
		if err != nil {
			return domain.CompletableUnit{}, err
		}
		return domain.CompletableUnit{Kind: kind, ID: m.ID, ModuleID: m.ModuleID, RewardPoints: m.PointReward}, nil
	case domain.KindEnrichment:
		e, err := content.GetEnrichment(ctx, id)
		if err != nil {
			return domain.CompletableUnit{}, err
		}
		return domain.CompletableUnit{Kind: kind, ID: e.ID, ModuleID: e.ModuleID, RewardPoints: e.PointReward}, nil
	case domain.KindCpmk:
		c, err := content.GetCpmk(ctx, id)
		if err != nil {
			return domain.CompletableUnit{}, err
		}
		return domain.CompletableUnit{Kind: kind, ID: c.ID, ModuleID: c.ModuleID, RewardPoints: c.PointReward}, nil
	case domain.KindLearningObjective:
		o, err := content.GetLearningObjective(ctx, id)
		if err != nil {
			return domain.CompletableUnit{}, err
		}
		return domain.CompletableUnit{Kind: kind, ID: o.ID, ModuleID: o.ModuleID, RewardPoints: o.PointReward}, nil
	case domain.KindQuiz:
		q, err := content.GetQuiz(ctx, id)
		if err != nil {
			return domain.CompletableUnit{}, err
		}
		return domain.CompletableUnit{Kind: kind, ID: q.ID, ModuleID: q.ModuleID, RewardPoints: q.PointReward}, nil
	case domain.KindAssignment:
		a, err := content.GetAssignment(ctx, id)
		if err != nil {
			return domain.CompletableUnit{}, err
		}
		return domain.CompletableUnit{Kind: kind, ID: a.ID, ModuleID: a.ModuleID}, nil
	}
	return domain.CompletableUnit{}, fmt.Errorf("unit kind %q: %w", kind, domain.ErrValidation)
}
