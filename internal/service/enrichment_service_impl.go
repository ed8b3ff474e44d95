package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
)

type enrichmentService struct {
	settings
	uow      db.UnitOfWork
	content  repository.ContentRepo
	progress repository.EnrichmentProgressRepo
}

func NewEnrichmentService(uow db.UnitOfWork, content repository.ContentRepo, progress repository.EnrichmentProgressRepo, opts ...Option) EnrichmentService {
	return &enrichmentService{
		settings: newSettings(opts),
		uow:      uow,
		content:  content,
		progress: progress,
	}
}

// MarkVideoWatched adds the video to the watched set. When the set covers
// every video of the enrichment the enrichment is awarded in the same
// transaction. The progress row is locked before the watched set is read,
// so concurrent watches by one user see each other's videos.
func (s *enrichmentService) MarkVideoWatched(ctx context.Context, userID, enrichmentID, videoID string) (res *EnrichmentResult, err error) {
	fields := map[string]any{"user_id": userID, "enrichment_id": enrichmentID, "video_id": videoID}
	done := observe(ctx, s.observer, "watch_video", fields)
	defer func() { done(err) }()

	if err := requireIDs("user id", userID, "enrichment id", enrichmentID, "video id", videoID); err != nil {
		return nil, err
	}

	var moduleID string
	err = s.runInTx(ctx, s.uow, "watch_video", func(ctx context.Context, tx db.DBTX) error {
		content := repository.NewSQLContentRepo(tx)
		progress := repository.NewSQLEnrichmentProgressRepo(tx)
		now := s.clock()

		e, err := content.GetEnrichment(ctx, enrichmentID)
		if err != nil {
			return err
		}
		moduleID = e.ModuleID
		videos, err := content.ListEnrichmentVideos(ctx, enrichmentID)
		if err != nil {
			return err
		}
		videoIDs := make([]string, 0, len(videos))
		for _, v := range videos {
			videoIDs = append(videoIDs, v.ID)
		}
		if !contains(videoIDs, videoID) {
			return fmt.Errorf("video %s in enrichment %s: %w", videoID, enrichmentID, domain.ErrNotFound)
		}
		if _, err := repository.NewSQLUserRepo(tx).GetByID(ctx, userID); err != nil {
			return err
		}

		if _, err := progress.GetOrCreate(ctx, domain.NewEnrichmentProgress(uuid.New().String(), userID, e, now)); err != nil {
			return err
		}
		if err := progress.Lock(ctx, userID, enrichmentID); err != nil {
			return err
		}
		if _, err := progress.AddWatch(ctx, userID, enrichmentID, videoID, now); err != nil {
			return err
		}
		p, err := progress.Get(ctx, userID, enrichmentID)
		if err != nil {
			return err
		}

		res = &EnrichmentResult{Progress: p, TotalVideos: len(videoIDs)}
		if p.Completed || !p.CoversAll(videoIDs) {
			return nil
		}
		unit := domain.CompletableUnit{Kind: domain.KindEnrichment, ID: e.ID, ModuleID: e.ModuleID, RewardPoints: e.PointReward}
		completion, err := award(ctx, tx, userID, unit, e.PointReward, now)
		if err != nil {
			return err
		}
		if res.Progress, err = progress.Get(ctx, userID, enrichmentID); err != nil {
			return err
		}
		res.Completion = completion
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["watched"] = res.Progress.WatchedCount()
	fields["total_videos"] = res.TotalVideos
	if res.Completion != nil && !res.Completion.AlreadyCompleted {
		fields["points"] = res.Completion.AwardedPoints()
		s.invalidateStandings(ctx, moduleID)
	}
	return res, nil
}

// MarkEnrichmentCompleted is the direct path, used for link enrichments. It
// shares the ledger row with the video path, so the reward is paid once
// whichever path gets there first.
func (s *enrichmentService) MarkEnrichmentCompleted(ctx context.Context, userID, enrichmentID string) (res *EnrichmentResult, err error) {
	fields := map[string]any{"user_id": userID, "enrichment_id": enrichmentID}
	done := observe(ctx, s.observer, "complete_enrichment", fields)
	defer func() { done(err) }()

	if err := requireIDs("user id", userID, "enrichment id", enrichmentID); err != nil {
		return nil, err
	}

	var moduleID string
	err = s.runInTx(ctx, s.uow, "complete_enrichment", func(ctx context.Context, tx db.DBTX) error {
		content := repository.NewSQLContentRepo(tx)
		progress := repository.NewSQLEnrichmentProgressRepo(tx)
		now := s.clock()

		e, err := content.GetEnrichment(ctx, enrichmentID)
		if err != nil {
			return err
		}
		moduleID = e.ModuleID
		videos, err := content.ListEnrichmentVideos(ctx, enrichmentID)
		if err != nil {
			return err
		}

		unit := domain.CompletableUnit{Kind: domain.KindEnrichment, ID: e.ID, ModuleID: e.ModuleID, RewardPoints: e.PointReward}
		completion, err := award(ctx, tx, userID, unit, e.PointReward, now)
		if err != nil {
			return err
		}
		p, err := progress.Get(ctx, userID, enrichmentID)
		if err != nil {
			return err
		}
		res = &EnrichmentResult{Progress: p, TotalVideos: len(videos), Completion: completion}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["already_completed"] = res.Completion.AlreadyCompleted
	if !res.Completion.AlreadyCompleted {
		fields["points"] = res.Completion.AwardedPoints()
		s.invalidateStandings(ctx, moduleID)
	}
	return res, nil
}

// GetProgress never writes; a user who has not started gets an empty,
// unsaved progress value.
func (s *enrichmentService) GetProgress(ctx context.Context, userID, enrichmentID string) (*EnrichmentResult, error) {
	e, err := s.content.GetEnrichment(ctx, enrichmentID)
	if err != nil {
		return nil, err
	}
	videos, err := s.content.ListEnrichmentVideos(ctx, enrichmentID)
	if err != nil {
		return nil, err
	}
	p, err := s.progress.Get(ctx, userID, enrichmentID)
	if errors.Is(err, domain.ErrNotFound) {
		p = domain.NewEnrichmentProgress("", userID, e, s.clock())
	} else if err != nil {
		return nil, err
	}
	return &EnrichmentResult{Progress: p, TotalVideos: len(videos)}, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
