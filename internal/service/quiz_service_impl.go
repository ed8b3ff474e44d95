package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
)

type quizService struct {
	settings
	uow      db.UnitOfWork
	attempts repository.QuizAttemptRepo
}

func NewQuizService(uow db.UnitOfWork, attempts repository.QuizAttemptRepo, opts ...Option) QuizService {
	return &quizService{settings: newSettings(opts), uow: uow, attempts: attempts}
}

// RecordAttempt stores an attempt. The first attempt completes the quiz and
// carries its reward; later attempts are kept with zero points.
func (s *quizService) RecordAttempt(ctx context.Context, userID, quizID string, score int) (res *QuizAttemptResult, err error) {
	fields := map[string]any{"user_id": userID, "quiz_id": quizID, "score": score}
	done := observe(ctx, s.observer, "record_quiz_attempt", fields)
	defer func() { done(err) }()

	if err := requireIDs("user id", userID, "quiz id", quizID); err != nil {
		return nil, err
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("score %d outside 0..100: %w", score, domain.ErrValidation)
	}

	err = s.runInTx(ctx, s.uow, "record_quiz_attempt", func(ctx context.Context, tx db.DBTX) error {
		attempts := repository.NewSQLQuizAttemptRepo(tx)
		now := s.clock()

		q, err := repository.NewSQLContentRepo(tx).GetQuiz(ctx, quizID)
		if err != nil {
			return err
		}
		unit := domain.CompletableUnit{Kind: domain.KindQuiz, ID: q.ID, ModuleID: q.ModuleID, RewardPoints: q.PointReward}
		completion, err := award(ctx, tx, userID, unit, q.PointReward, now)
		if err != nil {
			return err
		}
		previous, err := attempts.ListByUserQuiz(ctx, userID, quizID)
		if err != nil {
			return err
		}

		a := &domain.QuizAttempt{
			ID:           uuid.New().String(),
			UserID:       userID,
			QuizID:       q.ID,
			ModuleID:     q.ModuleID,
			Score:        score,
			PointsEarned: completion.AwardedPoints(),
			AttemptedAt:  now,
		}
		if err := attempts.Create(ctx, a); err != nil {
			return err
		}
		res = &QuizAttemptResult{Attempt: a, Completion: completion, AttemptNo: len(previous) + 1}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["attempt_no"] = res.AttemptNo
	fields["points"] = res.Attempt.PointsEarned
	if !res.Completion.AlreadyCompleted {
		s.invalidateStandings(ctx, res.Attempt.ModuleID)
	}
	return res, nil
}

func (s *quizService) ListAttempts(ctx context.Context, userID, quizID string) ([]*domain.QuizAttempt, error) {
	return s.attempts.ListByUserQuiz(ctx, userID, quizID)
}
