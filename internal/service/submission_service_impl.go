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

// errAlreadySubmitted rolls back a submit that lost to an earlier one.
var errAlreadySubmitted = fmt.Errorf("assignment already submitted: %w", domain.ErrDuplicate)

type submissionService struct {
	settings
	uow         db.UnitOfWork
	submissions repository.SubmissionRepo
	content     repository.ContentRepo
}

func NewSubmissionService(uow db.UnitOfWork, submissions repository.SubmissionRepo, content repository.ContentRepo, opts ...Option) SubmissionService {
	return &submissionService{
		settings:    newSettings(opts),
		uow:         uow,
		submissions: submissions,
		content:     content,
	}
}

// Submit stores the submission and awards the tier points in one
// transaction. A second submit returns the first one, flagged.
func (s *submissionService) Submit(ctx context.Context, req SubmitRequest) (out *domain.SubmissionOutcome, err error) {
	fields := map[string]any{"user_id": req.UserID, "assignment_id": req.AssignmentID}
	done := observe(ctx, s.observer, "submit_assignment", fields)
	defer func() { done(err) }()

	if err := requireIDs("user id", req.UserID, "assignment id", req.AssignmentID); err != nil {
		return nil, err
	}
	submittedAt := req.SubmittedAt.UTC()
	if req.SubmittedAt.IsZero() {
		submittedAt = s.clock()
	}

	err = s.runInTx(ctx, s.uow, "submit_assignment", func(ctx context.Context, tx db.DBTX) error {
		content := repository.NewSQLContentRepo(tx)
		subs := repository.NewSQLSubmissionRepo(tx)

		a, err := content.GetAssignment(ctx, req.AssignmentID)
		if err != nil {
			return err
		}
		if _, err := subs.GetByUserAssignment(ctx, req.UserID, req.AssignmentID); err == nil {
			return errAlreadySubmitted
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		score := domain.ScoreSubmission(a, submittedAt)
		unit := domain.CompletableUnit{Kind: domain.KindAssignment, ID: a.ID, ModuleID: a.ModuleID}
		completion, err := award(ctx, tx, req.UserID, unit, score.Points, s.clock())
		if err != nil {
			return err
		}

		sub := &domain.AssignmentSubmission{
			ID:           uuid.New().String(),
			UserID:       req.UserID,
			AssignmentID: a.ID,
			ModuleID:     a.ModuleID,
			SubmittedAt:  submittedAt,
			Status:       score.Tier,
			PointsEarned: completion.AwardedPoints(),
			Attachment:   req.Attachment,
			CreatedAt:    s.clock(),
		}
		inserted, err := subs.Create(ctx, sub)
		if err != nil {
			return err
		}
		if !inserted {
			return errAlreadySubmitted
		}
		out = &domain.SubmissionOutcome{Submission: sub, Completion: completion}
		return nil
	})
	if errors.Is(err, errAlreadySubmitted) {
		existing, getErr := s.submissions.GetByUserAssignment(ctx, req.UserID, req.AssignmentID)
		if getErr != nil {
			return nil, getErr
		}
		fields["already_submitted"] = true
		return &domain.SubmissionOutcome{Submission: existing, AlreadySubmitted: true}, nil
	}
	if err != nil {
		return nil, err
	}

	fields["tier"] = string(out.Submission.Status)
	fields["points"] = out.Submission.PointsEarned
	if !out.Completion.AlreadyCompleted {
		s.invalidateStandings(ctx, out.Submission.ModuleID)
	}
	return out, nil
}

func (s *submissionService) Grade(ctx context.Context, submissionID string, score int, feedback string) (sub *domain.AssignmentSubmission, err error) {
	done := observe(ctx, s.observer, "grade_submission", map[string]any{"submission_id": submissionID, "score": score})
	defer func() { done(err) }()

	if err := requireIDs("submission id", submissionID); err != nil {
		return nil, err
	}
	err = s.runInTx(ctx, s.uow, "grade_submission", func(ctx context.Context, tx db.DBTX) error {
		subs := repository.NewSQLSubmissionRepo(tx)
		var err error
		sub, err = subs.GetByID(ctx, submissionID)
		if err != nil {
			return err
		}
		if err := sub.Grade(score, feedback, s.clock()); err != nil {
			return err
		}
		return subs.UpdateGrade(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *submissionService) Get(ctx context.Context, userID, assignmentID string) (*domain.AssignmentSubmission, error) {
	return s.submissions.GetByUserAssignment(ctx, userID, assignmentID)
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.AssignmentSubmission, error) {
	if _, err := s.content.GetAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	return s.submissions.ListByAssignment(ctx, assignmentID)
}
