package service

import (
	"context"

	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
)

type progressService struct {
	settings
	users       repository.UserRepo
	content     repository.ContentRepo
	progress    repository.ProgressRepo
	submissions repository.SubmissionRepo
	attempts    repository.QuizAttemptRepo
}

func NewProgressService(
	users repository.UserRepo,
	content repository.ContentRepo,
	progress repository.ProgressRepo,
	submissions repository.SubmissionRepo,
	attempts repository.QuizAttemptRepo,
	opts ...Option,
) ProgressService {
	return &progressService{
		settings:    newSettings(opts),
		users:       users,
		content:     content,
		progress:    progress,
		submissions: submissions,
		attempts:    attempts,
	}
}

// GetModuleProgress counts a quiz as done once attempted and an assignment
// once submitted; every other kind counts its completed ledger rows.
func (s *progressService) GetModuleProgress(ctx context.Context, userID, moduleID string) (p *domain.ModuleProgress, err error) {
	done := observe(ctx, s.observer, "module_progress", map[string]any{"user_id": userID, "module_id": moduleID})
	defer func() { done(err) }()

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.content.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}

	totals, err := s.content.CountUnitsByKind(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	completed, err := s.progress.CountCompletedByKind(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.attempts.CountAttemptedQuizzes(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.submissions.CountSubmittedAssignments(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	byKind := make(map[domain.UnitKind]domain.KindProgress, len(domain.AllUnitKinds))
	for _, kind := range domain.AllUnitKinds {
		var n int
		switch kind {
		case domain.KindQuiz:
			n = quizzes
		case domain.KindAssignment:
			n = assignments
		case domain.KindMaterial, domain.KindEnrichment, domain.KindCpmk, domain.KindLearningObjective:
			n = completed[kind]
		}
		byKind[kind] = domain.KindProgress{Completed: n, Total: totals[kind]}
	}
	return domain.ComputeModuleProgress(userID, moduleID, byKind), nil
}
