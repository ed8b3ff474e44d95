package repository

import (
	"context"
	"time"

	"github.com/sinaulab/sinau/internal/domain"
)

// ErrNotFound is returned (wrapped) by every Get* method when no row matches.
var ErrNotFound = domain.ErrNotFound

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// IncrementPoints adds delta to the user's balance in a single UPDATE.
	IncrementPoints(ctx context.Context, userID string, delta int) error
}

// ContentRepo is the entity-lookup side of the platform: modules and the
// units they own.
type ContentRepo interface {
	CreateModule(ctx context.Context, m *domain.Module) error
	CreateMaterial(ctx context.Context, m *domain.Material) error
	CreateEnrichment(ctx context.Context, e *domain.Enrichment) error
	CreateEnrichmentVideo(ctx context.Context, v *domain.EnrichmentVideo) error
	CreateCpmk(ctx context.Context, c *domain.Cpmk) error
	CreateLearningObjective(ctx context.Context, o *domain.LearningObjective) error
	CreateQuiz(ctx context.Context, q *domain.Quiz) error
	CreateAssignment(ctx context.Context, a *domain.Assignment) error

	GetModule(ctx context.Context, id string) (*domain.Module, error)
	ListModules(ctx context.Context) ([]*domain.Module, error)
	GetMaterial(ctx context.Context, id string) (*domain.Material, error)
	GetEnrichment(ctx context.Context, id string) (*domain.Enrichment, error)
	GetCpmk(ctx context.Context, id string) (*domain.Cpmk, error)
	GetLearningObjective(ctx context.Context, id string) (*domain.LearningObjective, error)
	GetQuiz(ctx context.Context, id string) (*domain.Quiz, error)
	GetAssignment(ctx context.Context, id string) (*domain.Assignment, error)
	ListEnrichmentVideos(ctx context.Context, enrichmentID string) ([]*domain.EnrichmentVideo, error)

	// GetModuleContent loads every unit of the module, per kind.
	GetModuleContent(ctx context.Context, moduleID string) (*domain.ModuleContent, error)
	// CountUnitsByKind counts units owned by the module for all six kinds.
	CountUnitsByKind(ctx context.Context, moduleID string) (map[domain.UnitKind]int, error)
}

// ProgressRepo is the generic completion ledger.
type ProgressRepo interface {
	// Claim writes r as completed unless a completed row already exists for
	// (UserID, UnitKind, UnitID). It reports whether this call made the
	// transition.
	Claim(ctx context.Context, r *domain.ProgressRecord) (bool, error)
	Get(ctx context.Context, userID string, kind domain.UnitKind, unitID string) (*domain.ProgressRecord, error)
	ListCompletedByModule(ctx context.Context, userID, moduleID string) ([]*domain.ProgressRecord, error)
	CountCompletedByKind(ctx context.Context, userID, moduleID string) (map[domain.UnitKind]int, error)
	SumPoints(ctx context.Context, userID string) (int, error)
}

type SubmissionRepo interface {
	// Create inserts s unless the user already submitted the assignment. It
	// reports whether the row was inserted.
	Create(ctx context.Context, s *domain.AssignmentSubmission) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.AssignmentSubmission, error)
	GetByUserAssignment(ctx context.Context, userID, assignmentID string) (*domain.AssignmentSubmission, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.AssignmentSubmission, error)
	UpdateGrade(ctx context.Context, s *domain.AssignmentSubmission) error
	CountSubmittedAssignments(ctx context.Context, userID, moduleID string) (int, error)
}

type EnrichmentProgressRepo interface {
	// GetOrCreate returns the existing row for (UserID, EnrichmentID) or
	// inserts p.
	GetOrCreate(ctx context.Context, p *domain.EnrichmentProgress) (*domain.EnrichmentProgress, error)
	Get(ctx context.Context, userID, enrichmentID string) (*domain.EnrichmentProgress, error)
	// AddWatch records a watched video; a repeat is a no-op reported as false.
	AddWatch(ctx context.Context, userID, enrichmentID, videoID string, at time.Time) (bool, error)
	// Lock takes the row lock on an existing progress row until the
	// transaction ends, serializing watchers of the same enrichment.
	Lock(ctx context.Context, userID, enrichmentID string) error
	MarkCompleted(ctx context.Context, p *domain.EnrichmentProgress) error
}

type QuizAttemptRepo interface {
	Create(ctx context.Context, a *domain.QuizAttempt) error
	ListByUserQuiz(ctx context.Context, userID, quizID string) ([]*domain.QuizAttempt, error)
	CountAttemptedQuizzes(ctx context.Context, userID, moduleID string) (int, error)
}

// StandingsRepo produces the unranked point totals of every student.
type StandingsRepo interface {
	GlobalStandings(ctx context.Context) ([]domain.Standing, error)
	ModuleStandings(ctx context.Context, moduleID string) ([]domain.Standing, error)
}
