package service

import (
	"context"
	"time"

	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/importer"
)

// LedgerService owns the award step: at most one completion, and one points
// increment, per (user, kind, unit).
type LedgerService interface {
	// MarkCompleted awards overridePoints, or the unit's own reward when nil.
	// A repeat call returns AlreadyCompleted with the original record.
	MarkCompleted(ctx context.Context, userID string, kind domain.UnitKind, unitID string, overridePoints *int) (*domain.Completion, error)
	IsCompletedBy(ctx context.Context, userID string, kind domain.UnitKind, unitID string) (bool, error)
	GetCompletedUnits(ctx context.Context, userID, moduleID string) ([]domain.UnitRef, error)
}

// SubmitRequest is an already-validated submission. Attachment is an opaque
// reference to wherever the upload was stored.
type SubmitRequest struct {
	UserID       string
	AssignmentID string
	SubmittedAt  time.Time
	Attachment   string
}

type SubmissionService interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.SubmissionOutcome, error)
	Grade(ctx context.Context, submissionID string, score int, feedback string) (*domain.AssignmentSubmission, error)
	Get(ctx context.Context, userID, assignmentID string) (*domain.AssignmentSubmission, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.AssignmentSubmission, error)
}

// EnrichmentResult is the state after a watch or direct completion, plus the
// ledger outcome when the enrichment completed on this call.
type EnrichmentResult struct {
	Progress    *domain.EnrichmentProgress
	TotalVideos int
	Completion  *domain.Completion
}

type EnrichmentService interface {
	MarkVideoWatched(ctx context.Context, userID, enrichmentID, videoID string) (*EnrichmentResult, error)
	MarkEnrichmentCompleted(ctx context.Context, userID, enrichmentID string) (*EnrichmentResult, error)
	GetProgress(ctx context.Context, userID, enrichmentID string) (*EnrichmentResult, error)
}

// QuizAttemptResult carries the stored attempt and, on the first attempt, the
// ledger completion.
type QuizAttemptResult struct {
	Attempt    *domain.QuizAttempt
	Completion *domain.Completion
	AttemptNo  int
}

type QuizService interface {
	RecordAttempt(ctx context.Context, userID, quizID string, score int) (*QuizAttemptResult, error)
	ListAttempts(ctx context.Context, userID, quizID string) ([]*domain.QuizAttempt, error)
}

type ProgressService interface {
	GetModuleProgress(ctx context.Context, userID, moduleID string) (*domain.ModuleProgress, error)
}

// RankingService ranks students. An empty moduleID means global scope.
type RankingService interface {
	// GetRank returns nil when the user is not in the ranked population.
	GetRank(ctx context.Context, userID, moduleID string) (*domain.Standing, error)
	Leaderboard(ctx context.Context, moduleID string, limit int) ([]domain.Standing, error)
}

type UserService interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// ImportResult holds the outcome of a course import.
type ImportResult struct {
	ModuleCount int
	UnitCount   int
	VideoCount  int
	UserCount   int
}

type ImportService interface {
	ImportCourse(ctx context.Context, filePath string) (*ImportResult, error)
	ImportCourseFromSchema(ctx context.Context, schema *importer.CourseSchema) (*ImportResult, error)
}
