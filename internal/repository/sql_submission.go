package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
)

// SQLSubmissionRepo implements SubmissionRepo.
type SQLSubmissionRepo struct {
	db db.DBTX
}

func NewSQLSubmissionRepo(conn db.DBTX) *SQLSubmissionRepo {
	return &SQLSubmissionRepo{db: conn}
}

const submissionColumns = `id, user_id, assignment_id, module_id, submitted_at, status, points_earned, attachment, score, feedback, graded_at, created_at`

// Create is first-submission-wins on idx_submissions_user_assignment.
func (r *SQLSubmissionRepo) Create(ctx context.Context, s *domain.AssignmentSubmission) (bool, error) {
	query := `INSERT INTO assignment_submissions (` + submissionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, assignment_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.AssignmentID,
		s.ModuleID,
		formatTime(s.SubmittedAt),
		string(s.Status),
		s.PointsEarned,
		s.Attachment,
		nullableIntToValue(s.Score),
		s.Feedback,
		nullableTimeToString(s.GradedAt),
		formatTime(s.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("inserting submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting submission: %w", err)
	}
	return n > 0, nil
}

func (r *SQLSubmissionRepo) GetByID(ctx context.Context, id string) (*domain.AssignmentSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM assignment_submissions WHERE id = ?`
	return getOne(r.db.QueryRowContext(ctx, query, id), "submission", id, scanSubmission)
}

func (r *SQLSubmissionRepo) GetByUserAssignment(ctx context.Context, userID, assignmentID string) (*domain.AssignmentSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM assignment_submissions
		WHERE user_id = ? AND assignment_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID, assignmentID)
	return getOne(row, "submission", userID+"/"+assignmentID, scanSubmission)
}

func (r *SQLSubmissionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.AssignmentSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM assignment_submissions
		WHERE assignment_id = ? ORDER BY submitted_at, user_id`
	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	return collectRows(rows, "submissions", scanSubmission)
}

// UpdateGrade writes score, feedback and graded_at only.
func (r *SQLSubmissionRepo) UpdateGrade(ctx context.Context, s *domain.AssignmentSubmission) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assignment_submissions SET score = ?, feedback = ?, graded_at = ? WHERE id = ?`,
		nullableIntToValue(s.Score), s.Feedback, nullableTimeToString(s.GradedAt), s.ID)
	if err != nil {
		return fmt.Errorf("grading submission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("grading submission: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("submission %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLSubmissionRepo) CountSubmittedAssignments(ctx context.Context, userID, moduleID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT s.assignment_id) FROM assignment_submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE s.user_id = ? AND a.module_id = ?`, userID, moduleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting submitted assignments: %w", err)
	}
	return n, nil
}

func scanSubmission(s rowScanner) (*domain.AssignmentSubmission, error) {
	var sub domain.AssignmentSubmission
	var status, submittedAt, createdAt string
	var score sql.NullInt64
	var gradedAt sql.NullString
	if err := s.Scan(&sub.ID, &sub.UserID, &sub.AssignmentID, &sub.ModuleID,
		&submittedAt, &status, &sub.PointsEarned, &sub.Attachment,
		&score, &sub.Feedback, &gradedAt, &createdAt); err != nil {
		return nil, scanErr("submission", err)
	}
	sub.Status = domain.SubmissionTier(status)
	if score.Valid {
		v := int(score.Int64)
		sub.Score = &v
	}
	sub.GradedAt = parseNullableTime(gradedAt)
	var err error
	if sub.SubmittedAt, err = parseTime(submittedAt); err != nil {
		return nil, fmt.Errorf("parsing submitted_at: %w", err)
	}
	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &sub, nil
}
