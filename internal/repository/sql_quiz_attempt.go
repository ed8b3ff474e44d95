package repository

import (
	"context"
	"fmt"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
)

// SQLQuizAttemptRepo implements QuizAttemptRepo.
type SQLQuizAttemptRepo struct {
	db db.DBTX
}

func NewSQLQuizAttemptRepo(conn db.DBTX) *SQLQuizAttemptRepo {
	return &SQLQuizAttemptRepo{db: conn}
}

const quizAttemptColumns = `id, user_id, quiz_id, module_id, score, points_earned, attempted_at`

func (r *SQLQuizAttemptRepo) Create(ctx context.Context, a *domain.QuizAttempt) error {
	query := `INSERT INTO quiz_attempts (` + quizAttemptColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.QuizID,
		a.ModuleID,
		a.Score,
		a.PointsEarned,
		formatTime(a.AttemptedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting quiz attempt: %w", err)
	}
	return nil
}

func (r *SQLQuizAttemptRepo) ListByUserQuiz(ctx context.Context, userID, quizID string) ([]*domain.QuizAttempt, error) {
	query := `SELECT ` + quizAttemptColumns + ` FROM quiz_attempts
		WHERE user_id = ? AND quiz_id = ? ORDER BY attempted_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("listing quiz attempts: %w", err)
	}
	return collectRows(rows, "quiz attempts", scanQuizAttempt)
}

func (r *SQLQuizAttemptRepo) CountAttemptedQuizzes(ctx context.Context, userID, moduleID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT qa.quiz_id) FROM quiz_attempts qa
		JOIN quizzes q ON q.id = qa.quiz_id
		WHERE qa.user_id = ? AND q.module_id = ?`, userID, moduleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting attempted quizzes: %w", err)
	}
	return n, nil
}

func scanQuizAttempt(s rowScanner) (*domain.QuizAttempt, error) {
	var a domain.QuizAttempt
	var attemptedAt string
	if err := s.Scan(&a.ID, &a.UserID, &a.QuizID, &a.ModuleID, &a.Score, &a.PointsEarned, &attemptedAt); err != nil {
		return nil, scanErr("quiz attempt", err)
	}
	var err error
	if a.AttemptedAt, err = parseTime(attemptedAt); err != nil {
		return nil, fmt.Errorf("parsing attempted_at: %w", err)
	}
	return &a, nil
}
