package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
)

// SQLProgressRepo implements ProgressRepo over progress_records.
type SQLProgressRepo struct {
	db db.DBTX
}

func NewSQLProgressRepo(conn db.DBTX) *SQLProgressRepo {
	return &SQLProgressRepo{db: conn}
}

const progressColumns = `id, user_id, unit_kind, unit_id, module_id, is_completed, points_earned, completed_at, created_at`

// Claim relies on idx_progress_user_unit: a conflicting row is only updated
// while it is still incomplete, so of two racing writers exactly one sees a
// changed row.
func (r *SQLProgressRepo) Claim(ctx context.Context, rec *domain.ProgressRecord) (bool, error) {
	query := `INSERT INTO progress_records (` + progressColumns + `)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT (user_id, unit_kind, unit_id) DO UPDATE SET
			is_completed = 1,
			module_id = excluded.module_id,
			points_earned = excluded.points_earned,
			completed_at = excluded.completed_at
		WHERE progress_records.is_completed = 0`
	res, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.UnitKind),
		rec.UnitID,
		rec.ModuleID,
		rec.PointsEarned,
		nullableTimeToString(rec.CompletedAt),
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("claiming %s %s: %w", rec.UnitKind, rec.UnitID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claiming %s %s: %w", rec.UnitKind, rec.UnitID, err)
	}
	return n > 0, nil
}

func (r *SQLProgressRepo) Get(ctx context.Context, userID string, kind domain.UnitKind, unitID string) (*domain.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress_records
		WHERE user_id = ? AND unit_kind = ? AND unit_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID, string(kind), unitID)
	return getOne(row, "progress record", string(kind)+":"+unitID, scanProgressRecord)
}

func (r *SQLProgressRepo) ListCompletedByModule(ctx context.Context, userID, moduleID string) ([]*domain.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress_records
		WHERE user_id = ? AND module_id = ? AND is_completed = 1
		ORDER BY completed_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("listing completed units: %w", err)
	}
	return collectRows(rows, "progress records", scanProgressRecord)
}

func (r *SQLProgressRepo) CountCompletedByKind(ctx context.Context, userID, moduleID string) (map[domain.UnitKind]int, error) {
	query := `SELECT unit_kind, COUNT(*) FROM progress_records
		WHERE user_id = ? AND module_id = ? AND is_completed = 1
		GROUP BY unit_kind`
	rows, err := r.db.QueryContext(ctx, query, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("counting completed units: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.UnitKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scanning completed count: %w", err)
		}
		counts[domain.UnitKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating completed counts: %w", err)
	}
	return counts, nil
}

func (r *SQLProgressRepo) SumPoints(ctx context.Context, userID string) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points_earned), 0) FROM progress_records WHERE user_id = ? AND is_completed = 1`,
		userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing ledger points: %w", err)
	}
	return sum, nil
}

func scanProgressRecord(s rowScanner) (*domain.ProgressRecord, error) {
	var p domain.ProgressRecord
	var kind, createdAt string
	var completed int
	var completedAt sql.NullString
	if err := s.Scan(&p.ID, &p.UserID, &kind, &p.UnitID, &p.ModuleID,
		&completed, &p.PointsEarned, &completedAt, &createdAt); err != nil {
		return nil, scanErr("progress record", err)
	}
	p.UnitKind = domain.UnitKind(kind)
	p.IsCompleted = intToBool(completed)
	p.CompletedAt = parseNullableTime(completedAt)
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}
