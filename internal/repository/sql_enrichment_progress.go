package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
)

// SQLEnrichmentProgressRepo implements EnrichmentProgressRepo. The watched
// set lives in enrichment_video_watches, one row per video.
type SQLEnrichmentProgressRepo struct {
	db db.DBTX
}

func NewSQLEnrichmentProgressRepo(conn db.DBTX) *SQLEnrichmentProgressRepo {
	return &SQLEnrichmentProgressRepo{db: conn}
}

const enrichmentProgressColumns = `id, user_id, enrichment_id, module_id, completed, completed_at, created_at, updated_at`

func (r *SQLEnrichmentProgressRepo) GetOrCreate(ctx context.Context, p *domain.EnrichmentProgress) (*domain.EnrichmentProgress, error) {
	query := `INSERT INTO enrichment_progress (` + enrichmentProgressColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, enrichment_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.EnrichmentID,
		p.ModuleID,
		boolToInt(p.Completed),
		nullableTimeToString(p.CompletedAt),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting enrichment progress: %w", err)
	}
	return r.Get(ctx, p.UserID, p.EnrichmentID)
}

func (r *SQLEnrichmentProgressRepo) Get(ctx context.Context, userID, enrichmentID string) (*domain.EnrichmentProgress, error) {
	query := `SELECT ` + enrichmentProgressColumns + ` FROM enrichment_progress
		WHERE user_id = ? AND enrichment_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID, enrichmentID)
	p, err := getOne(row, "enrichment progress", userID+"/"+enrichmentID, scanEnrichmentProgress)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT video_id FROM enrichment_video_watches WHERE user_id = ? AND enrichment_id = ?`,
		userID, enrichmentID)
	if err != nil {
		return nil, fmt.Errorf("listing watched videos: %w", err)
	}
	ids, err := collectRows(rows, "watched videos", func(s rowScanner) (string, error) {
		var id string
		if err := s.Scan(&id); err != nil {
			return "", fmt.Errorf("scanning watched video: %w", err)
		}
		return id, nil
	})
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		p.WatchedVideoIDs[id] = true
	}
	return p, nil
}

func (r *SQLEnrichmentProgressRepo) AddWatch(ctx context.Context, userID, enrichmentID, videoID string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO enrichment_video_watches (user_id, enrichment_id, video_id, watched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, enrichment_id, video_id) DO NOTHING`,
		userID, enrichmentID, videoID, formatTime(at))
	if err != nil {
		return false, fmt.Errorf("recording watched video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("recording watched video: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE enrichment_progress SET updated_at = ? WHERE user_id = ? AND enrichment_id = ?`,
		formatTime(at), userID, enrichmentID); err != nil {
		return false, fmt.Errorf("touching enrichment progress: %w", err)
	}
	return true, nil
}

func (r *SQLEnrichmentProgressRepo) Lock(ctx context.Context, userID, enrichmentID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE enrichment_progress SET updated_at = updated_at WHERE user_id = ? AND enrichment_id = ?`,
		userID, enrichmentID)
	if err != nil {
		return fmt.Errorf("locking enrichment progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("locking enrichment progress: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("enrichment progress %s/%s: %w", userID, enrichmentID, domain.ErrNotFound)
	}
	return nil
}

// MarkCompleted only moves completed from 0 to 1; an already-completed row
// keeps its original completed_at.
func (r *SQLEnrichmentProgressRepo) MarkCompleted(ctx context.Context, p *domain.EnrichmentProgress) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE enrichment_progress SET completed = 1, completed_at = ?, updated_at = ?
		WHERE user_id = ? AND enrichment_id = ? AND completed = 0`,
		nullableTimeToString(p.CompletedAt), formatTime(p.UpdatedAt), p.UserID, p.EnrichmentID)
	if err != nil {
		return fmt.Errorf("completing enrichment progress: %w", err)
	}
	return nil
}

func scanEnrichmentProgress(s rowScanner) (*domain.EnrichmentProgress, error) {
	var p domain.EnrichmentProgress
	var completed int
	var completedAt sql.NullString
	var createdAt, updatedAt string
	if err := s.Scan(&p.ID, &p.UserID, &p.EnrichmentID, &p.ModuleID,
		&completed, &completedAt, &createdAt, &updatedAt); err != nil {
		return nil, scanErr("enrichment progress", err)
	}
	p.Completed = intToBool(completed)
	p.CompletedAt = parseNullableTime(completedAt)
	p.WatchedVideoIDs = map[string]bool{}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
