package repository

import (
	"context"
	"fmt"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
)

// SQLStandingsRepo implements StandingsRepo. Rows come back in rank order but
// unranked; domain.RankStandings assigns positions.
type SQLStandingsRepo struct {
	db db.DBTX
}

func NewSQLStandingsRepo(conn db.DBTX) *SQLStandingsRepo {
	return &SQLStandingsRepo{db: conn}
}

func (r *SQLStandingsRepo) GlobalStandings(ctx context.Context) ([]domain.Standing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, total_points FROM users
		WHERE role = 'student'
		ORDER BY total_points DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying global standings: %w", err)
	}
	return collectRows(rows, "global standings", scanStanding)
}

// ModuleStandings sums quiz-attempt points, submission points and ledger
// points for materials and enrichments of the module. Students without any
// module activity are included with zero.
func (r *SQLStandingsRepo) ModuleStandings(ctx context.Context, moduleID string) ([]domain.Standing, error) {
	query := `SELECT u.id, u.name, COALESCE(SUM(p.points), 0) AS module_points
		FROM users u
		LEFT JOIN (
			SELECT qa.user_id AS user_id, qa.points_earned AS points
			FROM quiz_attempts qa JOIN quizzes q ON q.id = qa.quiz_id
			WHERE q.module_id = ?
			UNION ALL
			SELECT s.user_id, s.points_earned
			FROM assignment_submissions s JOIN assignments a ON a.id = s.assignment_id
			WHERE a.module_id = ?
			UNION ALL
			SELECT pr.user_id, pr.points_earned
			FROM progress_records pr
			WHERE pr.module_id = ? AND pr.is_completed = 1
			  AND pr.unit_kind IN ('material', 'enrichment')
		) p ON p.user_id = u.id
		WHERE u.role = 'student'
		GROUP BY u.id, u.name
		ORDER BY module_points DESC, u.id ASC`
	rows, err := r.db.QueryContext(ctx, query, moduleID, moduleID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("querying module standings: %w", err)
	}
	return collectRows(rows, "module standings", scanStanding)
}

func scanStanding(s rowScanner) (domain.Standing, error) {
	var st domain.Standing
	if err := s.Scan(&st.UserID, &st.Name, &st.Points); err != nil {
		return domain.Standing{}, fmt.Errorf("scanning standing: %w", err)
	}
	return st, nil
}
