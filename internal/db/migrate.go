package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is valid for both
// SQLite and PostgreSQL; booleans are stored as 0/1 integers and timestamps
// as RFC3339 text.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate re-adding columns since the migration system re-runs
			// all statements.
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate column name") ||
		(strings.Contains(msg, "column") && strings.Contains(msg, "already exists"))
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		email        TEXT NOT NULL DEFAULT '',
		role         TEXT NOT NULL CHECK(role IN ('student','instructor','admin')),
		total_points INTEGER NOT NULL DEFAULT 0 CHECK(total_points >= 0),
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,

	`CREATE TABLE IF NOT EXISTS modules (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS materials (
		id           TEXT PRIMARY KEY,
		module_id    TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		content      TEXT NOT NULL DEFAULT '',
		point_reward INTEGER NOT NULL DEFAULT 0 CHECK(point_reward >= 0),
		order_index  INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_materials_module ON materials(module_id)`,

	`CREATE TABLE IF NOT EXISTS enrichments (
		id           TEXT PRIMARY KEY,
		module_id    TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		url          TEXT NOT NULL DEFAULT '',
		point_reward INTEGER NOT NULL DEFAULT 0 CHECK(point_reward >= 0),
		order_index  INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_enrichments_module ON enrichments(module_id)`,

	`CREATE TABLE IF NOT EXISTS enrichment_videos (
		id            TEXT PRIMARY KEY,
		enrichment_id TEXT NOT NULL REFERENCES enrichments(id) ON DELETE CASCADE,
		title         TEXT NOT NULL DEFAULT '',
		url           TEXT NOT NULL DEFAULT '',
		order_index   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_enrichment_videos_enrichment ON enrichment_videos(enrichment_id)`,

	`CREATE TABLE IF NOT EXISTS cpmks (
		id           TEXT PRIMARY KEY,
		module_id    TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		code         TEXT NOT NULL DEFAULT '',
		outcomes     TEXT NOT NULL DEFAULT '[]',
		point_reward INTEGER NOT NULL DEFAULT 0 CHECK(point_reward >= 0),
		order_index  INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cpmks_module ON cpmks(module_id)`,

	`CREATE TABLE IF NOT EXISTS learning_objectives (
		id           TEXT PRIMARY KEY,
		module_id    TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		description  TEXT NOT NULL,
		point_reward INTEGER NOT NULL DEFAULT 0 CHECK(point_reward >= 0),
		order_index  INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_objectives_module ON learning_objectives(module_id)`,

	`CREATE TABLE IF NOT EXISTS quizzes (
		id           TEXT PRIMARY KEY,
		module_id    TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		point_reward INTEGER NOT NULL DEFAULT 0 CHECK(point_reward >= 0),
		order_index  INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_module ON quizzes(module_id)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		id                  TEXT PRIMARY KEY,
		module_id           TEXT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		title               TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		deadline            TEXT NOT NULL,
		point_reward_early  INTEGER NOT NULL DEFAULT 0 CHECK(point_reward_early >= 0),
		point_reward_ontime INTEGER NOT NULL DEFAULT 0 CHECK(point_reward_ontime >= 0),
		point_reward_late   INTEGER NOT NULL DEFAULT 0 CHECK(point_reward_late >= 0),
		order_index         INTEGER NOT NULL DEFAULT 0,
		created_at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_module ON assignments(module_id)`,

	// The generic completion ledger. The unique index is what guarantees a
	// single award per (user, kind, unit).
	`CREATE TABLE IF NOT EXISTS progress_records (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		unit_kind     TEXT NOT NULL
		              CHECK(unit_kind IN ('material','enrichment','cpmk','learning_objective','quiz','assignment')),
		unit_id       TEXT NOT NULL,
		module_id     TEXT NOT NULL,
		is_completed  INTEGER NOT NULL DEFAULT 0,
		points_earned INTEGER NOT NULL DEFAULT 0 CHECK(points_earned >= 0),
		completed_at  TEXT,
		created_at    TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_progress_user_unit ON progress_records(user_id, unit_kind, unit_id)`,
	`CREATE INDEX IF NOT EXISTS idx_progress_user_module ON progress_records(user_id, module_id)`,
	`CREATE INDEX IF NOT EXISTS idx_progress_module ON progress_records(module_id)`,

	`CREATE TABLE IF NOT EXISTS assignment_submissions (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		module_id     TEXT NOT NULL,
		submitted_at  TEXT NOT NULL,
		status        TEXT NOT NULL CHECK(status IN ('early','ontime','late')),
		points_earned INTEGER NOT NULL DEFAULT 0 CHECK(points_earned >= 0),
		attachment    TEXT NOT NULL DEFAULT '',
		score         INTEGER CHECK(score IS NULL OR (score >= 0 AND score <= 100)),
		feedback      TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_user_assignment ON assignment_submissions(user_id, assignment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_assignment ON assignment_submissions(assignment_id)`,

	`CREATE TABLE IF NOT EXISTS enrichment_progress (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		enrichment_id TEXT NOT NULL REFERENCES enrichments(id) ON DELETE CASCADE,
		module_id     TEXT NOT NULL,
		completed     INTEGER NOT NULL DEFAULT 0,
		completed_at  TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrichment_progress_user ON enrichment_progress(user_id, enrichment_id)`,

	`CREATE TABLE IF NOT EXISTS enrichment_video_watches (
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		enrichment_id TEXT NOT NULL REFERENCES enrichments(id) ON DELETE CASCADE,
		video_id      TEXT NOT NULL REFERENCES enrichment_videos(id) ON DELETE CASCADE,
		watched_at    TEXT NOT NULL,
		PRIMARY KEY (user_id, enrichment_id, video_id)
	)`,

	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		quiz_id       TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		module_id     TEXT NOT NULL,
		score         INTEGER NOT NULL DEFAULT 0,
		points_earned INTEGER NOT NULL DEFAULT 0 CHECK(points_earned >= 0),
		attempted_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user_quiz ON quiz_attempts(user_id, quiz_id)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_module ON quiz_attempts(module_id)`,

	// Grading timestamp (added after submissions shipped)
	`ALTER TABLE assignment_submissions ADD COLUMN graded_at TEXT`,
}
