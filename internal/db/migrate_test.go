package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time; should succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	// Third time for good measure.
	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"users", "modules", "materials", "enrichments", "enrichment_videos",
		"cpmks", "learning_objectives", "quizzes", "assignments",
		"progress_records", "assignment_submissions", "enrichment_progress",
		"enrichment_video_watches", "quiz_attempts",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesUniqueLedgerIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_progress_user_unit", "idx_submissions_user_assignment", "idx_enrichment_progress_user"} {
		var sqlText string
		err := db.QueryRow(`SELECT sql FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&sqlText)
		require.NoError(t, err, "index %s should exist", idx)
		assert.Contains(t, sqlText, "UNIQUE", "index %s must be unique", idx)
	}
}

func TestMigrate_AddsGradedAtColumn(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`PRAGMA table_info(assignment_submissions)`)
	require.NoError(t, err)
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk))
		if name == "graded_at" {
			found = true
		}
	}
	require.NoError(t, rows.Err())
	assert.True(t, found)
}

func TestMigrate_RejectsNegativePoints(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO users (id, name, role, total_points, created_at) VALUES ('u1', 'A', 'student', -1, '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "total_points check constraint should reject negatives")
}
