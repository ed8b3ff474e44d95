package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/testutil"
	"github.com/stretchr/testify/require"
)

// course is a module with one unit of every kind, two videos on the
// enrichment, and one student.
type course struct {
	Module     *domain.Module
	Material   *domain.Material
	Enrichment *domain.Enrichment
	Videos     []*domain.EnrichmentVideo
	Cpmk       *domain.Cpmk
	Objective  *domain.LearningObjective
	Quiz       *domain.Quiz
	Assignment *domain.Assignment
	Student    *domain.User
}

func seedCourse(t *testing.T, database *sql.DB) *course {
	t.Helper()
	ctx := context.Background()
	content := NewSQLContentRepo(database)

	m := testutil.NewTestModule("Intro")
	require.NoError(t, content.CreateModule(ctx, m))

	c := &course{
		Module:     m,
		Material:   testutil.NewTestMaterial(m.ID, 10),
		Enrichment: testutil.NewTestEnrichment(m.ID, 15),
		Cpmk:       testutil.NewTestCpmk(m.ID, 5),
		Objective:  testutil.NewTestObjective(m.ID, 5),
		Quiz:       testutil.NewTestQuiz(m.ID, 25),
		Assignment: testutil.NewTestAssignment(m.ID, time.Now().UTC().Add(72*time.Hour)),
		Student:    seedUser(t, database, "Ayu"),
	}
	require.NoError(t, content.CreateMaterial(ctx, c.Material))
	require.NoError(t, content.CreateEnrichment(ctx, c.Enrichment))
	for i := 0; i < 2; i++ {
		v := testutil.NewTestVideo(c.Enrichment.ID)
		require.NoError(t, content.CreateEnrichmentVideo(ctx, v))
		c.Videos = append(c.Videos, v)
	}
	require.NoError(t, content.CreateCpmk(ctx, c.Cpmk))
	require.NoError(t, content.CreateLearningObjective(ctx, c.Objective))
	require.NoError(t, content.CreateQuiz(ctx, c.Quiz))
	require.NoError(t, content.CreateAssignment(ctx, c.Assignment))
	return c
}

func seedUser(t *testing.T, database *sql.DB, name string, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(name, opts...)
	require.NoError(t, NewSQLUserRepo(database).Create(context.Background(), u))
	return u
}

func completedRecord(userID string, unit domain.CompletableUnit, points int) *domain.ProgressRecord {
	return domain.NewCompletedRecord(uuid.New().String(), userID, unit, points, time.Now().UTC())
}
