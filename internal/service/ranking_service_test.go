package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sinaulab/sinau/internal/cache"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
	"github.com/sinaulab/sinau/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRank_GlobalTieBreakByUserID(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	ctx := context.Background()
	b := env.addUser(t, "Bima", testutil.WithUserID("u-b"))
	a := env.addUser(t, "Adi", testutil.WithUserID("u-a"))
	z := env.addUser(t, "Zahra", testutil.WithUserID("u-z"))

	for _, u := range []*domain.User{a, b} {
		_, err := env.ledger().MarkCompleted(ctx, u.ID, domain.KindQuiz, c.Quiz.ID, nil)
		require.NoError(t, err)
	}
	_, err := env.ledger().MarkCompleted(ctx, z.ID, domain.KindMaterial, c.Material.ID, nil)
	require.NoError(t, err)

	svc := env.rankingSvc()
	ra, err := svc.GetRank(ctx, a.ID, "")
	require.NoError(t, err)
	rb, err := svc.GetRank(ctx, b.ID, "")
	require.NoError(t, err)
	rz, err := svc.GetRank(ctx, z.ID, "")
	require.NoError(t, err)

	assert.Equal(t, 1, ra.Rank)
	assert.Equal(t, 2, rb.Rank, "equal points do not share a rank")
	assert.Equal(t, 3, rz.Rank)
	assert.Equal(t, 25, rb.Points)
}

func TestGetRank_NonStudentIsNotRanked(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	ctx := context.Background()
	lecturer := env.addUser(t, "Pak Hadi", testutil.WithRole(domain.RoleInstructor))
	env.addUser(t, "Gita")

	_, err := env.ledger().MarkCompleted(ctx, lecturer.ID, domain.KindMaterial, c.Material.ID, nil)
	require.NoError(t, err)

	st, err := env.rankingSvc().GetRank(ctx, lecturer.ID, "")
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = env.rankingSvc().GetRank(ctx, lecturer.ID, c.Module.ID)
	require.NoError(t, err)
	assert.Nil(t, st)

	_, err = env.rankingSvc().GetRank(ctx, "ghost", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetRank_ModuleScopeCountsModulePoints(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	other := env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	ctx := context.Background()
	a := env.addUser(t, "Adi", testutil.WithUserID("u-a"))
	b := env.addUser(t, "Bima", testutil.WithUserID("u-b"))
	idle := env.addUser(t, "Citra", testutil.WithUserID("u-c"))

	_, err := env.submissionSvc().Submit(ctx, SubmitRequest{UserID: b.ID, AssignmentID: c.Assignment.ID})
	require.NoError(t, err)
	_, err = env.ledger().MarkCompleted(ctx, a.ID, domain.KindMaterial, c.Material.ID, nil)
	require.NoError(t, err)
	// points outside the module do not count here
	_, err = env.quizSvc().RecordAttempt(ctx, a.ID, other.Quiz.ID, 90)
	require.NoError(t, err)

	board, err := env.rankingSvc().Leaderboard(ctx, c.Module.ID, 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, domain.Standing{UserID: b.ID, Name: "Bima", Points: 30, Rank: 1}, board[0])
	assert.Equal(t, domain.Standing{UserID: a.ID, Name: "Adi", Points: 10, Rank: 2}, board[1])
	assert.Equal(t, domain.Standing{UserID: idle.ID, Name: "Citra", Points: 0, Rank: 3}, board[2])

	global, err := env.rankingSvc().Leaderboard(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, global[0].UserID)
	assert.Equal(t, 35, global[0].Points)
}

func TestLeaderboard_LimitAndUnknownModule(t *testing.T) {
	env := newTestEnv(t)
	env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	for _, name := range []string{"A", "B", "C", "D"} {
		env.addUser(t, name)
	}
	ctx := context.Background()
	svc := env.rankingSvc()

	board, err := svc.Leaderboard(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, board, 2)

	board, err = svc.Leaderboard(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, board, 4)

	_, err = svc.Leaderboard(ctx, "missing", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRanking_ServesFromCacheUntilInvalidated(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	ctx := context.Background()
	student := env.addUser(t, "Adi")
	sc := newFakeStandingsCache()
	ranking := env.rankingSvc(WithStandingsCache(sc))
	ledger := env.ledger(WithStandingsCache(sc))

	st, err := ranking.GetRank(ctx, student.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Points)
	require.True(t, sc.cached(cache.GlobalScope))

	// a write that bypasses the services is invisible until invalidation
	require.NoError(t, env.users.IncrementPoints(ctx, student.ID, 99))
	st, err = ranking.GetRank(ctx, student.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Points)

	_, err = ledger.MarkCompleted(ctx, student.ID, domain.KindMaterial, c.Material.ID, nil)
	require.NoError(t, err)
	assert.False(t, sc.cached(cache.GlobalScope))

	st, err = ranking.GetRank(ctx, student.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 109, st.Points)
}

func TestRanking_CacheFailureFallsBackToDatabase(t *testing.T) {
	env := newTestEnv(t)
	env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	student := env.addUser(t, "Adi")
	sc := newFakeStandingsCache()
	sc.err = errors.New("i/o timeout")

	st, err := env.rankingSvc(WithStandingsCache(sc)).GetRank(context.Background(), student.ID, "")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 1, st.Rank)
}

// racingStandings runs afterRead once, right after the first global read,
// to land a write between the database read and the cache fill.
type racingStandings struct {
	*repository.SQLStandingsRepo
	once      sync.Once
	afterRead func()
}

func (r *racingStandings) GlobalStandings(ctx context.Context) ([]domain.Standing, error) {
	st, err := r.SQLStandingsRepo.GlobalStandings(ctx)
	r.once.Do(r.afterRead)
	return st, err
}

func TestRanking_WriteDuringReadDoesNotPinStaleSnapshot(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	ctx := context.Background()
	a := env.addUser(t, "Adi", testutil.WithUserID("u-a"))
	b := env.addUser(t, "Bima", testutil.WithUserID("u-b"))
	sc := newFakeStandingsCache()
	ledger := env.ledger(WithStandingsCache(sc))

	standings := &racingStandings{
		SQLStandingsRepo: env.standings,
		afterRead: func() {
			_, err := ledger.MarkCompleted(ctx, b.ID, domain.KindQuiz, c.Quiz.ID, nil)
			require.NoError(t, err)
		},
	}
	ranking := NewRankingService(env.users, env.content, standings, WithStandingsCache(sc))

	st, err := ranking.GetRank(ctx, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Rank, "the read started before the award")
	assert.False(t, sc.cached(cache.GlobalScope))

	st, err = ranking.GetRank(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Rank)
	assert.Equal(t, 25, st.Points)
}

func TestRanking_ModuleNamedGlobalIsItsOwnScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := env.seedCourse(t, time.Now().UTC().Add(7*24*time.Hour))
	m := testutil.NewTestModule("Modul Global")
	m.ID = "global"
	require.NoError(t, env.content.CreateModule(ctx, m))
	q := testutil.NewTestQuiz(m.ID, 5)
	require.NoError(t, env.content.CreateQuiz(ctx, q))

	a := env.addUser(t, "Adi", testutil.WithUserID("u-a"))
	b := env.addUser(t, "Bima", testutil.WithUserID("u-b"))
	sc := newFakeStandingsCache()
	quizzes := env.quizSvc(WithStandingsCache(sc))
	_, err := quizzes.RecordAttempt(ctx, a.ID, q.ID, 80)
	require.NoError(t, err)
	_, err = quizzes.RecordAttempt(ctx, b.ID, other.Quiz.ID, 80)
	require.NoError(t, err)

	ranking := env.rankingSvc(WithStandingsCache(sc))

	global, err := ranking.GetRank(ctx, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, global.Rank)

	inModule, err := ranking.GetRank(ctx, a.ID, "global")
	require.NoError(t, err)
	assert.Equal(t, 1, inModule.Rank)
	assert.Equal(t, 5, inModule.Points)

	assert.True(t, sc.cached(cache.GlobalScope))
	assert.True(t, sc.cached(cache.ModuleScope("global")))
}
