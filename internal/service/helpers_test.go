package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/sinaulab/sinau/internal/cache"
	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/repository"
	"github.com/sinaulab/sinau/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testEnv wires read repositories and a unit of work over one database.
type testEnv struct {
	db          *sql.DB
	uow         db.UnitOfWork
	users       *repository.SQLUserRepo
	content     *repository.SQLContentRepo
	progress    *repository.SQLProgressRepo
	submissions *repository.SQLSubmissionRepo
	enrichments *repository.SQLEnrichmentProgressRepo
	attempts    *repository.SQLQuizAttemptRepo
	standings   *repository.SQLStandingsRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newEnvOn(testutil.NewTestDB(t))
}

func newEnvOn(database *sql.DB) *testEnv {
	return &testEnv{
		db:          database,
		uow:         testutil.NewTestUoW(database),
		users:       repository.NewSQLUserRepo(database),
		content:     repository.NewSQLContentRepo(database),
		progress:    repository.NewSQLProgressRepo(database),
		submissions: repository.NewSQLSubmissionRepo(database),
		enrichments: repository.NewSQLEnrichmentProgressRepo(database),
		attempts:    repository.NewSQLQuizAttemptRepo(database),
		standings:   repository.NewSQLStandingsRepo(database),
	}
}

func (e *testEnv) ledger(opts ...Option) LedgerService {
	return NewLedgerService(e.uow, e.progress, opts...)
}

func (e *testEnv) submissionSvc(opts ...Option) SubmissionService {
	return NewSubmissionService(e.uow, e.submissions, e.content, opts...)
}

func (e *testEnv) enrichmentSvc(opts ...Option) EnrichmentService {
	return NewEnrichmentService(e.uow, e.content, e.enrichments, opts...)
}

func (e *testEnv) quizSvc(opts ...Option) QuizService {
	return NewQuizService(e.uow, e.attempts, opts...)
}

func (e *testEnv) progressSvc() ProgressService {
	return NewProgressService(e.users, e.content, e.progress, e.submissions, e.attempts)
}

func (e *testEnv) rankingSvc(opts ...Option) RankingService {
	return NewRankingService(e.users, e.content, e.standings, opts...)
}

// course is one module with a unit of every kind. The enrichment has three
// videos and the assignment deadline is seven days out.
type course struct {
	Module     *domain.Module
	Material   *domain.Material
	Enrichment *domain.Enrichment
	Videos     []*domain.EnrichmentVideo
	Cpmk       *domain.Cpmk
	Objective  *domain.LearningObjective
	Quiz       *domain.Quiz
	Assignment *domain.Assignment
}

func (e *testEnv) seedCourse(t *testing.T, deadline time.Time) *course {
	t.Helper()
	ctx := context.Background()
	m := testutil.NewTestModule("Algoritma Dasar")
	require.NoError(t, e.content.CreateModule(ctx, m))

	c := &course{
		Module:     m,
		Material:   testutil.NewTestMaterial(m.ID, 10),
		Enrichment: testutil.NewTestEnrichment(m.ID, 15),
		Cpmk:       testutil.NewTestCpmk(m.ID, 5),
		Objective:  testutil.NewTestObjective(m.ID, 5),
		Quiz:       testutil.NewTestQuiz(m.ID, 25),
		Assignment: testutil.NewTestAssignment(m.ID, deadline),
	}
	require.NoError(t, e.content.CreateMaterial(ctx, c.Material))
	require.NoError(t, e.content.CreateEnrichment(ctx, c.Enrichment))
	for i := 0; i < 3; i++ {
		v := testutil.NewTestVideo(c.Enrichment.ID)
		require.NoError(t, e.content.CreateEnrichmentVideo(ctx, v))
		c.Videos = append(c.Videos, v)
	}
	require.NoError(t, e.content.CreateCpmk(ctx, c.Cpmk))
	require.NoError(t, e.content.CreateLearningObjective(ctx, c.Objective))
	require.NoError(t, e.content.CreateQuiz(ctx, c.Quiz))
	require.NoError(t, e.content.CreateAssignment(ctx, c.Assignment))
	return c
}

func (e *testEnv) addUser(t *testing.T, name string, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(name, opts...)
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

// balance returns the user's total and checks it equals the ledger sum.
func (e *testEnv) balance(t *testing.T, userID string) int {
	t.Helper()
	ctx := context.Background()
	u, err := e.users.GetByID(ctx, userID)
	require.NoError(t, err)
	sum, err := e.progress.SumPoints(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, sum, u.TotalPoints, "total_points must equal the ledger sum")
	return u.TotalPoints
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func intPtr(v int) *int { return &v }

// fastRetry keeps retry tests quick.
func fastRetry(attempts uint) Option {
	return WithRetryPolicy(RetryPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond})
}

// recordingObserver keeps every event it sees.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, ev UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

// fakeStandingsCache is an in-memory cache.StandingsCache with the same
// generation rules as the redis one. It counts calls and can be told to fail.
type fakeStandingsCache struct {
	mu          sync.Mutex
	entries     map[string]cachedStandings
	gens        map[string]int64
	invalidated []string
	gets        int
	err         error
}

type cachedStandings struct {
	gen       int64
	standings []domain.Standing
}

func newFakeStandingsCache() *fakeStandingsCache {
	return &fakeStandingsCache{
		entries: map[string]cachedStandings{},
		gens:    map[string]int64{},
	}
}

func (c *fakeStandingsCache) Get(_ context.Context, scope cache.Scope) ([]domain.Standing, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return nil, 0, false, c.err
	}
	gen := c.gens[scope.String()]
	e, ok := c.entries[scope.String()]
	if !ok || e.gen != gen {
		return nil, gen, false, nil
	}
	return e.standings, gen, true, nil
}

func (c *fakeStandingsCache) Set(_ context.Context, scope cache.Scope, gen int64, s []domain.Standing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[scope.String()] = cachedStandings{gen: gen, standings: s}
	return nil
}

func (c *fakeStandingsCache) Invalidate(_ context.Context, scopes ...cache.Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range scopes {
		c.invalidated = append(c.invalidated, s.String())
	}
	if c.err != nil {
		return c.err
	}
	for _, s := range scopes {
		c.gens[s.String()]++
		delete(c.entries, s.String())
	}
	return nil
}

// cached reports whether a current snapshot exists for scope.
func (c *fakeStandingsCache) cached(scope cache.Scope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[scope.String()]
	return ok && e.gen == c.gens[scope.String()]
}

// flakyUoW fails the first failures transactions before fn runs, then
// delegates.
type flakyUoW struct {
	inner    db.UnitOfWork
	failures int
	err      error

	mu    sync.Mutex
	calls int
}

func (u *flakyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	u.mu.Lock()
	u.calls++
	n := u.calls
	u.mu.Unlock()
	if n <= u.failures {
		return u.err
	}
	return u.inner.WithinTx(ctx, fn)
}
