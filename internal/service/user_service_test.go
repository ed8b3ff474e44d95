package service

import (
	"context"
	"testing"
	"time"

	"github.com/sinaulab/sinau/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	svc := NewUserService(env.uow, env.users, env.content, WithClock(fixedClock(now)))

	u := &domain.User{Name: "  Ayu  ", TotalPoints: 500}
	require.NoError(t, svc.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Ayu", u.Name)
	assert.Equal(t, domain.RoleStudent, u.Role)
	assert.Equal(t, 0, u.TotalPoints, "balances start at zero")

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, 0, got.TotalPoints)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserService_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewUserService(env.uow, env.users, env.content)

	assert.ErrorIs(t, svc.Create(ctx, &domain.User{Name: " "}), domain.ErrValidation)
	assert.ErrorIs(t, svc.Create(ctx, &domain.User{Name: "X", Role: "dean"}), domain.ErrValidation)

	require.NoError(t, svc.Create(ctx, &domain.User{ID: "ayu", Name: "Ayu"}))
	assert.ErrorIs(t, svc.Create(ctx, &domain.User{ID: "ayu", Name: "Ayu again"}), domain.ErrDuplicate)

	_, err := svc.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_NewStudentInvalidatesEveryScope(t *testing.T) {
	env := newTestEnv(t)
	c := env.seedCourse(t, time.Now().UTC().Add(24*time.Hour))
	cache := newFakeStandingsCache()
	svc := NewUserService(env.uow, env.users, env.content, WithStandingsCache(cache))

	require.NoError(t, svc.Create(context.Background(), &domain.User{Name: "Ayu"}))
	assert.ElementsMatch(t, []string{"global", "module:" + c.Module.ID}, cache.invalidated)

	cache.invalidated = nil
	require.NoError(t, svc.Create(context.Background(), &domain.User{Name: "Pak Hadi", Role: domain.RoleInstructor}))
	assert.Empty(t, cache.invalidated)
}
