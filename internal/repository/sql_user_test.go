package repository

import (
	"context"
	"testing"

	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateAndGetByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLUserRepo(database)
	ctx := context.Background()

	u := testutil.NewTestUser("Budi", testutil.WithRole(domain.RoleInstructor))
	require.NoError(t, repo.Create(ctx, u))

	fetched, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi", fetched.Name)
	assert.Equal(t, domain.RoleInstructor, fetched.Role)
	assert.Equal(t, 0, fetched.TotalPoints)
	assert.False(t, fetched.IsStudent())
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLUserRepo(database)

	_, err := repo.GetByID(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "user ghost")
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLUserRepo(database)
	ctx := context.Background()

	u := testutil.NewTestUser("Citra")
	require.NoError(t, repo.Create(ctx, u))

	err := repo.Create(ctx, testutil.NewTestUser("Citra again", testutil.WithUserID(u.ID)))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUserRepo_IncrementPoints(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLUserRepo(database)
	ctx := context.Background()

	u := seedUser(t, database, "Dewi")
	require.NoError(t, repo.IncrementPoints(ctx, u.ID, 10))
	require.NoError(t, repo.IncrementPoints(ctx, u.ID, 5))

	fetched, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, fetched.TotalPoints)
}

func TestUserRepo_IncrementPoints_UnknownUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLUserRepo(database)

	err := repo.IncrementPoints(context.Background(), "ghost", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_List_OrderedByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLUserRepo(database)

	seedUser(t, database, "B", testutil.WithUserID("u-b"))
	seedUser(t, database, "A", testutil.WithUserID("u-a"))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u-a", users[0].ID)
	assert.Equal(t, "u-b", users[1].ID)
}
