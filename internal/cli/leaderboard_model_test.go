package cli

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRanking struct {
	mu     sync.Mutex
	boards [][]domain.Standing
	err    error
	calls  int
}

func (s *stubRanking) Leaderboard(_ context.Context, _ string, _ int) ([]domain.Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	i := min(s.calls, len(s.boards)) - 1
	return s.boards[i], nil
}

func (s *stubRanking) GetRank(context.Context, string, string) (*domain.Standing, error) {
	return nil, nil
}

func (s *stubRanking) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func watchQuery() leaderboardQuery {
	return leaderboardQuery{moduleID: "alg-01", limit: 5, highlight: "u-b", interval: time.Hour}
}

func TestLeaderboardModel_LoadsOnInit(t *testing.T) {
	ranking := &stubRanking{boards: [][]domain.Standing{{
		{UserID: "u-a", Name: "Adi", Points: 30, Rank: 1},
		{UserID: "u-b", Name: "Bima", Points: 10, Rank: 2},
	}}}

	d := teatest.Start(t, newLeaderboardModel(context.Background(), ranking, watchQuery()))

	view := ansi.ReplaceAllString(d.View(), "")
	assert.Contains(t, view, "LEADERBOARD ALG-01")
	assert.Contains(t, view, "▶ Bima")
	assert.Contains(t, view, "r refresh")
	assert.Equal(t, 1, ranking.callCount())
}

func TestLeaderboardModel_RefreshKey(t *testing.T) {
	ranking := &stubRanking{boards: [][]domain.Standing{
		{{UserID: "u-a", Name: "Adi", Points: 30, Rank: 1}},
		{{UserID: "u-b", Name: "Bima", Points: 40, Rank: 1}, {UserID: "u-a", Name: "Adi", Points: 30, Rank: 2}},
	}}
	d := teatest.Start(t, newLeaderboardModel(context.Background(), ranking, watchQuery()),
		teatest.WithTimeout(100*time.Millisecond))
	assert.NotContains(t, d.View(), "Bima")

	d.Press("r")

	assert.Equal(t, 2, ranking.callCount())
	assert.Contains(t, ansi.ReplaceAllString(d.View(), ""), "▶ Bima")
}

func TestLeaderboardModel_StaleTickIgnored(t *testing.T) {
	ranking := &stubRanking{boards: [][]domain.Standing{{}}}
	d := teatest.Start(t, newLeaderboardModel(context.Background(), ranking, watchQuery()))
	d.Press("r")
	require.Equal(t, 2, ranking.callCount())

	d.Send(refreshTickMsg{gen: 0})
	assert.Equal(t, 2, ranking.callCount())

	d.Send(refreshTickMsg{gen: 1})
	assert.Equal(t, 3, ranking.callCount())
}

func TestLeaderboardModel_KeepsLastBoardOnError(t *testing.T) {
	ranking := &stubRanking{boards: [][]domain.Standing{{{UserID: "u-a", Name: "Adi", Points: 30, Rank: 1}}}}
	d := teatest.Start(t, newLeaderboardModel(context.Background(), ranking, watchQuery()))

	ranking.mu.Lock()
	ranking.err = errors.New("database is locked")
	ranking.mu.Unlock()
	d.Press("r")

	view := ansi.ReplaceAllString(d.View(), "")
	assert.Contains(t, view, "Adi")
	assert.Contains(t, view, "refresh failed: database is locked")
}

func TestLeaderboardModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		ranking := &stubRanking{boards: [][]domain.Standing{{}}}
		d := teatest.Start(t, newLeaderboardModel(context.Background(), ranking, watchQuery()))
		d.Press(k)
		assert.True(t, d.Quit, k)
		assert.Empty(t, d.View(), k)
	}
}
