package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sinaulab/sinau/internal/cli/formatter"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/service"
)

type leaderboardQuery struct {
	moduleID  string
	limit     int
	highlight string
	interval  time.Duration
}

type leaderboardKeys struct {
	Refresh key.Binding
	Quit    key.Binding
}

func defaultLeaderboardKeys() leaderboardKeys {
	return leaderboardKeys{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type standingsLoadedMsg struct {
	standings []domain.Standing
	err       error
	at        time.Time
}

// refreshTickMsg is ignored unless gen matches the model's current tick chain.
type refreshTickMsg struct{ gen int }

// leaderboardModel polls the ranking service and redraws the board.
type leaderboardModel struct {
	ctx     context.Context
	ranking service.RankingService
	query   leaderboardQuery
	keys    leaderboardKeys

	standings []domain.Standing
	err       error
	updatedAt time.Time
	loaded    bool
	tickGen   int
	quitting  bool
}

func newLeaderboardModel(ctx context.Context, ranking service.RankingService, q leaderboardQuery) *leaderboardModel {
	return &leaderboardModel{
		ctx:     ctx,
		ranking: ranking,
		query:   q,
		keys:    defaultLeaderboardKeys(),
	}
}

func (m *leaderboardModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m *leaderboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case standingsLoadedMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.standings = msg.standings
			m.updatedAt = msg.at
		}
		return m, nil

	case refreshTickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		return m, tea.Batch(m.load(), m.tick())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.tickGen++
			return m, tea.Batch(m.load(), m.tick())
		}
	}
	return m, nil
}

func (m *leaderboardModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.loaded {
		return formatter.Dim("Loading leaderboard...") + "\n"
	}

	var b strings.Builder
	b.WriteString(formatter.FormatLeaderboard(leaderboardTitle(m.query.moduleID), m.standings, m.query.highlight))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("refresh failed: "+m.err.Error()) + "\n")
	}
	var hints []string
	for _, k := range []key.Binding{m.keys.Refresh, m.keys.Quit} {
		h := k.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	footer := fmt.Sprintf("updated %s · every %s · %s",
		m.updatedAt.Format("15:04:05"), m.query.interval, strings.Join(hints, " · "))
	b.WriteString(formatter.Dim(footer) + "\n")
	return b.String()
}

func (m *leaderboardModel) load() tea.Cmd {
	ctx, ranking, q := m.ctx, m.ranking, m.query
	return func() tea.Msg {
		standings, err := ranking.Leaderboard(ctx, q.moduleID, q.limit)
		return standingsLoadedMsg{standings: standings, err: err, at: time.Now()}
	}
}

func (m *leaderboardModel) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.query.interval, func(time.Time) tea.Msg {
		return refreshTickMsg{gen: gen}
	})
}
