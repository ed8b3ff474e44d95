package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sinaulab/sinau/internal/domain"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		pct    int
		filled int
		label  string
	}{
		{0, 0, "  0%"},
		{50, 5, " 50%"},
		{100, 10, "100%"},
		{150, 10, "100%"},
		{-3, 0, "  0%"},
	}
	for _, tt := range tests {
		got := stripANSI(RenderProgress(tt.pct, 10))
		assert.Equal(t, tt.filled, strings.Count(got, filledBlock), "pct %d", tt.pct)
		assert.Equal(t, 10-tt.filled, strings.Count(got, emptyBlock), "pct %d", tt.pct)
		assert.True(t, strings.HasSuffix(got, tt.label), "pct %d: %q", tt.pct, got)
	}
}

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   time.Time
		want string
	}{
		{now, "Today"},
		{now.Add(24 * time.Hour), "Tomorrow"},
		{now.Add(-24 * time.Hour), "Yesterday"},
		{now.Add(3 * 24 * time.Hour), "In 3d"},
		{now.Add(21 * 24 * time.Hour), "In 3w"},
		{now.Add(-90 * 24 * time.Hour), "3mo ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeDateFrom(tt.in, now))
	}
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "3f2a9c1e", stripANSI(TruncID("3f2a9c1e-0000-4000-8000-000000000000")))
	assert.Equal(t, "alg-01-quiz", stripANSI(TruncID("alg-01-quiz")))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := stripANSI(RenderTable([]string{"NAME", "POINTS"}, [][]string{{"Ayu", "120"}, {"Budi Santoso", "5"}}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "─")
	assert.Equal(t, strings.Index(lines[2], "120"), strings.Index(lines[3], "5"))
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatCompletion(t *testing.T) {
	at := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	rec := &domain.ProgressRecord{UnitKind: domain.KindMaterial, UnitID: "mat-1", PointsEarned: 10, CompletedAt: &at}

	fresh := stripANSI(FormatCompletion(&domain.Completion{Record: rec}))
	assert.Contains(t, fresh, "Completed Material mat-1")
	assert.Contains(t, fresh, "+10 pts")

	repeat := stripANSI(FormatCompletion(&domain.Completion{Record: rec, AlreadyCompleted: true}))
	assert.Contains(t, repeat, "already completed on 2026-01-05 09:30 UTC")
	assert.Contains(t, repeat, "no points awarded")
}

func TestFormatSubmission(t *testing.T) {
	sub := &domain.AssignmentSubmission{AssignmentID: "tugas-1", Status: domain.TierLate, PointsEarned: 10, SubmittedAt: time.Now()}

	out := stripANSI(FormatSubmission(&domain.SubmissionOutcome{Submission: sub}))
	assert.Contains(t, out, "Late")
	assert.Contains(t, out, "+10 pts")

	out = stripANSI(FormatSubmission(&domain.SubmissionOutcome{Submission: sub, AlreadySubmitted: true}))
	assert.Contains(t, out, "already submitted")
}

func TestFormatSubmissionList_ScoreColumn(t *testing.T) {
	score := 88
	at := time.Date(2026, 6, 17, 10, 0, 0, 0, time.UTC)
	subs := []*domain.AssignmentSubmission{
		{ID: "s-graded", UserID: "ayu", Status: domain.TierEarly, PointsEarned: 30, SubmittedAt: at, Score: &score},
		{ID: "s-open", UserID: "bima", Status: domain.TierLate, PointsEarned: 10, SubmittedAt: at},
	}

	lines := strings.Split(stripANSI(FormatSubmissionList(subs)), "\n")
	var ayu, bima string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "ayu"):
			ayu = l
		case strings.Contains(l, "bima"):
			bima = l
		}
	}
	assert.Contains(t, ayu, "88")
	assert.NotContains(t, ayu, "--")
	assert.Contains(t, bima, "--")

	assert.Equal(t, "No submissions yet.\n", FormatSubmissionList(nil))
}

func TestFormatModuleProgress_SkipsEmptyKinds(t *testing.T) {
	p := domain.ComputeModuleProgress("u1", "m1", map[domain.UnitKind]domain.KindProgress{
		domain.KindMaterial: {Completed: 1, Total: 2},
		domain.KindQuiz:     {Completed: 1, Total: 2},
	})
	out := stripANSI(FormatModuleProgress(p, "Algoritma"))
	assert.Contains(t, out, "ALGORITMA")
	assert.Contains(t, out, "2/4 units")
	assert.Contains(t, out, " 50%")
	assert.Contains(t, out, "Material")
	assert.Contains(t, out, "Quiz")
	assert.NotContains(t, out, "CPMK")
}

func TestFormatLeaderboard(t *testing.T) {
	standings := []domain.Standing{
		{UserID: "u-a", Name: "Adi", Points: 30, Rank: 1},
		{UserID: "u-b", Name: "Bima", Points: 10, Rank: 2},
	}
	out := stripANSI(FormatLeaderboard("Global", standings, "u-b"))
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "▶ Bima")
	assert.NotContains(t, out, "▶ Adi")

	assert.Contains(t, stripANSI(FormatLeaderboard("Global", nil, "")), "No students ranked yet.")
}

func TestFormatRank(t *testing.T) {
	assert.Contains(t, stripANSI(FormatRank(nil, "global")), "Not ranked in global")
	out := stripANSI(FormatRank(&domain.Standing{Name: "Adi", Rank: 3, Points: 42}, "module m1"))
	assert.Equal(t, "Adi is #3 in module m1 with 42 points\n", out)
}

func TestFormatEnrichment(t *testing.T) {
	p := &domain.EnrichmentProgress{EnrichmentID: "enr-1", WatchedVideoIDs: map[string]bool{"v1": true}}
	out := stripANSI(FormatEnrichment(p, 3, nil))
	assert.Contains(t, out, "1/3 videos")
	assert.Contains(t, out, " 33%")

	p.WatchedVideoIDs["v2"], p.WatchedVideoIDs["v3"] = true, true
	p.Completed = true
	rec := &domain.ProgressRecord{UnitKind: domain.KindEnrichment, UnitID: "enr-1", PointsEarned: 15}
	out = stripANSI(FormatEnrichment(p, 3, &domain.Completion{Record: rec}))
	assert.Contains(t, out, "Enrichment completed +15 pts")
}
