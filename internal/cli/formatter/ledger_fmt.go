package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sinaulab/sinau/internal/domain"
)

// FormatCompletion is the one-line result of an award attempt.
func FormatCompletion(c *domain.Completion) string {
	r := c.Record
	label := fmt.Sprintf("%s %s", KindBadge(r.UnitKind), r.UnitID)
	if c.AlreadyCompleted {
		when := ""
		if r.CompletedAt != nil {
			when = " on " + Timestamp(*r.CompletedAt)
		}
		return fmt.Sprintf("%s was already completed%s %s\n", label, when, Dim("(no points awarded)"))
	}
	return fmt.Sprintf("Completed %s %s\n", label, Points(r.PointsEarned))
}

// FormatSubmission describes a submit outcome.
func FormatSubmission(out *domain.SubmissionOutcome) string {
	s := out.Submission
	if out.AlreadySubmitted {
		return fmt.Sprintf("Assignment %s was already submitted on %s as %s %s\n",
			s.AssignmentID, Timestamp(s.SubmittedAt), TierPill(s.Status), Dim("(nothing changed)"))
	}
	return fmt.Sprintf("Submitted assignment %s %s %s\n",
		s.AssignmentID, TierPill(s.Status), Points(s.PointsEarned))
}

func FormatSubmissionList(subs []*domain.AssignmentSubmission) string {
	if len(subs) == 0 {
		return "No submissions yet.\n"
	}
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		score := Dim("--")
		if s.IsGraded() {
			score = strconv.Itoa(*s.Score)
		}
		rows = append(rows, []string{
			TruncID(s.ID),
			s.UserID,
			Timestamp(s.SubmittedAt),
			TierPill(s.Status),
			strconv.Itoa(s.PointsEarned),
			score,
		})
	}
	return RenderTable([]string{"ID", "USER", "SUBMITTED", "TIER", "POINTS", "SCORE"}, rows)
}

// FormatEnrichment renders watch progress; completion may be nil.
func FormatEnrichment(p *domain.EnrichmentProgress, totalVideos int, completion *domain.Completion) string {
	var b strings.Builder
	pct := domain.CompletionPercentage(p.WatchedCount(), totalVideos)
	fmt.Fprintf(&b, "Enrichment %s  %s  %s videos\n",
		p.EnrichmentID, RenderProgress(pct, 16), RenderCount(p.WatchedCount(), totalVideos))
	switch {
	case completion != nil && !completion.AlreadyCompleted:
		fmt.Fprintf(&b, "%s %s\n", StyleGreen.Render("✔ Enrichment completed"), Points(completion.AwardedPoints()))
	case p.Completed:
		fmt.Fprintf(&b, "%s\n", Dim("✔ Completed"))
	}
	return b.String()
}

func FormatQuizAttempt(a *domain.QuizAttempt, attemptNo int) string {
	return fmt.Sprintf("Recorded attempt #%d on quiz %s: score %d %s\n", attemptNo, a.QuizID, a.Score, Points(a.PointsEarned))
}

func FormatQuizAttempts(attempts []*domain.QuizAttempt) string {
	if len(attempts) == 0 {
		return "No attempts yet.\n"
	}
	rows := make([][]string, 0, len(attempts))
	for i, a := range attempts {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			Timestamp(a.AttemptedAt),
			strconv.Itoa(a.Score),
			strconv.Itoa(a.PointsEarned),
		})
	}
	return RenderTable([]string{"#", "ATTEMPTED", "SCORE", "POINTS"}, rows)
}

// FormatModuleProgress renders the overall bar and a per-kind breakdown.
func FormatModuleProgress(p *domain.ModuleProgress, moduleTitle string) string {
	var b strings.Builder
	b.WriteString(Header(moduleTitle))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s units\n\n", RenderProgress(p.Percentage, 24), RenderCount(p.Completed, p.Total))

	rows := make([][]string, 0, len(domain.AllUnitKinds))
	for _, kind := range domain.AllUnitKinds {
		kp := p.ByKind[kind]
		if kp.Total == 0 {
			continue
		}
		rows = append(rows, []string{
			KindBadge(kind),
			RenderCount(kp.Completed, kp.Total),
			RenderProgress(domain.CompletionPercentage(kp.Completed, kp.Total), 10),
		})
	}
	if len(rows) > 0 {
		b.WriteString(RenderTable([]string{"KIND", "DONE", "PROGRESS"}, rows))
	}
	return b.String()
}

// FormatLeaderboard renders standings, marking highlightUserID when present.
func FormatLeaderboard(title string, standings []domain.Standing, highlightUserID string) string {
	var b strings.Builder
	b.WriteString(Header(title))
	b.WriteString("\n")
	if len(standings) == 0 {
		b.WriteString("No students ranked yet.\n")
		return b.String()
	}
	rows := make([][]string, 0, len(standings))
	for _, s := range standings {
		name := s.Name
		if s.UserID == highlightUserID {
			name = StyleHeader.Render("▶ " + name)
		}
		rows = append(rows, []string{
			rankLabel(s.Rank),
			name,
			Dim(s.UserID),
			strconv.Itoa(s.Points),
		})
	}
	b.WriteString(RenderTable([]string{"RANK", "NAME", "ID", "POINTS"}, rows))
	return b.String()
}

// FormatRank is the single-user view of a standing; st nil means unranked.
func FormatRank(st *domain.Standing, scope string) string {
	if st == nil {
		return fmt.Sprintf("Not ranked in %s %s\n", scope, Dim("(only students are ranked)"))
	}
	return fmt.Sprintf("%s is %s in %s with %d points\n", st.Name, rankLabel(st.Rank), scope, st.Points)
}

func FormatUsers(users []*domain.User) string {
	if len(users) == 0 {
		return "No users.\n"
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Name, string(u.Role), strconv.Itoa(u.TotalPoints)})
	}
	return RenderTable([]string{"ID", "NAME", "ROLE", "POINTS"}, rows)
}

func FormatUser(u *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(u.Name), Dim(u.ID))
	fmt.Fprintf(&b, "Role:    %s\n", u.Role)
	if u.Email != "" {
		fmt.Fprintf(&b, "Email:   %s\n", u.Email)
	}
	fmt.Fprintf(&b, "Points:  %d\n", u.TotalPoints)
	fmt.Fprintf(&b, "Joined:  %s\n", Timestamp(u.CreatedAt))
	return b.String()
}

func rankLabel(rank int) string {
	label := "#" + strconv.Itoa(rank)
	switch rank {
	case 1:
		return StyleYellow.Render(label)
	case 2, 3:
		return StyleBlue.Render(label)
	}
	return label
}
