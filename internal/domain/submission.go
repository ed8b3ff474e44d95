package domain

import (
	"fmt"
	"time"
)

// EarlyWindow is how long before the deadline a submission still counts as
// early.
const EarlyWindow = 48 * time.Hour

// SubmissionScore is the tier and point value derived from a submission time.
type SubmissionScore struct {
	Tier   SubmissionTier
	Points int
}

// ScoreSubmission picks the reward tier for an assignment submitted at
// submittedAt. Both cutoffs are inclusive.
func ScoreSubmission(a *Assignment, submittedAt time.Time) SubmissionScore {
	earlyCutoff := a.Deadline.Add(-EarlyWindow)
	switch {
	case !submittedAt.After(earlyCutoff):
		return SubmissionScore{Tier: TierEarly, Points: a.PointRewardEarly}
	case !submittedAt.After(a.Deadline):
		return SubmissionScore{Tier: TierOnTime, Points: a.PointRewardOntime}
	default:
		return SubmissionScore{Tier: TierLate, Points: a.PointRewardLate}
	}
}

// AssignmentSubmission is unique per (UserID, AssignmentID). Status and
// PointsEarned are fixed at submission time; Score and Feedback come later
// from grading.
type AssignmentSubmission struct {
	ID           string
	UserID       string
	AssignmentID string
	ModuleID     string
	SubmittedAt  time.Time
	Status       SubmissionTier
	PointsEarned int
	Attachment   string
	Score        *int
	Feedback     string
	GradedAt     *time.Time
	CreatedAt    time.Time
}

// Grade records a score in [0,100] and feedback. Status and points are left
// alone.
func (s *AssignmentSubmission) Grade(score int, feedback string, now time.Time) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("score %d outside 0..100: %w", score, ErrValidation)
	}
	s.Score = &score
	s.Feedback = feedback
	s.GradedAt = &now
	return nil
}

func (s *AssignmentSubmission) IsGraded() bool {
	return s.Score != nil
}

// SubmissionOutcome is the result of a submit call. When AlreadySubmitted is
// set, Submission is the first submission and nothing was written.
type SubmissionOutcome struct {
	Submission       *AssignmentSubmission
	Completion       *Completion
	AlreadySubmitted bool
}
