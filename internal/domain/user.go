package domain

import "time"

// User carries the points account. TotalPoints only grows, and only through
// the ledger's award step.
type User struct {
	ID          string
	Name        string
	Email       string
	Role        Role
	TotalPoints int
	CreatedAt   time.Time
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// QuizAttempt is one try at a quiz. Only the attempt that completes the quiz
// in the ledger carries points.
type QuizAttempt struct {
	ID           string
	UserID       string
	QuizID       string
	ModuleID     string
	Score        int
	PointsEarned int
	AttemptedAt  time.Time
}
