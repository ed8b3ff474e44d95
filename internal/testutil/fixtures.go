package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sinaulab/sinau/internal/domain"
)

var fixtureCounter atomic.Int64

func nextOrder() int {
	return int(fixtureCounter.Add(1))
}

// User options
type UserOption func(*domain.User)

func WithRole(r domain.Role) UserOption {
	return func(u *domain.User) {
		u.Role = r
	}
}

func WithUserID(id string) UserOption {
	return func(u *domain.User) {
		u.ID = id
	}
}

func WithEmail(email string) UserOption {
	return func(u *domain.User) {
		u.Email = email
	}
}

// NewTestUser returns a student with zero points.
func NewTestUser(name string, opts ...UserOption) *domain.User {
	u := &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     fmt.Sprintf("user%d@example.test", nextOrder()),
		Role:      domain.RoleStudent,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func NewTestModule(title string) *domain.Module {
	now := time.Now().UTC()
	return &domain.Module{
		ID:         uuid.New().String(),
		Title:      title,
		OrderIndex: nextOrder(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func NewTestMaterial(moduleID string, reward int) *domain.Material {
	n := nextOrder()
	return &domain.Material{
		ID:          uuid.New().String(),
		ModuleID:    moduleID,
		Title:       fmt.Sprintf("Material %d", n),
		PointReward: reward,
		OrderIndex:  n,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewTestEnrichment(moduleID string, reward int) *domain.Enrichment {
	n := nextOrder()
	return &domain.Enrichment{
		ID:          uuid.New().String(),
		ModuleID:    moduleID,
		Title:       fmt.Sprintf("Enrichment %d", n),
		PointReward: reward,
		OrderIndex:  n,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewTestVideo(enrichmentID string) *domain.EnrichmentVideo {
	n := nextOrder()
	return &domain.EnrichmentVideo{
		ID:           uuid.New().String(),
		EnrichmentID: enrichmentID,
		Title:        fmt.Sprintf("Video %d", n),
		URL:          fmt.Sprintf("https://video.example.test/%d", n),
		OrderIndex:   n,
	}
}

func NewTestCpmk(moduleID string, reward int) *domain.Cpmk {
	n := nextOrder()
	return &domain.Cpmk{
		ID:          uuid.New().String(),
		ModuleID:    moduleID,
		Code:        fmt.Sprintf("CPMK-%02d", n),
		Outcomes:    []string{"explain the concept", "apply it to a case"},
		PointReward: reward,
		OrderIndex:  n,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewTestObjective(moduleID string, reward int) *domain.LearningObjective {
	n := nextOrder()
	return &domain.LearningObjective{
		ID:          uuid.New().String(),
		ModuleID:    moduleID,
		Description: fmt.Sprintf("Objective %d", n),
		PointReward: reward,
		OrderIndex:  n,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewTestQuiz(moduleID string, reward int) *domain.Quiz {
	n := nextOrder()
	return &domain.Quiz{
		ID:          uuid.New().String(),
		ModuleID:    moduleID,
		Title:       fmt.Sprintf("Quiz %d", n),
		PointReward: reward,
		OrderIndex:  n,
		CreatedAt:   time.Now().UTC(),
	}
}

// Assignment options
type AssignmentOption func(*domain.Assignment)

func WithRewards(early, ontime, late int) AssignmentOption {
	return func(a *domain.Assignment) {
		a.PointRewardEarly = early
		a.PointRewardOntime = ontime
		a.PointRewardLate = late
	}
}

// NewTestAssignment defaults to rewards 30/20/10.
func NewTestAssignment(moduleID string, deadline time.Time, opts ...AssignmentOption) *domain.Assignment {
	n := nextOrder()
	a := &domain.Assignment{
		ID:                uuid.New().String(),
		ModuleID:          moduleID,
		Title:             fmt.Sprintf("Assignment %d", n),
		Deadline:          deadline,
		PointRewardEarly:  30,
		PointRewardOntime: 20,
		PointRewardLate:   10,
		OrderIndex:        n,
		CreatedAt:         time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
