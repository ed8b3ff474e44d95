package importer

import (
	"fmt"
	"time"

	"github.com/sinaulab/sinau/internal/domain"
)

// Course is a converted import, ready for persistence.
type Course struct {
	Modules []*domain.ModuleContent
	Users   []*domain.User
}

// UnitCount is the number of completable units across all modules.
func (c *Course) UnitCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Units())
	}
	return n
}

// Convert turns a validated schema into domain objects. Call
// ValidateCourseSchema first; Convert assumes the schema is valid.
func Convert(schema *CourseSchema, now time.Time) (*Course, error) {
	now = now.UTC()
	defaultPoints := 0
	var defaultTiers TierPointsImport
	if schema.Defaults != nil {
		defaultPoints = domain.IntFromPtrWithDefault(0, schema.Defaults.Points)
		if schema.Defaults.AssignmentPoints != nil {
			defaultTiers = *schema.Defaults.AssignmentPoints
		}
	}
	points := func(p *int) int {
		return domain.IntFromPtrWithDefault(defaultPoints, p)
	}

	course := &Course{}
	for _, m := range schema.Modules {
		content := &domain.ModuleContent{
			Module: &domain.Module{
				ID:          m.Ref,
				Title:       m.Title,
				Description: m.Description,
				OrderIndex:  m.Order,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		}

		for i, u := range m.Materials {
			content.Materials = append(content.Materials, &domain.Material{
				ID: u.Ref, ModuleID: m.Ref, Title: u.Title, Content: u.Content,
				PointReward: points(u.Points), OrderIndex: i, CreatedAt: now,
			})
		}
		for i, u := range m.Enrichments {
			content.Enrichments = append(content.Enrichments, &domain.Enrichment{
				ID: u.Ref, ModuleID: m.Ref, Title: u.Title, URL: u.URL,
				PointReward: points(u.Points), OrderIndex: i, CreatedAt: now,
			})
			for j, v := range u.Videos {
				content.Videos = append(content.Videos, &domain.EnrichmentVideo{
					ID: v.Ref, EnrichmentID: u.Ref, Title: domain.CoalesceStr(v.Title, v.Ref), URL: v.URL, OrderIndex: j,
				})
			}
		}
		for i, u := range m.Cpmks {
			content.Cpmks = append(content.Cpmks, &domain.Cpmk{
				ID: u.Ref, ModuleID: m.Ref, Code: u.Code, Outcomes: u.Outcomes,
				PointReward: points(u.Points), OrderIndex: i, CreatedAt: now,
			})
		}
		for i, u := range m.LearningObjectives {
			content.LearningObjectives = append(content.LearningObjectives, &domain.LearningObjective{
				ID: u.Ref, ModuleID: m.Ref, Description: u.Description,
				PointReward: points(u.Points), OrderIndex: i, CreatedAt: now,
			})
		}
		for i, u := range m.Quizzes {
			content.Quizzes = append(content.Quizzes, &domain.Quiz{
				ID: u.Ref, ModuleID: m.Ref, Title: u.Title,
				PointReward: points(u.Points), OrderIndex: i, CreatedAt: now,
			})
		}
		for i, u := range m.Assignments {
			deadline, err := parseDeadline(u.Deadline)
			if err != nil {
				return nil, fmt.Errorf("assignment %q: %w", u.Ref, err)
			}
			tiers := defaultTiers
			if u.Points != nil {
				tiers = *u.Points
			}
			content.Assignments = append(content.Assignments, &domain.Assignment{
				ID: u.Ref, ModuleID: m.Ref, Title: u.Title, Description: u.Description,
				Deadline:          deadline,
				PointRewardEarly:  tiers.Early,
				PointRewardOntime: tiers.Ontime,
				PointRewardLate:   tiers.Late,
				OrderIndex:        i,
				CreatedAt:         now,
			})
		}
		course.Modules = append(course.Modules, content)
	}

	for _, u := range schema.Users {
		course.Users = append(course.Users, &domain.User{
			ID:        u.Ref,
			Name:      u.Name,
			Email:     u.Email,
			Role:      domain.Role(domain.CoalesceStr(u.Role, string(domain.RoleStudent))),
			CreatedAt: now,
		})
	}
	return course, nil
}

// parseDeadline accepts RFC 3339 timestamps, or a bare date meaning the last
// second of that day in UTC.
func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q (expected RFC 3339 or YYYY-MM-DD)", s)
	}
	return d.Add(24*time.Hour - time.Second), nil
}
