package domain

import "time"

// Module is the aggregation boundary for completable units. The ledger never
// mutates it.
type Module struct {
	ID          string
	Title       string
	Description string
	OrderIndex  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Material struct {
	ID          string
	ModuleID    string
	Title       string
	Content     string
	PointReward int
	OrderIndex  int
	CreatedAt   time.Time
}

// Enrichment is a link or a set of videos. With videos it completes once all
// are watched; without, only through the direct completion path.
type Enrichment struct {
	ID          string
	ModuleID    string
	Title       string
	URL         string
	PointReward int
	OrderIndex  int
	CreatedAt   time.Time
}

type EnrichmentVideo struct {
	ID           string
	EnrichmentID string
	Title        string
	URL          string
	OrderIndex   int
}

// Cpmk is a course-level learning-outcome statement.
type Cpmk struct {
	ID          string
	ModuleID    string
	Code        string
	Outcomes    []string
	PointReward int
	OrderIndex  int
	CreatedAt   time.Time
}

type LearningObjective struct {
	ID          string
	ModuleID    string
	Description string
	PointReward int
	OrderIndex  int
	CreatedAt   time.Time
}

type Quiz struct {
	ID          string
	ModuleID    string
	Title       string
	PointReward int
	OrderIndex  int
	CreatedAt   time.Time
}

type Assignment struct {
	ID                string
	ModuleID          string
	Title             string
	Description       string
	Deadline          time.Time
	PointRewardEarly  int
	PointRewardOntime int
	PointRewardLate   int
	OrderIndex        int
	CreatedAt         time.Time
}

// ModuleContent is the full set of units owned by one module, per kind.
type ModuleContent struct {
	Module             *Module
	Materials          []*Material
	Enrichments        []*Enrichment
	Videos             []*EnrichmentVideo
	Cpmks              []*Cpmk
	LearningObjectives []*LearningObjective
	Quizzes            []*Quiz
	Assignments        []*Assignment
}

// Units flattens the content into completable-unit references in display
// order.
func (c *ModuleContent) Units() []CompletableUnit {
	var units []CompletableUnit
	for _, kind := range AllUnitKinds {
		switch kind {
		case KindCpmk:
			for _, u := range c.Cpmks {
				units = append(units, CompletableUnit{Kind: kind, ID: u.ID, ModuleID: u.ModuleID, RewardPoints: u.PointReward})
			}
		case KindLearningObjective:
			for _, u := range c.LearningObjectives {
				units = append(units, CompletableUnit{Kind: kind, ID: u.ID, ModuleID: u.ModuleID, RewardPoints: u.PointReward})
			}
		case KindMaterial:
			for _, u := range c.Materials {
				units = append(units, CompletableUnit{Kind: kind, ID: u.ID, ModuleID: u.ModuleID, RewardPoints: u.PointReward})
			}
		case KindEnrichment:
			for _, u := range c.Enrichments {
				units = append(units, CompletableUnit{Kind: kind, ID: u.ID, ModuleID: u.ModuleID, RewardPoints: u.PointReward})
			}
		case KindQuiz:
			for _, u := range c.Quizzes {
				units = append(units, CompletableUnit{Kind: kind, ID: u.ID, ModuleID: u.ModuleID, RewardPoints: u.PointReward})
			}
		case KindAssignment:
			for _, u := range c.Assignments {
				units = append(units, CompletableUnit{Kind: kind, ID: u.ID, ModuleID: u.ModuleID})
			}
		}
	}
	return units
}
