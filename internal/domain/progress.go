package domain

import "time"

// CompletableUnit is a tagged reference to anything a student can finish for
// points.
type CompletableUnit struct {
	Kind         UnitKind
	ID           string
	ModuleID     string
	RewardPoints int
}

// UnitRef identifies a unit across kinds.
type UnitRef struct {
	Kind UnitKind
	ID   string
}

func (r UnitRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

// ProgressRecord is the ledger row for one (user, kind, unit). It is unique on
// that triple; IsCompleted moves false→true once and PointsEarned and
// CompletedAt are fixed at that moment.
type ProgressRecord struct {
	ID           string
	UserID       string
	UnitKind     UnitKind
	UnitID       string
	ModuleID     string
	IsCompleted  bool
	PointsEarned int
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

// NewCompletedRecord builds the record written when a unit is awarded.
// Negative points are clamped to zero.
func NewCompletedRecord(id, userID string, unit CompletableUnit, points int, now time.Time) *ProgressRecord {
	if points < 0 {
		points = 0
	}
	completedAt := now
	return &ProgressRecord{
		ID:           id,
		UserID:       userID,
		UnitKind:     unit.Kind,
		UnitID:       unit.ID,
		ModuleID:     unit.ModuleID,
		IsCompleted:  true,
		PointsEarned: points,
		CompletedAt:  &completedAt,
		CreatedAt:    now,
	}
}

// Completion is the outcome of an award attempt. AlreadyCompleted is a normal
// result: Record is the earlier completion and nothing changed.
type Completion struct {
	Record           *ProgressRecord
	AlreadyCompleted bool
}

// AwardedPoints is what this call added to the user's balance.
func (c *Completion) AwardedPoints() int {
	if c == nil || c.AlreadyCompleted || c.Record == nil {
		return 0
	}
	return c.Record.PointsEarned
}

// ResolvePoints applies the award fallback chain: override, then the unit's
// own reward, then zero.
func ResolvePoints(unit CompletableUnit, override *int) int {
	return IntFromPtrWithDefault(unit.RewardPoints, override)
}
