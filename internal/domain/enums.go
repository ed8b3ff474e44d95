package domain

import (
	"fmt"
	"strings"
)

// UnitKind tags a completable unit. The set is closed: every switch over
// UnitKind in this module lists all six kinds.
type UnitKind string

const (
	KindMaterial          UnitKind = "material"
	KindEnrichment        UnitKind = "enrichment"
	KindCpmk              UnitKind = "cpmk"
	KindLearningObjective UnitKind = "learning_objective"
	KindQuiz              UnitKind = "quiz"
	KindAssignment        UnitKind = "assignment"
)

// AllUnitKinds lists the registered kinds in module display order.
var AllUnitKinds = []UnitKind{
	KindCpmk,
	KindLearningObjective,
	KindMaterial,
	KindEnrichment,
	KindQuiz,
	KindAssignment,
}

// ParseUnitKind accepts the canonical kind names plus a few aliases used by
// content authors ("lo", "objective").
func ParseUnitKind(s string) (UnitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "material":
		return KindMaterial, nil
	case "enrichment":
		return KindEnrichment, nil
	case "cpmk":
		return KindCpmk, nil
	case "learning_objective", "objective", "lo":
		return KindLearningObjective, nil
	case "quiz":
		return KindQuiz, nil
	case "assignment":
		return KindAssignment, nil
	default:
		return "", fmt.Errorf("unit kind %q: %w", s, ErrValidation)
	}
}

func (k UnitKind) Valid() bool {
	switch k {
	case KindMaterial, KindEnrichment, KindCpmk, KindLearningObjective, KindQuiz, KindAssignment:
		return true
	}
	return false
}

// Label is the human-facing name of the kind.
func (k UnitKind) Label() string {
	switch k {
	case KindMaterial:
		return "Material"
	case KindEnrichment:
		return "Enrichment"
	case KindCpmk:
		return "CPMK"
	case KindLearningObjective:
		return "Learning objective"
	case KindQuiz:
		return "Quiz"
	case KindAssignment:
		return "Assignment"
	}
	return string(k)
}

// SubmissionTier is the deadline-relative bucket of an assignment submission.
type SubmissionTier string

const (
	TierEarly  SubmissionTier = "early"
	TierOnTime SubmissionTier = "ontime"
	TierLate   SubmissionTier = "late"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// ValidRoles is the canonical set of accepted role strings.
var ValidRoles = map[string]bool{
	"student": true, "instructor": true, "admin": true,
}
