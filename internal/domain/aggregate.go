package domain

// KindProgress is the completed/total pair for one unit kind in a module.
type KindProgress struct {
	Completed int
	Total     int
}

// ModuleProgress is a user's completion of one module across all kinds.
type ModuleProgress struct {
	UserID     string
	ModuleID   string
	Completed  int
	Total      int
	Percentage int
	ByKind     map[UnitKind]KindProgress
}

// IsComplete reports whether every unit in the module is done.
func (p *ModuleProgress) IsComplete() bool {
	return p.Completed >= p.Total
}

// ComputeModuleProgress sums per-kind counts and derives the percentage.
// Kinds missing from byKind count as zero.
func ComputeModuleProgress(userID, moduleID string, byKind map[UnitKind]KindProgress) *ModuleProgress {
	p := &ModuleProgress{
		UserID:   userID,
		ModuleID: moduleID,
		ByKind:   make(map[UnitKind]KindProgress, len(AllUnitKinds)),
	}
	for _, kind := range AllUnitKinds {
		kp := byKind[kind]
		if kp.Completed > kp.Total {
			kp.Completed = kp.Total
		}
		p.ByKind[kind] = kp
		p.Completed += kp.Completed
		p.Total += kp.Total
	}
	p.Percentage = CompletionPercentage(p.Completed, p.Total)
	return p
}

// CompletionPercentage is round-half-up of 100*completed/total. A module with
// no units is fully complete.
func CompletionPercentage(completed, total int) int {
	if total <= 0 {
		return 100
	}
	if completed <= 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}
