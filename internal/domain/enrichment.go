package domain

import "time"

// EnrichmentProgress tracks which videos of an enrichment a user has watched.
// Completed becomes true once the watched set covers every video and is never
// reset afterwards, even if videos are added to the enrichment later.
type EnrichmentProgress struct {
	ID              string
	UserID          string
	EnrichmentID    string
	ModuleID        string
	WatchedVideoIDs map[string]bool
	Completed       bool
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewEnrichmentProgress returns an empty, not-completed progress row.
func NewEnrichmentProgress(id, userID string, e *Enrichment, now time.Time) *EnrichmentProgress {
	return &EnrichmentProgress{
		ID:              id,
		UserID:          userID,
		EnrichmentID:    e.ID,
		ModuleID:        e.ModuleID,
		WatchedVideoIDs: map[string]bool{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Watch adds videoID to the watched set. It reports false when the video was
// already there.
func (p *EnrichmentProgress) Watch(videoID string, now time.Time) bool {
	if p.WatchedVideoIDs == nil {
		p.WatchedVideoIDs = map[string]bool{}
	}
	if p.WatchedVideoIDs[videoID] {
		return false
	}
	p.WatchedVideoIDs[videoID] = true
	p.UpdatedAt = now
	return true
}

// CoversAll reports whether every id in videoIDs has been watched. An empty
// list is covered.
func (p *EnrichmentProgress) CoversAll(videoIDs []string) bool {
	for _, id := range videoIDs {
		if !p.WatchedVideoIDs[id] {
			return false
		}
	}
	return true
}

// MarkCompleted sets the completed flag once. It reports whether this call
// made the transition.
func (p *EnrichmentProgress) MarkCompleted(now time.Time) bool {
	if p.Completed {
		return false
	}
	p.Completed = true
	p.CompletedAt = &now
	p.UpdatedAt = now
	return true
}

// WatchedCount is the size of the watched set.
func (p *EnrichmentProgress) WatchedCount() int {
	return len(p.WatchedVideoIDs)
}
