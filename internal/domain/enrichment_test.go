package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrichmentProgress_CompletesOnlyWhenAllWatched(t *testing.T) {
	e := &Enrichment{ID: "e1", ModuleID: "m1", PointReward: 15}
	videos := []string{"v1", "v2", "v3"}
	p := NewEnrichmentProgress("p1", "u1", e, testNow)

	assert.True(t, p.Watch("v1", testNow))
	assert.True(t, p.Watch("v2", testNow))
	assert.False(t, p.CoversAll(videos))

	assert.True(t, p.Watch("v3", testNow))
	assert.True(t, p.CoversAll(videos))
	assert.Equal(t, 3, p.WatchedCount())
}

func TestEnrichmentProgress_WatchIsSetSemantics(t *testing.T) {
	p := &EnrichmentProgress{}
	assert.True(t, p.Watch("v1", testNow))
	assert.False(t, p.Watch("v1", testNow.Add(time.Minute)))
	assert.Equal(t, 1, p.WatchedCount())
	assert.Equal(t, testNow, p.UpdatedAt, "duplicate watch must not touch the row")
}

func TestEnrichmentProgress_EmptyVideoSetIsCovered(t *testing.T) {
	p := &EnrichmentProgress{}
	assert.True(t, p.CoversAll(nil))
}

func TestEnrichmentProgress_MarkCompletedOnce(t *testing.T) {
	p := &EnrichmentProgress{}
	assert.True(t, p.MarkCompleted(testNow))
	assert.False(t, p.MarkCompleted(testNow.Add(time.Hour)))
	assert.Equal(t, testNow, *p.CompletedAt)
}

func TestEnrichmentProgress_StaysCompletedWhenVideosAdded(t *testing.T) {
	p := &EnrichmentProgress{}
	p.Watch("v1", testNow)
	p.MarkCompleted(testNow)

	// A new video appears later; the flag stays set.
	assert.False(t, p.CoversAll([]string{"v1", "v2"}))
	assert.True(t, p.Completed)
}
