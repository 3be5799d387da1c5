package story

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDialogsSweepIdle(t *testing.T) {
	g := defaultGraph(t, AdvanceByChoice)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	d := NewDialogs()
	d.now = func() time.Time { return now }

	d.Open("alice", NewWalker(g, 1))
	now = now.Add(10 * time.Minute)
	d.Open("bob", NewWalker(g, 2))
	now = now.Add(10 * time.Minute)

	closed := d.SweepIdle(15 * time.Minute)
	assert.Equal(t, []string{"alice"}, closed)
	assert.Equal(t, 1, d.Len())

	_, ok := d.Get("alice")
	assert.False(t, ok)

	// Get refreshes activity
	w, ok := d.Get("bob")
	assert.True(t, ok)
	assert.Equal(t, 2, w.NodeID())
	now = now.Add(14 * time.Minute)
	assert.Empty(t, d.SweepIdle(15*time.Minute))

	_, ok = d.Close("bob")
	assert.True(t, ok)
	_, ok = d.Close("bob")
	assert.False(t, ok)
}

func TestDialogsPinnedSurviveSweep(t *testing.T) {
	g := defaultGraph(t, AdvanceByChoice)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	d := NewDialogs()
	d.now = func() time.Time { return now }

	unpin := d.Pin("alice")
	d.Open("alice", NewWalker(g, 1))
	now = now.Add(time.Hour)
	assert.Empty(t, d.SweepIdle(time.Minute))

	// Reopening keeps the pin
	d.Open("alice", NewWalker(g, 2))
	now = now.Add(time.Hour)
	assert.Empty(t, d.SweepIdle(time.Minute))

	// Unpinning refreshes activity, then idleness counts again
	unpin()
	unpin()
	assert.Empty(t, d.SweepIdle(time.Minute))
	now = now.Add(2 * time.Minute)
	assert.Equal(t, []string{"alice"}, d.SweepIdle(time.Minute))
}
