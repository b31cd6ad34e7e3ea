package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFloorHeldAt(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	f := &floor{now: func() time.Time { return now }}
	at := func(d time.Duration) time.Time { return base.Add(d) }

	assert.False(t, f.heldAt(at(0)), "silent before any speech")

	now = at(time.Second)
	f.set(true)
	now = at(3 * time.Second)
	f.set(false)
	now = at(5 * time.Second)
	f.set(true)

	assert.False(t, f.heldAt(time.Time{}), "unstamped utterances are never held")
	assert.False(t, f.heldAt(at(500*time.Millisecond)))
	assert.True(t, f.heldAt(at(2*time.Second)))
	assert.False(t, f.heldAt(at(4*time.Second)))
	assert.Len(t, f.held, 0, "closed span is forgotten once passed")
	assert.True(t, f.heldAt(at(6*time.Second)), "open span covers later arrivals")
}

func TestFloorRepeatedSetIsIdempotent(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	f := &floor{now: func() time.Time { return now }}

	f.set(false)
	f.set(true)
	now = base.Add(time.Second)
	f.set(true)
	now = base.Add(2 * time.Second)
	f.set(false)
	f.set(false)

	assert.Len(t, f.held, 1)
	assert.Equal(t, base, f.held[0].from)
	assert.True(t, f.heldAt(base.Add(1500*time.Millisecond)))
}
