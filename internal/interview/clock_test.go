package interview

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func TestClockExpiryLatchesOnce(t *testing.T) {
	now := &fakeNow{t: time.Unix(1_700_000_000, 0)}
	c := newClockAt(now.Now, 20*time.Minute, 3)

	assert.False(t, c.CheckExpiry())
	now.Advance(20 * time.Minute)
	assert.False(t, c.CheckExpiry(), "exactly at the limit is not expired")

	now.Advance(time.Second)
	assert.True(t, c.CheckExpiry())
	assert.Equal(t, PhaseTimeExpiredPendingClose, c.Phase())
	assert.True(t, c.Expired())

	for range 100 {
		assert.False(t, c.CheckExpiry())
	}

	assert.True(t, c.End(EndTimeExpired))
	assert.Equal(t, PhaseEnded, c.Phase())
	assert.Equal(t, EndTimeExpired, c.Reason())
	assert.True(t, c.Expired())
}

func TestClockConcurrentExpiry(t *testing.T) {
	now := &fakeNow{t: time.Unix(0, 0)}
	c := newClockAt(now.Now, time.Minute, 3)
	now.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	fired := 0
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.CheckExpiry() {
				mu.Lock()
				fired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fired)
}

func TestClockStrikes(t *testing.T) {
	c := NewClock(time.Hour, 3)

	n, terminal := c.AddStrike()
	assert.Equal(t, 1, n)
	assert.False(t, terminal)

	n, terminal = c.AddStrike()
	assert.Equal(t, 2, n)
	assert.False(t, terminal)

	n, terminal = c.AddStrike()
	assert.Equal(t, 3, n)
	assert.True(t, terminal)
	assert.Equal(t, PhaseEnded, c.Phase())
	assert.Equal(t, EndStrikeLimit, c.Reason())

	assert.False(t, c.End(EndModelToken), "already ended")
	assert.Equal(t, EndStrikeLimit, c.Reason())
	assert.Equal(t, 3, c.Strikes())
}

func TestClockEndOnce(t *testing.T) {
	c := NewClock(time.Hour, 0)
	require.Equal(t, PhaseActive, c.Phase())
	assert.True(t, c.End(EndClientRequest))
	assert.False(t, c.End(EndClientDisconnect))
	assert.Equal(t, EndClientRequest, c.Reason())
	assert.False(t, c.CheckExpiry(), "ended clocks never expire")
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "active", PhaseActive.String())
	assert.Equal(t, "time_expired_pending_close", PhaseTimeExpiredPendingClose.String())
	assert.Equal(t, "ended", PhaseEnded.String())
}
