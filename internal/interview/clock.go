package interview

import (
	"sync"
	"time"
)

// Phase is the interview clock's lifecycle position.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseTimeExpiredPendingClose
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseTimeExpiredPendingClose:
		return "time_expired_pending_close"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EndReason records why a session stopped.
type EndReason string

const (
	EndModelToken       EndReason = "model_end_token"
	EndTimeExpired      EndReason = "time_expired"
	EndStrikeLimit      EndReason = "strike_limit"
	EndClientRequest    EndReason = "client_request"
	EndClientDisconnect EndReason = "client_disconnect"
	EndTranscriberLost  EndReason = "transcriber_lost"
)

// StrikeClassifier flags a candidate turn as abusive or off-topic. A nil
// classifier never strikes.
type StrikeClassifier func(text string) bool

// Clock enforces the interview time limit and the strike limit.
type Clock struct {
	mu          sync.Mutex
	now         func() time.Time
	start       time.Time
	limit       time.Duration
	strikeLimit int
	strikes     int
	phase       Phase
	reason      EndReason
}

// NewClock starts a clock with the given time and strike limits.
func NewClock(limit time.Duration, strikeLimit int) *Clock {
	return newClockAt(time.Now, limit, strikeLimit)
}

func newClockAt(now func() time.Time, limit time.Duration, strikeLimit int) *Clock {
	if strikeLimit <= 0 {
		strikeLimit = 3
	}
	return &Clock{
		now:         now,
		start:       now(),
		limit:       limit,
		strikeLimit: strikeLimit,
	}
}

// CheckExpiry reports true exactly once: the first call made after the time
// limit has elapsed while the clock is still active. It latches the clock
// into PhaseTimeExpiredPendingClose.
func (c *Clock) CheckExpiry() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseActive {
		return false
	}
	if c.now().Sub(c.start) <= c.limit {
		return false
	}
	c.phase = PhaseTimeExpiredPendingClose
	return true
}

// Expired reports whether the time limit has fired.
func (c *Clock) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseTimeExpiredPendingClose || c.reason == EndTimeExpired
}

// AddStrike records one strike and reports the new count and whether the
// limit was reached. Reaching the limit ends the clock.
func (c *Clock) AddStrike() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseEnded {
		return c.strikes, true
	}
	c.strikes++
	if c.strikes >= c.strikeLimit {
		c.phase = PhaseEnded
		c.reason = EndStrikeLimit
		return c.strikes, true
	}
	return c.strikes, false
}

// Strikes returns the current strike count.
func (c *Clock) Strikes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strikes
}

// End moves the clock to PhaseEnded. It returns false if it had already ended.
func (c *Clock) End(reason EndReason) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseEnded {
		return false
	}
	c.phase = PhaseEnded
	c.reason = reason
	return true
}

// Phase returns the current phase.
func (c *Clock) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Reason returns the end reason, empty while the clock runs.
func (c *Clock) Reason() EndReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Elapsed returns the time since the clock started.
func (c *Clock) Elapsed() time.Duration {
	return c.now().Sub(c.start)
}
