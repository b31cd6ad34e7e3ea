package interview

import "time"

// floor remembers when the interviewer held the floor so an utterance is
// judged by when it arrived, not by when the conversation gets to read it.
// It is owned by the conversation goroutine.
type floor struct {
	held  []span
	since time.Time // start of the open span, zero while silent
	now   func() time.Time
}

type span struct{ from, to time.Time }

func newFloor() *floor {
	return &floor{now: time.Now}
}

func (f *floor) set(speaking bool) {
	now := f.now()
	switch {
	case speaking && f.since.IsZero():
		f.since = now
	case !speaking && !f.since.IsZero():
		f.held = append(f.held, span{from: f.since, to: now})
		f.since = time.Time{}
	}
}

// heldAt reports whether the interviewer was speaking at t. Utterances are
// read in arrival order, so spans that closed before t are dropped.
func (f *floor) heldAt(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	i := 0
	for i < len(f.held) && f.held[i].to.Before(t) {
		i++
	}
	f.held = f.held[i:]
	if len(f.held) > 0 && !t.Before(f.held[0].from) {
		return true
	}
	return !f.since.IsZero() && !t.Before(f.since)
}
