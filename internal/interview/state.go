package interview

import (
	"sync"
	"sync/atomic"
)

// State is the runtime state shared by a session's ingress and conversation
// goroutines. Only the conversation side writes the speaking flag; ingress
// reads it to hold back microphone audio.
type State struct {
	speaking atomic.Bool
	once     sync.Once
	done     chan struct{}
}

// NewState returns a State with the assistant silent and no shutdown pending.
func NewState() *State {
	return &State{done: make(chan struct{})}
}

// AssistantSpeaking reports whether synthesized speech is being played.
func (s *State) AssistantSpeaking() bool { return s.speaking.Load() }

func (s *State) setSpeaking(v bool) { s.speaking.Store(v) }

// RequestShutdown signals both loops to stop. Safe to call repeatedly.
func (s *State) RequestShutdown() {
	s.once.Do(func() { close(s.done) })
}

// ShutdownRequested reports whether shutdown was signaled.
func (s *State) ShutdownRequested() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done is closed once shutdown is requested.
func (s *State) Done() <-chan struct{} { return s.done }
