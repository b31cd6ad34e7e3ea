package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateShouldAccept(t *testing.T) {
	g := Gate{MinWords: 2}

	tests := []struct {
		name     string
		text     string
		speaking bool
		want     bool
	}{
		{"two words", "I think", false, true},
		{"sentence", "I worked on distributed systems for five years", false, true},
		{"single word", "yes", false, false},
		{"empty", "", false, false},
		{"whitespace", "   \t ", false, false},
		{"speaking", "I worked on distributed systems", true, false},
		{"filler", "ok", false, false},
		{"question", "tell me about the role", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.ShouldAccept(tt.text, tt.speaking))
		})
	}
}

func TestGateZeroValueUsesDefault(t *testing.T) {
	var g Gate
	assert.False(t, g.ShouldAccept("hello", false))
	assert.True(t, g.ShouldAccept("hello there", false))
}

func TestIsInterruptIntent(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"yeah", false},
		{"  OK ", false},
		{"mm-hmm", false},
		{"", false},
		{"wait a second", true},
		{"could you repeat", true},
		{"actually I meant something quite different there", true},
		{"sorry to cut in but the question was unclear", true},
		{"I think I need to clarify the earlier answer here", true},
		{"the project used kafka for the event pipeline", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInterruptIntent(tt.text))
		})
	}
}
