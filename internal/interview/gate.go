package interview

import "strings"

// DefaultMinWords is the shortest utterance treated as a real turn.
const DefaultMinWords = 2

// Gate decides whether a final utterance becomes a user turn.
type Gate struct {
	MinWords int
}

// ShouldAccept rejects everything while the assistant is speaking, and
// fragments shorter than MinWords whitespace-separated words.
func (g Gate) ShouldAccept(text string, assistantSpeaking bool) bool {
	if assistantSpeaking {
		return false
	}
	need := g.MinWords
	if need <= 0 {
		need = DefaultMinWords
	}
	return len(strings.Fields(text)) >= need
}

var (
	backchannels = map[string]bool{
		"yeah": true, "yes": true, "right": true, "okay": true,
		"ok": true, "uh-huh": true, "mm-hmm": true,
	}
	interruptMarkers = []string{"wait", "hold", "stop", "sorry", "actually", "but", "so", "no", "listen"}
	turnClaims       = []string{"let me", "can i", "i want to", "i need to"}
)

// IsInterruptIntent classifies whether text spoken over the assistant is an
// attempt to take the floor. Filler acknowledgements are not; short
// fragments, discourse-marker openers and turn-claiming phrases are.
// It is advisory: the runtime only records it for utterances that arrive
// while the interviewer is speaking.
func IsInterruptIntent(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" || backchannels[t] {
		return false
	}
	if len(strings.Fields(t)) <= 4 {
		return true
	}
	for _, m := range interruptMarkers {
		if strings.HasPrefix(t, m) {
			return true
		}
	}
	for _, v := range turnClaims {
		if strings.Contains(t, v) {
			return true
		}
	}
	return false
}
