package domain

import "time"

// Score bounds for interview reports.
const (
	MinScore = 1
	MaxScore = 10
)

// Report is the structured evaluation derived once from a saved transcript.
type Report struct {
	SessionID   string    `json:"sessionId"`
	Score       int       `json:"score"`
	Body        string    `json:"reportBody"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ClampScore forces a score into the 1-10 range.
func ClampScore(score int) int {
	return max(MinScore, min(MaxScore, score))
}
