package report

import (
	"errors"
	"strings"

	"github.com/soyeahso/evaluet/internal/domain"
)

// ErrEmptyTranscript means a session has no dialogue to evaluate.
var ErrEmptyTranscript = errors.New("transcript is empty")

// FormatTranscript renders dialogue turns as speaker-labeled paragraphs.
func FormatTranscript(turns []domain.Turn) (string, error) {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		switch t.Role {
		case domain.RoleAssistant:
			lines = append(lines, "INTERVIEWER: "+content)
		case domain.RoleUser:
			lines = append(lines, "CANDIDATE: "+content)
		}
	}
	if len(lines) == 0 {
		return "", ErrEmptyTranscript
	}
	return strings.Join(lines, "\n\n"), nil
}
