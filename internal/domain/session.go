// Package domain holds the interview data model shared by the runtime,
// the store and the report generator.
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status is the lifecycle state of an interview session.
type Status string

const (
	StatusActive        Status = "ACTIVE"
	StatusPendingReport Status = "PENDING_REPORT"
	StatusCompleted     Status = "COMPLETED"
	StatusFailed        Status = "FAILED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPendingReport, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further report processing happens in s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether a session may move from one status to another.
// Nothing ever moves back to ACTIVE. FAILED may be retried through PENDING_REPORT.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch to {
	case StatusActive:
		return false
	case StatusPendingReport:
		return from == StatusActive || from == StatusFailed
	case StatusCompleted:
		return from == StatusPendingReport
	case StatusFailed:
		return from == StatusActive || from == StatusPendingReport
	}
	return false
}

// CheckTransition is CanTransition as an error.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Role constants for transcript turns.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one appended entry in the dialogue history. Turns are never
// mutated after they are appended.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DialogueOnly returns the user and assistant turns of history, dropping the
// system prompt and any synthetic system instructions.
func DialogueOnly(history []Turn) []Turn {
	out := make([]Turn, 0, len(history))
	for _, t := range history {
		if t.Role == RoleUser || t.Role == RoleAssistant {
			out = append(out, t)
		}
	}
	return out
}

// Session is one interview: its context, system prompt and saved transcript.
type Session struct {
	ID             string    `json:"sessionId"`
	UserID         string    `json:"userId"`
	JobRole        string    `json:"jobRole"`
	JobDescription string    `json:"jobDescription,omitempty"`
	CandidateLevel string    `json:"candidateLevel,omitempty"`
	VoiceModel     string    `json:"voiceModel,omitempty"`
	InterviewerID  string    `json:"interviewerId,omitempty"`
	SystemPrompt   string    `json:"-"`
	Transcript     []Turn    `json:"transcript,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Utterance is a unit of transcribed candidate speech.
type Utterance struct {
	Text       string  `json:"text"`
	IsFinal    bool    `json:"isFinal"`
	Confidence float64 `json:"confidence,omitempty"`

	// ReceivedAt is when the transcriber delivered the utterance. Zero means
	// unknown and is treated as arriving while the interviewer was silent.
	ReceivedAt time.Time `json:"-"`
}
