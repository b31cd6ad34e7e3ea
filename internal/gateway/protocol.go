package gateway

import (
	"time"

	"github.com/soyeahso/evaluet/internal/domain"
)

// CreateInterviewRequest starts a new interview session.
type CreateInterviewRequest struct {
	UserID         string `json:"userId"`
	JobRole        string `json:"jobRole"`
	JobDescription string `json:"jobDescription,omitempty"`
	CandidateLevel string `json:"candidateLevel,omitempty"`
	ResumeText     string `json:"resumeText,omitempty"`
	VoiceModel     string `json:"voiceModel,omitempty"`
	InterviewerID  string `json:"interviewerId,omitempty"`
}

// InterviewerResponse is the public view of a catalog interviewer. Prompts
// and the voice model stay server-side.
type InterviewerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FocusAreas  string `json:"focusAreas,omitempty"`
}

// CreateInterviewResponse tells the client where to open the audio socket.
type CreateInterviewResponse struct {
	SessionID string `json:"sessionId"`
	WSURL     string `json:"wsUrl"`
}

// InterviewResponse describes a stored session and its report, if any.
type InterviewResponse struct {
	SessionID      string         `json:"sessionId"`
	UserID         string         `json:"userId,omitempty"`
	JobRole        string         `json:"jobRole"`
	CandidateLevel string         `json:"candidateLevel,omitempty"`
	InterviewerID  string         `json:"interviewerId,omitempty"`
	Status         domain.Status  `json:"status"`
	Turns          int            `json:"turns"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Report         *domain.Report `json:"report,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Sessions int    `json:"sessions"`
}

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

func interviewSocketPath(sessionID string) string {
	return "/ws/interview/" + sessionID
}
