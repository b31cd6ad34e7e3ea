package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/domain"
)

// Close codes sent to the client socket.
const (
	CloseNormal          = 1000
	ClosePolicyViolation = 1008
	CloseInternalError   = 1011
)

// Transcriber is a live speech-to-text stream for one session. Utterances
// carries final transcripts and closes when the stream ends.
type Transcriber interface {
	SendAudio(data []byte) error
	KeepAlive() error
	Utterances() <-chan domain.Utterance
	Close() error
}

// TranscriberFactory opens a transcriber for a new session.
type TranscriberFactory func(ctx context.Context) (Transcriber, error)

// Repository is the persistence the runtime needs.
type Repository interface {
	LoadSession(ctx context.Context, id string) (*domain.Session, error)
	SaveTranscript(ctx context.Context, id string, transcript []domain.Turn) error
}

// ReportScheduler queues report generation for a finished session. It must
// not block.
type ReportScheduler interface {
	Schedule(sessionID string) bool
}

// Frame is one message read from the client socket.
type Frame struct {
	Binary bool
	Data   []byte
}

// ClientConn is the candidate's socket. Read is called from one goroutine;
// writes and Close may be called concurrently.
type ClientConn interface {
	Read() (Frame, error)
	WriteAudio(data []byte) error
	WriteJSON(v any) error
	Close(code int, reason string) error
}

// TranscriptEvent is sent for every turn appended to the dialogue.
type TranscriptEvent struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ControlEvent ends the interview on either side of the socket.
type ControlEvent struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

const (
	eventTranscript = "transcript"
	eventControl    = "control"
	actionEnd       = "END_INTERVIEW"
)

// ErrSessionNotActive is returned when a socket attaches to a finished session.
var ErrSessionNotActive = errors.New("session is not active")

// Settings tunes one session's runtime.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int

	TimeLimit         time.Duration
	PollInterval      time.Duration
	MinWords          int
	StrikeLimit       int
	Greeting          string
	FallbackReply     string
	TimeUpInstruction string
	StrikeClosing     string
	FinalizeTimeout   time.Duration
	KeepAliveInterval time.Duration
}

// SettingsFromConfig collects runtime settings from the loaded config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		TimeLimit:         cfg.Interview.TimeLimit,
		PollInterval:      cfg.Interview.PollInterval,
		MinWords:          cfg.Interview.MinWords,
		StrikeLimit:       cfg.Interview.StrikeLimit,
		Greeting:          cfg.Interview.Greeting,
		FallbackReply:     cfg.Interview.FallbackReply,
		TimeUpInstruction: cfg.Interview.TimeUpInstruction,
		StrikeClosing:     cfg.Interview.StrikeClosing,
		FinalizeTimeout:   cfg.Interview.FinalizeTimeout,
		KeepAliveInterval: cfg.Voice.KeepAliveInterval,
	}
}

// GreetingFor fills the greeting template for a job role.
func (s Settings) GreetingFor(role string) string {
	return strings.ReplaceAll(s.Greeting, "{role}", role)
}
