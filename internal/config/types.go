package config

import (
	"time"

	"github.com/soyeahso/evaluet/internal/domain"
)

// Config is the root configuration for evaluet.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Interview InterviewConfig `yaml:"interview,omitempty"`
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Voice     VoiceConfig     `yaml:"voice,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Reports   ReportsConfig   `yaml:"reports,omitempty"`
	Hooks     HooksConfig     `yaml:"hooks,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`

	Interviewers []domain.Interviewer `yaml:"interviewers,omitempty"`
}

// ServerConfig controls the HTTP API and the interview websocket.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	MaxFrameBytes  int64    `yaml:"maxFrameBytes,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleLevel string `yaml:"consoleLevel,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// InterviewConfig tunes the live session runtime.
type InterviewConfig struct {
	TimeLimit         time.Duration `yaml:"timeLimit,omitempty"`
	PollInterval      time.Duration `yaml:"pollInterval,omitempty"`
	MinWords          int           `yaml:"minWords,omitempty"`
	StrikeLimit       int           `yaml:"strikeLimit,omitempty"`
	Greeting          string        `yaml:"greeting,omitempty"` // {role} is replaced with the job role
	FallbackReply     string        `yaml:"fallbackReply,omitempty"`
	TimeUpInstruction string        `yaml:"timeUpInstruction,omitempty"`
	StrikeClosing     string        `yaml:"strikeClosing,omitempty"`
	FinalizeTimeout   time.Duration `yaml:"finalizeTimeout,omitempty"`
}

// LLMConfig selects the OpenAI-compatible chat provider.
type LLMConfig struct {
	Provider          string  `yaml:"provider,omitempty"` // "groq" | "openai" | "ollama"
	APIKey            string  `yaml:"apiKey,omitempty"`
	BaseURL           string  `yaml:"baseUrl,omitempty"`
	Model             string  `yaml:"model,omitempty"`
	Temperature       float64 `yaml:"temperature,omitempty"`
	MaxTokens         int     `yaml:"maxTokens,omitempty"`
	ReportModel       string  `yaml:"reportModel,omitempty"`
	ReportTemperature float64 `yaml:"reportTemperature,omitempty"`
	ReportMaxTokens   int     `yaml:"reportMaxTokens,omitempty"`
}

// VoiceConfig configures the Deepgram transcription and synthesis services.
type VoiceConfig struct {
	APIKey            string        `yaml:"apiKey,omitempty"`
	BaseURL           string        `yaml:"baseUrl,omitempty"` // REST base, e.g. https://api.deepgram.com
	StreamURL         string        `yaml:"streamUrl,omitempty"`
	STTModel          string        `yaml:"sttModel,omitempty"`
	Language          string        `yaml:"language,omitempty"`
	UtteranceEndMs    int           `yaml:"utteranceEndMs,omitempty"`
	EndpointingMs     int           `yaml:"endpointingMs,omitempty"`
	Encoding          string        `yaml:"encoding,omitempty"`
	SampleRate        int           `yaml:"sampleRate,omitempty"`
	TTSModel          string        `yaml:"ttsModel,omitempty"`
	TTSEncoding       string        `yaml:"ttsEncoding,omitempty"`
	TTSContainer      string        `yaml:"ttsContainer,omitempty"`
	KeepAliveInterval time.Duration `yaml:"keepAliveInterval,omitempty"`
}

// StoreConfig selects the session repository.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" | "memory"
	Path   string `yaml:"path,omitempty"`
}

// ReportsConfig sizes the background report queue.
type ReportsConfig struct {
	Workers   int           `yaml:"workers,omitempty"`
	QueueSize int           `yaml:"queueSize,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// HooksConfig lists commands run on lifecycle events.
type HooksConfig struct {
	SessionEnd   []HookEntry `yaml:"sessionEnd,omitempty"`
	ReportReady  []HookEntry `yaml:"reportReady,omitempty"`
	ReportFailed []HookEntry `yaml:"reportFailed,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Timeout int      `yaml:"timeout,omitempty"` // milliseconds
}

// TelemetryConfig controls OTLP metric export.
type TelemetryConfig struct {
	Enabled  bool          `yaml:"enabled,omitempty"`
	Endpoint string        `yaml:"endpoint,omitempty"`
	Insecure bool          `yaml:"insecure,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}
