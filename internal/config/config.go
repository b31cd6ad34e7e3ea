package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultPort         = 8000
	DefaultTimeLimit    = 20 * time.Minute
	DefaultPollInterval = time.Second
)

// providerBaseURLs maps LLM provider names to their OpenAI-compatible endpoints.
var providerBaseURLs = map[string]string{
	"groq":   "https://api.groq.com/openai/v1",
	"openai": "https://api.openai.com/v1",
	"ollama": "http://localhost:11434/v1",
}

// ProviderBaseURL returns the default endpoint for an LLM provider name.
func ProviderBaseURL(provider string) string {
	return providerBaseURLs[provider]
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:          DefaultPort,
			Bind:          "loopback",
			MaxFrameBytes: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleLevel: "info",
			ConsoleStyle: "pretty",
		},
		Interview: InterviewConfig{
			TimeLimit:         DefaultTimeLimit,
			PollInterval:      DefaultPollInterval,
			MinWords:          2,
			StrikeLimit:       3,
			Greeting:          "Hello! You're applying for the {role} role. Please introduce yourself.",
			FallbackReply:     "I am having trouble thinking right now.",
			TimeUpInstruction: "SYSTEM: Time is up",
			StrikeClosing:     "I don't think we can continue productively. Thank you for your time.",
			FinalizeTimeout:   10 * time.Second,
		},
		LLM: LLMConfig{
			Provider:          "groq",
			APIKey:            "${GROQ_API_KEY}",
			BaseURL:           providerBaseURLs["groq"],
			Model:             "llama-3.1-8b-instant",
			Temperature:       0.5,
			MaxTokens:         120,
			ReportModel:       "llama-3.3-70b-versatile",
			ReportTemperature: 0.4,
			ReportMaxTokens:   2048,
		},
		Voice: VoiceConfig{
			APIKey:            "${DEEPGRAM_API_KEY}",
			BaseURL:           "https://api.deepgram.com",
			StreamURL:         "wss://api.deepgram.com",
			STTModel:          "nova-3",
			Language:          "en-US",
			UtteranceEndMs:    1200,
			EndpointingMs:     300,
			TTSModel:          "aura-2-juno-en",
			TTSEncoding:       "linear16",
			TTSContainer:      "wav",
			KeepAliveInterval: 5 * time.Second,
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		Reports: ReportsConfig{
			Workers:   2,
			QueueSize: 64,
			Timeout:   2 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Endpoint: "localhost:4317",
			Insecure: true,
			Interval: 30 * time.Second,
		},
		Interviewers: DefaultInterviewers(),
	}
}
