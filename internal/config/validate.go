package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}
	oneOf := func(path, value string, valid []string) {
		if value != "" && !slices.Contains(valid, value) {
			add(path, "must be one of %v, got %q", valid, value)
		}
	}

	// Server
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		add("server.port", "port must be 0-65535, got %d", cfg.Server.Port)
	}
	oneOf("server.bind", cfg.Server.Bind, []string{"loopback", "lan", "custom"})
	if cfg.Server.MaxFrameBytes < 0 {
		add("server.maxFrameBytes", "must not be negative")
	}

	// Logging
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	oneOf("logging.level", cfg.Logging.Level, validLogLevels)
	oneOf("logging.consoleLevel", cfg.Logging.ConsoleLevel, validLogLevels)
	oneOf("logging.consoleStyle", cfg.Logging.ConsoleStyle, []string{"pretty", "compact", "json"})

	// Interview
	iv := cfg.Interview
	if iv.TimeLimit <= 0 {
		add("interview.timeLimit", "must be positive, got %s", iv.TimeLimit)
	}
	if iv.PollInterval <= 0 {
		add("interview.pollInterval", "must be positive, got %s", iv.PollInterval)
	} else if iv.TimeLimit > 0 && iv.PollInterval > iv.TimeLimit {
		add("interview.pollInterval", "must not exceed timeLimit")
	}
	if iv.MinWords < 1 {
		add("interview.minWords", "must be at least 1, got %d", iv.MinWords)
	}
	if iv.StrikeLimit < 1 {
		add("interview.strikeLimit", "must be at least 1, got %d", iv.StrikeLimit)
	}

	// LLM
	oneOf("llm.provider", cfg.LLM.Provider, []string{"groq", "openai", "ollama"})
	if cfg.LLM.Provider != "ollama" && cfg.LLM.APIKey == "" {
		add("llm.apiKey", "required for provider %q (set GROQ_API_KEY or llm.apiKey)", cfg.LLM.Provider)
	}
	if cfg.LLM.BaseURL == "" {
		add("llm.baseUrl", "required")
	}
	if cfg.LLM.Model == "" {
		add("llm.model", "required")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		add("llm.temperature", "must be 0-2, got %g", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens < 0 {
		add("llm.maxTokens", "must not be negative")
	}

	// Voice
	if cfg.Voice.APIKey == "" {
		add("voice.apiKey", "required (set DEEPGRAM_API_KEY or voice.apiKey)")
	}
	if cfg.Voice.KeepAliveInterval <= 0 {
		add("voice.keepAliveInterval", "must be positive, got %s", cfg.Voice.KeepAliveInterval)
	}

	// Store
	oneOf("store.driver", cfg.Store.Driver, []string{"sqlite", "memory"})

	// Reports
	if cfg.Reports.Workers < 1 {
		add("reports.workers", "must be at least 1, got %d", cfg.Reports.Workers)
	}
	if cfg.Reports.QueueSize < 1 {
		add("reports.queueSize", "must be at least 1, got %d", cfg.Reports.QueueSize)
	}

	// Hooks
	for name, entries := range map[string][]HookEntry{
		"sessionEnd":   cfg.Hooks.SessionEnd,
		"reportReady":  cfg.Hooks.ReportReady,
		"reportFailed": cfg.Hooks.ReportFailed,
	} {
		for i, e := range entries {
			if e.Command == "" {
				add(fmt.Sprintf("hooks.%s[%d].command", name, i), "command is required")
			}
		}
	}

	// Interviewers
	if _, err := cfg.Roster(); err != nil {
		add("interviewers", "%v", err)
	}
	for i, iv := range cfg.Interviewers {
		if iv.BehaviorPrompt == "" {
			add(fmt.Sprintf("interviewers[%d].behaviorPrompt", i), "required")
		}
	}

	// Telemetry
	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		add("telemetry.endpoint", "required when telemetry is enabled")
	}

	return issues
}
