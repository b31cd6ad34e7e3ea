package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables expand to the empty string so placeholders never reach a provider.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)
	cfg.LLM.BaseURL = expandEnvVars(cfg.LLM.BaseURL)
	cfg.Voice.APIKey = expandEnvVars(cfg.Voice.APIKey)
	cfg.Store.Path = expandEnvVars(cfg.Store.Path)
	cfg.Telemetry.Endpoint = expandEnvVars(cfg.Telemetry.Endpoint)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
		}
		followProvider(&cfg)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory if needed.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// followProvider resets provider-specific defaults when the file selects a
// different LLM provider but leaves its endpoint and report model alone.
func followProvider(cfg *Config) {
	d := Defaults()
	if cfg.LLM.Provider == d.LLM.Provider {
		return
	}
	if cfg.LLM.BaseURL == d.LLM.BaseURL {
		cfg.LLM.BaseURL = ""
	}
	if cfg.LLM.ReportModel == d.LLM.ReportModel {
		cfg.LLM.ReportModel = ""
	}
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	d := Defaults()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = d.Server.Bind
	}
	if cfg.Server.MaxFrameBytes == 0 {
		cfg.Server.MaxFrameBytes = d.Server.MaxFrameBytes
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.ConsoleLevel == "" {
		cfg.Logging.ConsoleLevel = cfg.Logging.Level
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = d.Logging.ConsoleStyle
	}

	iv := &cfg.Interview
	if iv.TimeLimit == 0 {
		iv.TimeLimit = d.Interview.TimeLimit
	}
	if iv.PollInterval == 0 {
		iv.PollInterval = d.Interview.PollInterval
	}
	if iv.MinWords == 0 {
		iv.MinWords = d.Interview.MinWords
	}
	if iv.StrikeLimit == 0 {
		iv.StrikeLimit = d.Interview.StrikeLimit
	}
	if iv.Greeting == "" {
		iv.Greeting = d.Interview.Greeting
	}
	if iv.FallbackReply == "" {
		iv.FallbackReply = d.Interview.FallbackReply
	}
	if iv.TimeUpInstruction == "" {
		iv.TimeUpInstruction = d.Interview.TimeUpInstruction
	}
	if iv.StrikeClosing == "" {
		iv.StrikeClosing = d.Interview.StrikeClosing
	}
	if iv.FinalizeTimeout == 0 {
		iv.FinalizeTimeout = d.Interview.FinalizeTimeout
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = d.LLM.Provider
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = ProviderBaseURL(cfg.LLM.Provider)
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = d.LLM.Model
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = d.LLM.MaxTokens
	}
	if cfg.LLM.ReportModel == "" {
		cfg.LLM.ReportModel = cfg.LLM.Model
	}
	if cfg.LLM.ReportMaxTokens == 0 {
		cfg.LLM.ReportMaxTokens = d.LLM.ReportMaxTokens
	}

	v := &cfg.Voice
	if v.BaseURL == "" {
		v.BaseURL = d.Voice.BaseURL
	}
	if v.StreamURL == "" {
		v.StreamURL = d.Voice.StreamURL
	}
	if v.STTModel == "" {
		v.STTModel = d.Voice.STTModel
	}
	if v.Language == "" {
		v.Language = d.Voice.Language
	}
	if v.TTSModel == "" {
		v.TTSModel = d.Voice.TTSModel
	}
	if v.TTSEncoding == "" {
		v.TTSEncoding = d.Voice.TTSEncoding
	}
	if v.KeepAliveInterval == 0 {
		v.KeepAliveInterval = d.Voice.KeepAliveInterval
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = d.Store.Driver
	}

	if cfg.Reports.Workers == 0 {
		cfg.Reports.Workers = d.Reports.Workers
	}
	if cfg.Reports.QueueSize == 0 {
		cfg.Reports.QueueSize = d.Reports.QueueSize
	}
	if cfg.Reports.Timeout == 0 {
		cfg.Reports.Timeout = d.Reports.Timeout
	}

	if cfg.Telemetry.Interval == 0 {
		cfg.Telemetry.Interval = d.Telemetry.Interval
	}

	if len(cfg.Interviewers) == 0 {
		cfg.Interviewers = d.Interviewers
	}
}

// applyEnvOverrides reads EVALUET_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EVALUET_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("EVALUET_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("EVALUET_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
		cfg.Logging.ConsoleLevel = cfg.Logging.Level
	}
	if v := os.Getenv("EVALUET_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("EVALUET_LLM_PROVIDER"); v != "" {
		v = strings.ToLower(v)
		// Follow the provider switch unless the endpoint was customized.
		if cfg.LLM.BaseURL == "" || cfg.LLM.BaseURL == ProviderBaseURL(cfg.LLM.Provider) {
			cfg.LLM.BaseURL = ProviderBaseURL(v)
		}
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("EVALUET_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider == "groq" {
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.Voice.APIKey == "" {
		cfg.Voice.APIKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if v := os.Getenv("EVALUET_TIME_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Interview.TimeLimit = d
		}
	}
}
