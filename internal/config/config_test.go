package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "loopback", cfg.Server.Bind)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 20*time.Minute, cfg.Interview.TimeLimit)
	assert.Equal(t, time.Second, cfg.Interview.PollInterval)
	assert.Equal(t, 2, cfg.Interview.MinWords)
	assert.Equal(t, 3, cfg.Interview.StrikeLimit)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 120, cfg.LLM.MaxTokens)
	assert.Equal(t, "nova-3", cfg.Voice.STTModel)
	assert.Equal(t, "aura-2-juno-en", cfg.Voice.TTSModel)
	assert.Equal(t, 5*time.Second, cfg.Voice.KeepAliveInterval)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	require.Len(t, cfg.Interviewers, 3)
	assert.Equal(t, "sarah", cfg.Interviewers[0].ID)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("DEEPGRAM_API_KEY", "dg-test")

	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "gsk-test", cfg.LLM.APIKey)
	assert.Equal(t, "dg-test", cfg.Voice.APIKey)
}

func TestLoadUnsetSecretExpandsEmpty(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoadBlankKeysFallBackToProviderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  apiKey: \"\"\nvoice:\n  apiKey: \"\"\n"), 0o600))
	t.Setenv("GROQ_API_KEY", "gsk-fallback")
	t.Setenv("DEEPGRAM_API_KEY", "dg-fallback")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gsk-fallback", cfg.LLM.APIKey)
	assert.Equal(t, "dg-fallback", cfg.Voice.APIKey)
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("MY_OPENAI_KEY", "sk-from-env")

	yaml := `
server:
  port: 9090
  bind: lan
  allowedOrigins: ["https://app.example.com"]
logging:
  level: debug
  consoleStyle: json
interview:
  timeLimit: 15m
  pollInterval: 500ms
  strikeLimit: 2
llm:
  provider: openai
  apiKey: ${MY_OPENAI_KEY}
  model: gpt-4o-mini
voice:
  apiKey: dg-inline
  keepAliveInterval: 3s
store:
  driver: memory
hooks:
  reportReady:
    - command: /usr/local/bin/deliver-report
      timeout: 5000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "lan", cfg.Server.Bind)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "debug", cfg.Logging.ConsoleLevel, "console level follows level when unset")
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
	assert.Equal(t, 15*time.Minute, cfg.Interview.TimeLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Interview.PollInterval)
	assert.Equal(t, 2, cfg.Interview.StrikeLimit)
	assert.Equal(t, 2, cfg.Interview.MinWords)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ReportModel)
	assert.Equal(t, "dg-inline", cfg.Voice.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Voice.KeepAliveInterval)
	assert.Equal(t, "memory", cfg.Store.Driver)
	require.Len(t, cfg.Hooks.ReportReady, 1)
	assert.Equal(t, 5000, cfg.Hooks.ReportReady[0].Timeout)
}

func TestLoadInterviewerCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
interviewers:
  - id: priya
    name: Priya
    voiceModel: aura-2-andromeda-en
    behaviorPrompt: Keep it brisk.
    evaluationPrompt: Weigh SQL fluency.
    focusAreas: Data modeling
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Interviewers, 1, "configured catalog replaces the defaults")

	roster, err := cfg.Roster()
	require.NoError(t, err)
	iv, err := roster.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "priya", iv.ID)
	assert.Equal(t, "aura-2-andromeda-en", iv.VoiceModel)
	assert.Equal(t, "Weigh SQL fluency.", iv.EvaluationPrompt)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EVALUET_PORT", "12345")
	t.Setenv("EVALUET_LOG_LEVEL", "TRACE")
	t.Setenv("EVALUET_DB_PATH", "/tmp/evaluet-test.db")
	t.Setenv("EVALUET_LLM_PROVIDER", "ollama")
	t.Setenv("EVALUET_TIME_LIMIT", "12m")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Server.Port)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "/tmp/evaluet-test.db", cfg.Store.Path)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 12*time.Minute, cfg.Interview.TimeLimit)
}

func TestLoadEnvProviderKeepsCustomBaseURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  baseUrl: http://gateway.internal/v1\n"), 0o600))
	t.Setenv("EVALUET_LLM_PROVIDER", "openai")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://gateway.internal/v1", cfg.LLM.BaseURL)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Server.Port = 9191
	cfg.Interview.TimeLimit = 12 * time.Minute

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, loaded.Server.Port)
	assert.Equal(t, 12*time.Minute, loaded.Interview.TimeLimit)
}

func TestResolvePaths(t *testing.T) {
	t.Setenv("EVALUET_HOME", "/srv/evaluet")

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, "/srv/evaluet", p.Base)
	assert.Equal(t, "/srv/evaluet/config.yaml", p.Config)
	assert.Equal(t, "/srv/evaluet/.env", p.Env)
	assert.Equal(t, "/srv/evaluet/data/evaluet.db", p.Database(StoreConfig{}))
	assert.Equal(t, "/var/lib/x.db", p.Database(StoreConfig{Path: "/var/lib/x.db"}))
}

func TestEnsureDirs(t *testing.T) {
	t.Setenv("EVALUET_HOME", filepath.Join(t.TempDir(), "home"))

	p, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, p.EnsureDirs())

	for _, d := range []string{p.Base, p.Data, p.Logs} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
