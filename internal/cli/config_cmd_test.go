package cli

import (
	"testing"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.APIKey = "gsk_live"
	cfg.Voice.APIKey = ""

	out := redact(cfg)
	assert.Equal(t, redacted, out.LLM.APIKey)
	assert.Empty(t, out.Voice.APIKey)
	assert.Equal(t, "gsk_live", cfg.LLM.APIKey)
}

func TestPresence(t *testing.T) {
	assert.Equal(t, "missing", presence(""))
	assert.Equal(t, "set", presence("x"))
}
