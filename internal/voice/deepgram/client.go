// Package deepgram implements live transcription and speech synthesis against
// the Deepgram API.
package deepgram

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/logging"
)

// APIError is returned when Deepgram answers with a non-success status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deepgram: status %d: %s", e.Status, e.Body)
}

// Client holds credentials and options shared by the STT and TTS paths.
type Client struct {
	cfg  config.VoiceConfig
	http *http.Client
	log  *logging.Logger
}

// New creates a Deepgram client from voice config.
func New(cfg config.VoiceConfig, log *logging.Logger) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	cfg.StreamURL = strings.TrimSuffix(cfg.StreamURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

func (c *Client) authHeader() string {
	return "Token " + c.cfg.APIKey
}
