package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Synthesizer renders text through the Deepgram speak endpoint with a fixed voice.
type Synthesizer struct {
	client *Client
	model  string
}

// Voice returns a synthesizer for the given voice model, falling back to the
// configured TTS model when model is empty.
func (c *Client) Voice(model string) *Synthesizer {
	if model == "" {
		model = c.cfg.TTSModel
	}
	return &Synthesizer{client: c, model: model}
}

// Synthesize returns the encoded audio for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	c := s.client

	u, err := url.Parse(c.cfg.BaseURL + "/v1/speak")
	if err != nil {
		return nil, fmt.Errorf("parse speak URL: %w", err)
	}
	q := u.Query()
	q.Set("model", s.model)
	if c.cfg.TTSEncoding != "" {
		q.Set("encoding", c.cfg.TTSEncoding)
	}
	if c.cfg.TTSContainer != "" {
		q.Set("container", c.cfg.TTSContainer)
	}
	u.RawQuery = q.Encode()

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal speak request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create speak request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speak request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speak response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
