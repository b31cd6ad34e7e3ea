package deepgram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(base string) config.VoiceConfig {
	cfg := config.Defaults().Voice
	cfg.APIKey = "dg-key"
	cfg.BaseURL = base
	cfg.StreamURL = "ws" + strings.TrimPrefix(base, "http")
	return cfg
}

func newTestClient(base string) *Client {
	return New(testConfig(base), logging.New(nil, "silent"))
}

func results(text string, final bool) []byte {
	msg := map[string]any{
		"type":     "Results",
		"is_final": final,
		"channel": map[string]any{
			"alternatives": []map[string]any{{"transcript": text, "confidence": 0.9}},
		},
	}
	data, _ := json.Marshal(msg)
	return data
}

func TestListenDeliversFinalTranscripts(t *testing.T) {
	received := make(chan []byte, 4)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "nova-3", q.Get("model"))
		assert.Equal(t, "en-US", q.Get("language"))
		assert.Equal(t, "1200", q.Get("utterance_end_ms"))
		assert.Equal(t, "300", q.Get("endpointing"))
		assert.Equal(t, "true", q.Get("interim_results"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Metadata"}`))
		conn.WriteMessage(websocket.TextMessage, results("I have", false))
		conn.WriteMessage(websocket.TextMessage, results("", true))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, results("I have five years of Go.", true))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"UtteranceEnd"}`))
		conn.WriteMessage(websocket.TextMessage, results("Mostly backend work.", true))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- data
		}
	}))
	defer srv.Close()

	opened := time.Now()
	s, err := newTestClient(srv.URL).Listen(context.Background())
	require.NoError(t, err)
	defer s.Close()

	var got []string
	for len(got) < 2 {
		select {
		case u := <-s.Utterances():
			assert.True(t, u.IsFinal)
			assert.False(t, u.ReceivedAt.Before(opened), "stamped on arrival")
			got = append(got, u.Text)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for transcripts")
		}
	}
	assert.Equal(t, []string{"I have five years of Go.", "Mostly backend work."}, got)

	require.NoError(t, s.SendAudio([]byte{1, 2, 3}))
	require.NoError(t, s.KeepAlive())

	assert.Equal(t, []byte{1, 2, 3}, <-received)
	assert.JSONEq(t, `{"type":"KeepAlive"}`, string(<-received))

	require.NoError(t, s.Close())
	assert.JSONEq(t, `{"type":"CloseStream"}`, string(<-received))

	assert.NoError(t, s.Close(), "second close is a no-op")
	assert.ErrorIs(t, s.SendAudio([]byte{4}), ErrStreamClosed)
	assert.ErrorIs(t, s.KeepAlive(), ErrStreamClosed)

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not exit after close")
	}
	_, open := <-s.Utterances()
	assert.False(t, open)
}

func TestListenRejectedHandshake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Listen(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "invalid credentials")
}

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/speak", r.URL.Path)
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "linear16", q.Get("encoding"))
		assert.Equal(t, "wav", q.Get("container"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))

		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFF:" + q.Get("model") + ":" + req["text"]))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	audio, err := c.Voice("").Synthesize(context.Background(), "Hello there.")
	require.NoError(t, err)
	assert.Equal(t, "RIFF:aura-2-juno-en:Hello there.", string(audio))

	audio, err = c.Voice("aura-2-thalia-en").Synthesize(context.Background(), "Hi.")
	require.NoError(t, err)
	assert.Equal(t, "RIFF:aura-2-thalia-en:Hi.", string(audio))
}

func TestSynthesizeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"err_msg":"text too long"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Voice("").Synthesize(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "text too long")
}
