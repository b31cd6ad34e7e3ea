package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/logging"
)

// ErrStreamClosed is returned when writing to a closed transcription stream.
var ErrStreamClosed = errors.New("deepgram: stream closed")

var (
	keepAliveMsg   = []byte(`{"type":"KeepAlive"}`)
	closeStreamMsg = []byte(`{"type":"CloseStream"}`)
)

// Stream is a live transcription session. Audio goes in through SendAudio;
// final transcripts come out of Utterances.
type Stream struct {
	conn       *websocket.Conn
	utterances chan domain.Utterance
	done       chan struct{}
	closed     atomic.Bool
	writeMu    sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	log        *logging.Logger
}

// listenURL builds the /v1/listen endpoint with the configured live options.
func (c *Client) listenURL() (string, error) {
	u, err := url.Parse(c.cfg.StreamURL + "/v1/listen")
	if err != nil {
		return "", fmt.Errorf("parse stream URL: %w", err)
	}

	q := u.Query()
	q.Set("model", c.cfg.STTModel)
	q.Set("language", c.cfg.Language)
	q.Set("smart_format", "true")
	q.Set("interim_results", "true")
	q.Set("filler_words", "true")
	q.Set("vad_events", "true")
	if c.cfg.UtteranceEndMs > 0 {
		q.Set("utterance_end_ms", strconv.Itoa(c.cfg.UtteranceEndMs))
	}
	if c.cfg.EndpointingMs > 0 {
		q.Set("endpointing", strconv.Itoa(c.cfg.EndpointingMs))
	}
	if c.cfg.Encoding != "" {
		q.Set("encoding", c.cfg.Encoding)
	}
	if c.cfg.SampleRate > 0 {
		q.Set("sample_rate", strconv.Itoa(c.cfg.SampleRate))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Listen opens a live transcription stream. The stream lives until Close is
// called or ctx is canceled.
func (c *Client) Listen(ctx context.Context) (*Stream, error) {
	endpoint, err := c.listenURL()
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", c.authHeader())

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, endpoint, headers)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
		}
		return nil, fmt.Errorf("deepgram connect: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		conn:       conn,
		utterances: make(chan domain.Utterance, 100),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		log:        c.log.Sub("stt"),
	}
	go s.readLoop()

	s.log.Info().Str("model", c.cfg.STTModel).Msg("transcription stream opened")
	return s, nil
}

// liveMessage is the subset of a Deepgram live response the runtime needs.
type liveMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (s *Stream) readLoop() {
	defer func() {
		close(s.utterances)
		close(s.done)
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Msg("transcription stream read failed")
			}
			return
		}

		var msg liveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug().Err(err).Msg("ignoring malformed transcription message")
			continue
		}
		if msg.Type != "Results" || !msg.IsFinal || len(msg.Channel.Alternatives) == 0 {
			continue
		}
		alt := msg.Channel.Alternatives[0]
		if alt.Transcript == "" {
			continue
		}

		s.log.Debug().Str("text", alt.Transcript).Msg("final transcript")
		select {
		case s.utterances <- domain.Utterance{Text: alt.Transcript, IsFinal: true, Confidence: alt.Confidence, ReceivedAt: time.Now()}:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Stream) write(msgType int, data []byte) error {
	if s.closed.Load() {
		return ErrStreamClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(msgType, data)
}

// SendAudio forwards one chunk of candidate audio.
func (s *Stream) SendAudio(data []byte) error {
	return s.write(websocket.BinaryMessage, data)
}

// KeepAlive tells Deepgram the stream is idle but still wanted.
func (s *Stream) KeepAlive() error {
	return s.write(websocket.TextMessage, keepAliveMsg)
}

// Utterances returns final transcripts in arrival order. The channel closes
// when the stream ends.
func (s *Stream) Utterances() <-chan domain.Utterance {
	return s.utterances
}

// Done is closed once the read loop exits.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Close ends the stream. Only the first call has any effect.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()

	s.writeMu.Lock()
	s.conn.WriteMessage(websocket.TextMessage, closeStreamMsg)
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()

	s.log.Info().Msg("transcription stream closed")
	return s.conn.Close()
}
