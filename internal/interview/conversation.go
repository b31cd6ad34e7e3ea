package interview

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/llm"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/soyeahso/evaluet/internal/telemetry"
	"github.com/soyeahso/evaluet/internal/voice"
)

// Conversation drives turn-taking for one session: it waits for candidate
// utterances, streams model replies through the segmenter and decides when
// the interview ends. It is owned by a single goroutine.
type Conversation struct {
	settings   Settings
	conn       ClientConn
	client     llm.Client
	seg        *voice.Segmenter
	state      *State
	clock      *Clock
	gate       Gate
	floor      *floor
	utterances <-chan domain.Utterance
	strike     StrikeClassifier
	metrics    *telemetry.Recorder
	log        *logging.Logger

	history []domain.Turn
}

// Greet speaks the opening line and records it as the first assistant turn.
func (c *Conversation) Greet(ctx context.Context, text string) {
	c.send(TranscriptEvent{Type: eventTranscript, Role: domain.RoleAssistant, Content: text})
	c.speakText(ctx, text)
	c.append(ctx, domain.RoleAssistant, text)
}

// Run loops until the interview ends and returns why. The clock is always
// ended when Run returns.
func (c *Conversation) Run(ctx context.Context) EndReason {
	poll := c.settings.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	timer := time.NewTimer(poll)
	defer timer.Stop()

	for {
		if c.state.ShutdownRequested() {
			return c.stopped()
		}
		timer.Reset(poll)

		select {
		case <-c.state.Done():
			return c.stopped()

		case <-ctx.Done():
			c.clock.End(EndClientDisconnect)
			return c.clock.Reason()

		case u, ok := <-c.utterances:
			if !ok {
				c.log.Warn().Msg("transcriber stream ended")
				c.clock.End(EndTranscriberLost)
				return c.clock.Reason()
			}
			if reason, done := c.turn(ctx, u); done {
				return reason
			}

		case <-timer.C:
			if c.clock.CheckExpiry() {
				c.timeUp(ctx)
				return c.clock.Reason()
			}
		}
	}
}

// History returns a copy of the full dialogue, system turns included.
func (c *Conversation) History() []domain.Turn {
	return slices.Clone(c.history)
}

func (c *Conversation) setSpeaking(v bool) {
	c.state.setSpeaking(v)
	c.floor.set(v)
}

func (c *Conversation) stopped() EndReason {
	c.clock.End(EndClientRequest)
	return c.clock.Reason()
}

func (c *Conversation) turn(ctx context.Context, u domain.Utterance) (EndReason, bool) {
	text := strings.TrimSpace(u.Text)
	held := c.floor.heldAt(u.ReceivedAt)
	if !c.gate.ShouldAccept(text, held) {
		if held {
			interrupt := IsInterruptIntent(text)
			c.log.Debug().Str("text", text).Bool("interrupt", interrupt).Msg("utterance spoken over the interviewer, discarded")
			c.metrics.TalkOver(ctx, interrupt)
		} else {
			c.log.Debug().Str("text", text).Msg("utterance discarded")
		}
		return "", false
	}

	c.send(TranscriptEvent{Type: eventTranscript, Role: domain.RoleUser, Content: text})
	c.append(ctx, domain.RoleUser, text)

	if c.strike != nil && c.strike(text) {
		n, limit := c.clock.AddStrike()
		c.log.Info().Int("strikes", n).Msg("strike recorded")
		if limit {
			closing := strings.TrimSpace(c.settings.StrikeClosing + " " + EndToken)
			c.reply(ctx, c.speakText(ctx, closing))
			return c.clock.Reason(), true
		}
	}

	reply := c.respond(ctx)
	c.reply(ctx, reply)

	if HasEndToken(reply) {
		c.clock.End(EndModelToken)
		return c.clock.Reason(), true
	}
	return "", false
}

func (c *Conversation) timeUp(ctx context.Context) {
	c.log.Info().Dur("elapsed", c.clock.Elapsed()).Msg("time limit reached")
	c.history = append(c.history, domain.Turn{Role: domain.RoleSystem, Content: c.settings.TimeUpInstruction})
	c.reply(ctx, c.respond(ctx))
	c.clock.End(EndTimeExpired)
}

// respond streams one model reply over the full history and speaks it.
func (c *Conversation) respond(ctx context.Context) string {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := llm.CompletionRequest{
		Model:       c.settings.Model,
		Messages:    toMessages(c.history),
		MaxTokens:   c.settings.MaxTokens,
		Temperature: llm.Temperature(c.settings.Temperature),
	}
	tokens := llm.Tokens(turnCtx, c.client, req, c.settings.FallbackReply, func(err error) {
		var pe *llm.ProviderError
		c.log.Warn().Err(err).Bool("retryable", errors.As(err, &pe) && pe.Retryable()).Msg("model reply failed, using fallback")
		c.metrics.LLMFallback(ctx)
	})
	return c.speak(turnCtx, tokens)
}

func (c *Conversation) speakText(ctx context.Context, text string) string {
	tokens := make(chan string, 1)
	tokens <- text
	close(tokens)
	return c.speak(ctx, tokens)
}

// speak plays every unit to the client and returns the sanitized reply.
func (c *Conversation) speak(ctx context.Context, tokens <-chan string) string {
	var raw strings.Builder
	for u := range c.seg.Units(ctx, tokens) {
		raw.WriteString(u.Text)
		if u.Err != nil {
			c.metrics.SynthesisFailed(ctx)
		}
		if len(u.Audio) > 0 {
			if err := c.conn.WriteAudio(u.Audio); err != nil {
				c.log.Debug().Err(err).Msg("audio write failed")
			}
		}
	}
	return Sanitize(raw.String())
}

func (c *Conversation) reply(ctx context.Context, text string) {
	if text == "" {
		return
	}
	c.send(TranscriptEvent{Type: eventTranscript, Role: domain.RoleAssistant, Content: text})
	c.append(ctx, domain.RoleAssistant, text)
}

func (c *Conversation) append(ctx context.Context, role, content string) {
	c.history = append(c.history, domain.Turn{Role: role, Content: content})
	c.metrics.Turn(ctx, role)
}

func (c *Conversation) send(v any) {
	if err := c.conn.WriteJSON(v); err != nil {
		c.log.Debug().Err(err).Msg("event write failed")
	}
}

func toMessages(history []domain.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(history))
	for _, t := range history {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}
