package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"
	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/hooks"
	"github.com/soyeahso/evaluet/internal/llm"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/soyeahso/evaluet/internal/telemetry"
	"github.com/soyeahso/evaluet/internal/voice"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Repo    Repository
	LLM     llm.Client
	Listen  TranscriberFactory
	Voice   func(model string) voice.Synthesizer
	Reports ReportScheduler
	Hooks   *hooks.Manager
	Metrics *telemetry.Recorder
	Strike  StrikeClassifier
}

// Runtime runs live interview sessions over client sockets.
type Runtime struct {
	deps     Deps
	settings Settings
	log      *logging.Logger
}

// NewRuntime creates a runtime. Reports, Hooks, Metrics and Strike may be nil.
func NewRuntime(deps Deps, settings Settings, log *logging.Logger) *Runtime {
	return &Runtime{deps: deps, settings: settings, log: log.Sub("interview")}
}

// Serve runs one session to completion on conn. It closes conn, persists the
// dialogue once and schedules the report before returning. ctx should not be
// tied to the client connection.
func (r *Runtime) Serve(ctx context.Context, sessionID string, conn ClientConn) (EndReason, error) {
	log := r.log.With("session", sessionID).With("conn", uuid.NewString()[:8])

	sess, err := r.deps.Repo.LoadSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			conn.Close(ClosePolicyViolation, "Invalid session")
		} else {
			conn.Close(CloseInternalError, "Session unavailable")
		}
		return "", fmt.Errorf("loading session: %w", err)
	}
	if sess.Status != domain.StatusActive {
		conn.Close(ClosePolicyViolation, "Session is not active")
		return "", fmt.Errorf("%w: %s", ErrSessionNotActive, sess.Status)
	}

	stt, err := r.deps.Listen(ctx)
	if err != nil {
		log.Error().Err(err).Msg("transcriber connect failed")
		conn.Close(CloseInternalError, "Transcriber connection failed")
		return "", fmt.Errorf("opening transcriber: %w", err)
	}
	defer stt.Close()

	state := NewState()
	conv := r.newConversation(sess, conn, stt, state, log)

	r.deps.Metrics.SessionStarted(ctx)
	r.emit(ctx, hooks.EventSessionStart, map[string]any{"sessionId": sessionID, "jobRole": sess.JobRole})
	log.Info().Str("role", sess.JobRole).Msg("interview started")

	conv.Greet(ctx, r.settings.GreetingFor(sess.JobRole))
	// The time limit counts from the end of the greeting.
	conv.clock = NewClock(r.settings.TimeLimit, r.settings.StrikeLimit)

	var reason EndReason
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runIngress(conn, stt, state, conv.clock, log)
		return nil
	})
	g.Go(func() error {
		reason = conv.Run(gctx)
		state.RequestShutdown()
		if reason != EndClientDisconnect {
			if err := conn.WriteJSON(ControlEvent{Type: eventControl, Action: actionEnd, Reason: string(reason)}); err != nil {
				log.Debug().Err(err).Msg("control event not delivered")
			}
		}
		conn.Close(CloseNormal, "Interview ended")
		return nil
	})
	_ = g.Wait()

	elapsed := conv.clock.Elapsed()
	turns := domain.DialogueOnly(conv.History())
	log.Info().Str("reason", string(reason)).Int("turns", len(turns)).Dur("elapsed", elapsed).Msg("interview ended")

	r.finalize(ctx, sessionID, turns, log)

	r.deps.Metrics.SessionEnded(ctx, string(reason), elapsed)
	r.emit(ctx, hooks.EventSessionEnd, map[string]any{
		"sessionId": sessionID,
		"reason":    string(reason),
		"turns":     len(turns),
		"elapsedMs": elapsed.Milliseconds(),
	})
	return reason, nil
}

func (r *Runtime) newConversation(sess *domain.Session, conn ClientConn, stt Transcriber, state *State, log *logging.Logger) *Conversation {
	var history []domain.Turn
	if sess.SystemPrompt != "" {
		history = append(history, domain.Turn{Role: domain.RoleSystem, Content: sess.SystemPrompt})
	}

	c := &Conversation{
		settings:   r.settings,
		conn:       conn,
		client:     r.deps.LLM,
		state:      state,
		gate:       Gate{MinWords: r.settings.MinWords},
		floor:      newFloor(),
		utterances: stt.Utterances(),
		strike:     r.deps.Strike,
		metrics:    r.deps.Metrics,
		log:        log,
		history:    history,
	}
	c.seg = voice.NewSegmenter(r.deps.Voice(sess.VoiceModel), voice.SegmenterConfig{
		Prober:            stt,
		KeepAliveInterval: r.settings.KeepAliveInterval,
		OnSpeaking:        c.setSpeaking,
		Speakable:         Speakable,
		Hold:              OpenSpan,
	}, log)
	return c
}

// finalize writes the dialogue once and queues the report. It runs after the
// socket is gone, so it gets its own deadline.
func (r *Runtime) finalize(ctx context.Context, sessionID string, turns []domain.Turn, log *logging.Logger) {
	timeout := r.settings.FinalizeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := r.deps.Repo.SaveTranscript(fctx, sessionID, turns); err != nil {
		log.Error().Err(err).Msg("saving transcript failed")
		return
	}
	if r.deps.Reports == nil {
		return
	}
	if !r.deps.Reports.Schedule(sessionID) {
		log.Warn().Msg("report job not queued")
	}
}

func (r *Runtime) emit(ctx context.Context, event string, data map[string]any) {
	if r.deps.Hooks != nil {
		r.deps.Hooks.EmitAsync(context.WithoutCancel(ctx), event, data)
	}
}
