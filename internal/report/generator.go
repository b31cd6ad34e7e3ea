package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/hooks"
	"github.com/soyeahso/evaluet/internal/jobs"
	"github.com/soyeahso/evaluet/internal/llm"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/soyeahso/evaluet/internal/prompt"
	"github.com/soyeahso/evaluet/internal/telemetry"
)

// ErrUnparseableReport means the model reply held no usable report object.
var ErrUnparseableReport = errors.New("report output could not be parsed")

// Repository is the persistence the generator needs.
type Repository interface {
	LoadSession(ctx context.Context, id string) (*domain.Session, error)
	SetStatus(ctx context.Context, id string, to domain.Status) error
	SaveReport(ctx context.Context, r domain.Report) error
}

// Generator produces one report per finished session.
type Generator struct {
	repo    Repository
	client  llm.Client
	cfg     config.LLMConfig
	roster  *domain.Roster
	hooks   *hooks.Manager
	metrics *telemetry.Recorder
	log     *logging.Logger
	now     func() time.Time
}

// NewGenerator creates a generator. roster, hooks and metrics may be nil.
func NewGenerator(repo Repository, client llm.Client, cfg config.LLMConfig, roster *domain.Roster, hm *hooks.Manager, metrics *telemetry.Recorder, log *logging.Logger) *Generator {
	return &Generator{
		repo:    repo,
		client:  client,
		cfg:     cfg,
		roster:  roster,
		hooks:   hm,
		metrics: metrics,
		log:     log.Sub("report"),
		now:     time.Now,
	}
}

// Generate evaluates a session's transcript and stores the report. Sessions
// that are already COMPLETED or FAILED are skipped and return (nil, nil).
// Any failure after loading marks the session FAILED.
func (g *Generator) Generate(ctx context.Context, sessionID string) (*domain.Report, error) {
	sess, err := g.repo.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess.Status.Terminal() {
		g.log.Info().Str("session", sessionID).Str("status", string(sess.Status)).Msg("report skipped")
		return nil, nil
	}

	transcript, err := FormatTranscript(sess.Transcript)
	if err != nil {
		return nil, g.fail(ctx, sessionID, err)
	}

	started := g.now()
	resp, err := g.client.Complete(ctx, llm.CompletionRequest{
		Model: g.cfg.ReportModel,
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: prompt.Report(prompt.ReportConfig{
				JobRole:          sess.JobRole,
				CandidateLevel:   sess.CandidateLevel,
				Transcript:       transcript,
				EvaluationPrompt: g.evaluationPrompt(sess),
			}),
		}},
		MaxTokens:   g.cfg.ReportMaxTokens,
		Temperature: llm.Temperature(g.cfg.ReportTemperature),
	})
	if err != nil {
		return nil, g.fail(ctx, sessionID, fmt.Errorf("report completion: %w", err))
	}

	result := Extract(resp.Content)
	if result == nil {
		g.log.Debug().Str("session", sessionID).Str("output", truncate(resp.Content, 500)).Msg("unparseable report output")
		return nil, g.fail(ctx, sessionID, ErrUnparseableReport)
	}

	rep := domain.Report{
		SessionID:   sessionID,
		Score:       domain.ClampScore(result.Score),
		Body:        result.Body,
		GeneratedAt: g.now().UTC(),
	}
	if err := g.repo.SaveReport(ctx, rep); err != nil {
		return nil, g.fail(ctx, sessionID, fmt.Errorf("saving report: %w", err))
	}
	if sess.Status != domain.StatusPendingReport {
		if err := g.repo.SetStatus(ctx, sessionID, domain.StatusPendingReport); err != nil {
			return nil, fmt.Errorf("marking pending: %w", err)
		}
	}
	if err := g.repo.SetStatus(ctx, sessionID, domain.StatusCompleted); err != nil {
		return nil, fmt.Errorf("marking completed: %w", err)
	}

	g.log.Info().
		Str("session", sessionID).
		Int("score", rep.Score).
		Dur("took", g.now().Sub(started)).
		Msg("report generated")
	g.metrics.Report(ctx, "completed")
	g.emit(ctx, hooks.EventReportReady, map[string]any{
		"sessionId":  sessionID,
		"score":      rep.Score,
		"reportBody": rep.Body,
	})
	return &rep, nil
}

// evaluationPrompt returns the session interviewer's evaluation focus. An
// interviewer removed from the catalog since the interview falls back to the
// neutral rubric.
func (g *Generator) evaluationPrompt(sess *domain.Session) string {
	if sess.InterviewerID == "" {
		return ""
	}
	iv, err := g.roster.Lookup(sess.InterviewerID)
	if err != nil {
		g.log.Warn().Err(err).Str("session", sess.ID).Msg("interviewer not in catalog, using neutral rubric")
		return ""
	}
	return iv.EvaluationPrompt
}

func (g *Generator) fail(ctx context.Context, sessionID string, cause error) error {
	g.log.Error().Err(cause).Str("session", sessionID).Msg("report generation failed")
	if err := g.repo.SetStatus(ctx, sessionID, domain.StatusFailed); err != nil {
		g.log.Warn().Err(err).Str("session", sessionID).Msg("could not mark session failed")
	}
	g.metrics.Report(ctx, "failed")
	g.emit(ctx, hooks.EventReportFailed, map[string]any{
		"sessionId": sessionID,
		"error":     cause.Error(),
	})
	return cause
}

func (g *Generator) emit(ctx context.Context, event string, data map[string]any) {
	if g.hooks != nil {
		g.hooks.Emit(ctx, event, data)
	}
}

// Job wraps report generation for one session as a queue job.
func (g *Generator) Job(sessionID string) jobs.Job {
	return jobs.Job{
		Name: "report:" + sessionID,
		Run: func(ctx context.Context) error {
			_, err := g.Generate(ctx, sessionID)
			return err
		},
	}
}

// Scheduler submits report jobs to a queue without blocking.
type Scheduler struct {
	Queue     *jobs.Queue
	Generator *Generator
}

// Schedule enqueues generation for sessionID. It reports false when the
// queue dropped the job.
func (s Scheduler) Schedule(sessionID string) bool {
	return s.Queue.Submit(s.Generator.Job(sessionID))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
