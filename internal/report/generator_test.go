package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/domain"
	"github.com/soyeahso/evaluet/internal/hooks"
	"github.com/soyeahso/evaluet/internal/jobs"
	"github.com/soyeahso/evaluet/internal/llm"
	"github.com/soyeahso/evaluet/internal/logging"
	"github.com/soyeahso/evaluet/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	event string
	data  map[string]any
}

type fixture struct {
	repo   *store.MemoryRepository
	client *llm.MockClient
	gen    *Generator

	mu     sync.Mutex
	events []recordedEvent
	reqs   []llm.CompletionRequest
}

func newFixture(t *testing.T, reply string, replyErr error) *fixture {
	t.Helper()
	log := logging.New(nil, "silent")
	f := &fixture{repo: store.NewMemoryRepository()}
	f.client = &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			f.mu.Lock()
			f.reqs = append(f.reqs, req)
			f.mu.Unlock()
			if replyErr != nil {
				return nil, replyErr
			}
			return &llm.CompletionResponse{Content: reply}, nil
		},
	}

	hm := hooks.NewManager(log)
	for _, ev := range []string{hooks.EventReportReady, hooks.EventReportFailed} {
		hm.On(ev, "recorder", func(_ context.Context, p hooks.Payload) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.events = append(f.events, recordedEvent{event: p.Event, data: p.Data})
			return nil
		})
	}

	roster, err := domain.NewRoster([]domain.Interviewer{
		{ID: "marcus", Name: "Marcus", EvaluationPrompt: "Weigh trade-off reasoning most."},
	})
	require.NoError(t, err)

	cfg := config.LLMConfig{ReportModel: "report-model", ReportTemperature: 0.4, ReportMaxTokens: 2048}
	f.gen = NewGenerator(f.repo, f.client, cfg, roster, hm, nil, log)
	return f
}

func (f *fixture) seed(t *testing.T, status domain.Status, turns []domain.Turn) string {
	t.Helper()
	ctx := context.Background()
	sess := &domain.Session{ID: "s1", UserID: "u1", JobRole: "Backend Engineer", CandidateLevel: "senior", Status: domain.StatusActive}
	require.NoError(t, f.repo.CreateSession(ctx, sess))
	if status != domain.StatusActive {
		require.NoError(t, f.repo.SaveTranscript(ctx, sess.ID, turns))
		if status != domain.StatusPendingReport {
			require.NoError(t, f.repo.SetStatus(ctx, sess.ID, status))
		}
	}
	return sess.ID
}

var dialogue = []domain.Turn{
	{Role: domain.RoleAssistant, Content: "Hello! Please introduce yourself."},
	{Role: domain.RoleUser, Content: "I build payment systems in Go."},
}

func TestGenerateCompletes(t *testing.T) {
	f := newFixture(t, "```json\n{\"score\": 12, \"report_markdown\": \"## Overall\\nStrong.\"}\n```", nil)
	id := f.seed(t, domain.StatusPendingReport, dialogue)

	rep, err := f.gen.Generate(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, 10, rep.Score)
	assert.Equal(t, "## Overall\nStrong.", rep.Body)

	sess, err := f.repo.LoadSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, sess.Status)

	saved, err := f.repo.LoadReport(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 10, saved.Score)

	require.Len(t, f.reqs, 1)
	req := f.reqs[0]
	assert.Equal(t, "report-model", req.Model)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.4, *req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "CANDIDATE: I build payment systems in Go.")
	assert.Contains(t, req.Messages[0].Content, "senior Backend Engineer")
	assert.NotContains(t, req.Messages[0].Content, "## Evaluation focus")

	require.Len(t, f.events, 1)
	assert.Equal(t, hooks.EventReportReady, f.events[0].event)
	assert.Equal(t, id, f.events[0].data["sessionId"])
	assert.Equal(t, 10, f.events[0].data["score"])
	assert.Equal(t, "## Overall\nStrong.", f.events[0].data["reportBody"])
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		turns   []domain.Turn
		wantErr error
	}{
		{name: "empty transcript", reply: `{"score": 5}`, turns: nil, wantErr: ErrEmptyTranscript},
		{name: "unparseable", reply: "I cannot evaluate this.", turns: dialogue, wantErr: ErrUnparseableReport},
		{name: "model error", err: errors.New("rate limited"), turns: dialogue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.reply, tt.err)
			id := f.seed(t, domain.StatusPendingReport, tt.turns)

			rep, err := f.gen.Generate(context.Background(), id)
			require.Error(t, err)
			assert.Nil(t, rep)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			sess, lerr := f.repo.LoadSession(context.Background(), id)
			require.NoError(t, lerr)
			assert.Equal(t, domain.StatusFailed, sess.Status)

			_, lerr = f.repo.LoadReport(context.Background(), id)
			assert.ErrorIs(t, lerr, store.ErrReportNotFound)

			require.Len(t, f.events, 1)
			assert.Equal(t, hooks.EventReportFailed, f.events[0].event)
		})
	}
}

func TestGenerateSkipsTerminal(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusCompleted, domain.StatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, `{"score": 5}`, nil)
			id := f.seed(t, status, dialogue)

			rep, err := f.gen.Generate(context.Background(), id)
			require.NoError(t, err)
			assert.Nil(t, rep)
			assert.Empty(t, f.reqs)
			assert.Empty(t, f.events)
		})
	}
}

func TestGenerateMissingSession(t *testing.T) {
	f := newFixture(t, `{"score": 5}`, nil)
	_, err := f.gen.Generate(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSchedulerRunsJob(t *testing.T) {
	f := newFixture(t, `{"score": 6, "report_markdown": "ok"}`, nil)
	id := f.seed(t, domain.StatusPendingReport, dialogue)

	q := jobs.New(4, 1, time.Second, logging.New(nil, "silent"))
	q.Start(context.Background())

	s := Scheduler{Queue: q, Generator: f.gen}
	require.True(t, s.Schedule(id))

	require.Eventually(t, func() bool {
		sess, err := f.repo.LoadSession(context.Background(), id)
		return err == nil && sess.Status == domain.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	q.Stop()
}

func TestGenerateUsesInterviewerEvaluationFocus(t *testing.T) {
	ctx := context.Background()
	for _, tt := range []struct {
		interviewer string
		focus       bool
	}{
		{"marcus", true},
		{"retired", false},
	} {
		t.Run(tt.interviewer, func(t *testing.T) {
			f := newFixture(t, `{"score": 6, "report_markdown": "ok"}`, nil)
			sess := &domain.Session{ID: "s1", JobRole: "SRE", InterviewerID: tt.interviewer, Status: domain.StatusActive}
			require.NoError(t, f.repo.CreateSession(ctx, sess))
			require.NoError(t, f.repo.SaveTranscript(ctx, sess.ID, dialogue))

			_, err := f.gen.Generate(ctx, sess.ID)
			require.NoError(t, err)
			require.Len(t, f.reqs, 1)
			content := f.reqs[0].Messages[0].Content
			if tt.focus {
				assert.Contains(t, content, "## Evaluation focus\nWeigh trade-off reasoning most.")
			} else {
				assert.NotContains(t, content, "## Evaluation focus")
			}
		})
	}
}
