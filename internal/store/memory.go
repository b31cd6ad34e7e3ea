package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/evaluet/internal/domain"
)

// MemoryRepository is an in-process Repository. Nothing survives a restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	order    []string
	reports  map[string]domain.Report
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]*domain.Session),
		reports:  make(map[string]domain.Report),
	}
}

func (m *MemoryRepository) CreateSession(_ context.Context, sess *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if _, exists := m.sessions[sess.ID]; exists {
		return fmt.Errorf("session %s already exists", sess.ID)
	}
	if sess.Status == "" {
		sess.Status = domain.StatusActive
	}
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	m.sessions[sess.ID] = cloneSession(sess)
	m.order = append(m.order, sess.ID)
	return nil
}

func (m *MemoryRepository) LoadSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return cloneSession(sess), nil
}

func (m *MemoryRepository) SaveTranscript(_ context.Context, id string, transcript []domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err := domain.CheckTransition(sess.Status, domain.StatusPendingReport); err != nil {
		return err
	}
	sess.Transcript = slices.Clone(transcript)
	sess.Status = domain.StatusPendingReport
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepository) SetStatus(_ context.Context, id string, to domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err := domain.CheckTransition(sess.Status, to); err != nil {
		return err
	}
	sess.Status = to
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepository) ListSessions(_ context.Context, limit int) ([]domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]domain.Session, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *cloneSession(m.sessions[m.order[i]]))
	}
	return out, nil
}

func (m *MemoryRepository) SaveReport(_ context.Context, rep domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[rep.SessionID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, rep.SessionID)
	}
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = time.Now().UTC()
	}
	rep.Score = domain.ClampScore(rep.Score)
	m.reports[rep.SessionID] = rep
	return nil
}

func (m *MemoryRepository) LoadReport(_ context.Context, sessionID string) (*domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rep, ok := m.reports[sessionID]
	if !ok {
		return nil, ErrReportNotFound
	}
	return &rep, nil
}

func cloneSession(s *domain.Session) *domain.Session {
	c := *s
	c.Transcript = slices.Clone(s.Transcript)
	return &c
}
