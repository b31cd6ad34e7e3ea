package store

import (
	"context"
	"errors"

	"github.com/soyeahso/evaluet/internal/domain"
)

// ErrReportNotFound is returned when a session has no report yet.
var ErrReportNotFound = errors.New("report not found")

// Repository is the full persistence surface used by the server and CLI.
type Repository interface {
	CreateSession(ctx context.Context, sess *domain.Session) error
	LoadSession(ctx context.Context, id string) (*domain.Session, error)
	SaveTranscript(ctx context.Context, id string, transcript []domain.Turn) error
	SetStatus(ctx context.Context, id string, to domain.Status) error
	ListSessions(ctx context.Context, limit int) ([]domain.Session, error)
	SaveReport(ctx context.Context, r domain.Report) error
	LoadReport(ctx context.Context, sessionID string) (*domain.Report, error)
}

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
