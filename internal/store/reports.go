package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/evaluet/internal/domain"
)

// SaveReport stores the report for a session. A session has at most one
// report; saving again replaces it.
func (r *SQLiteRepository) SaveReport(ctx context.Context, rep domain.Report) error {
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = time.Now().UTC()
	}
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO interview_reports (session_id, score, body, generated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   score = excluded.score,
		   body = excluded.body,
		   generated_at = excluded.generated_at`,
		rep.SessionID, domain.ClampScore(rep.Score), rep.Body, rep.GeneratedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	r.db.log.Info().Str("session", rep.SessionID).Int("score", rep.Score).Msg("report saved")
	return nil
}

// LoadReport returns the report for a session or ErrReportNotFound.
func (r *SQLiteRepository) LoadReport(ctx context.Context, sessionID string) (*domain.Report, error) {
	var (
		rep         domain.Report
		generatedAt string
	)
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT session_id, score, body, generated_at FROM interview_reports WHERE session_id = ?`,
		sessionID,
	).Scan(&rep.SessionID, &rep.Score, &rep.Body, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	rep.GeneratedAt, _ = time.Parse(time.DateTime, generatedAt)
	return &rep, nil
}
