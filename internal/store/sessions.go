package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/evaluet/internal/domain"
)

// SQLiteRepository implements Repository on top of DB.
type SQLiteRepository struct {
	db *DB
}

// NewSQLiteRepository creates a repository using the given database.
func NewSQLiteRepository(db *DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sessionColumns = `id, user_id, job_role, job_description, candidate_level, voice_model,
	interviewer_id, system_prompt, transcript, status, created_at, updated_at`

// CreateSession inserts a new session. Missing IDs, timestamps and status
// are filled in on sess.
func (r *SQLiteRepository) CreateSession(ctx context.Context, sess *domain.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.Status == "" {
		sess.Status = domain.StatusActive
	}
	now := time.Now().UTC().Truncate(time.Second)
	sess.CreatedAt = now
	sess.UpdatedAt = now

	transcript, err := marshalTranscript(sess.Transcript)
	if err != nil {
		return err
	}

	_, err = r.db.sql.ExecContext(ctx,
		`INSERT INTO interview_sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.JobRole, sess.JobDescription, sess.CandidateLevel, sess.VoiceModel,
		sess.InterviewerID, sess.SystemPrompt, transcript, string(sess.Status),
		now.Format(time.DateTime), now.Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	r.db.log.Debug().Str("session", sess.ID).Str("role", sess.JobRole).Msg("session created")
	return nil
}

// LoadSession returns the session or domain.ErrSessionNotFound.
func (r *SQLiteRepository) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM interview_sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return sess, nil
}

// SaveTranscript writes the final transcript and moves the session from
// ACTIVE to PENDING_REPORT in one transaction.
func (r *SQLiteRepository) SaveTranscript(ctx context.Context, id string, transcript []domain.Turn) error {
	data, err := marshalTranscript(transcript)
	if err != nil {
		return err
	}

	err = r.db.withTx(ctx, func(tx *sql.Tx) error {
		from, err := currentStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckTransition(from, domain.StatusPendingReport); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE interview_sessions SET transcript = ?, status = ?, updated_at = ? WHERE id = ?`,
			data, string(domain.StatusPendingReport), time.Now().UTC().Format(time.DateTime), id,
		); err != nil {
			return fmt.Errorf("update transcript: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.db.log.Info().Str("session", id).Int("turns", len(transcript)).Msg("transcript saved")
	return nil
}

// SetStatus moves a session to a new status if the transition is allowed.
func (r *SQLiteRepository) SetStatus(ctx context.Context, id string, to domain.Status) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		from, err := currentStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckTransition(from, to); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE interview_sessions SET status = ?, updated_at = ? WHERE id = ?`,
			string(to), time.Now().UTC().Format(time.DateTime), id,
		); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	})
}

// ListSessions returns the most recent sessions, newest first.
func (r *SQLiteRepository) ListSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM interview_sessions
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		sess                 domain.Session
		transcript, status   string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&sess.ID, &sess.UserID, &sess.JobRole, &sess.JobDescription, &sess.CandidateLevel, &sess.VoiceModel,
		&sess.InterviewerID, &sess.SystemPrompt, &transcript, &status, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(transcript), &sess.Transcript); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	sess.Status = domain.Status(status)
	sess.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return &sess, nil
}

func currentStatus(ctx context.Context, tx *sql.Tx, id string) (domain.Status, error) {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM interview_sessions WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("read status: %w", err)
	}
	return domain.Status(status), nil
}

func marshalTranscript(turns []domain.Turn) (string, error) {
	if turns == nil {
		turns = []domain.Turn{}
	}
	data, err := json.Marshal(turns)
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	return string(data), nil
}
