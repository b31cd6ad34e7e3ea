package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create interview sessions and reports",
		SQL: `
			CREATE TABLE interview_sessions (
				id               TEXT PRIMARY KEY,
				user_id          TEXT NOT NULL DEFAULT '',
				job_role         TEXT NOT NULL,
				job_description  TEXT NOT NULL DEFAULT '',
				candidate_level  TEXT NOT NULL DEFAULT '',
				voice_model      TEXT NOT NULL DEFAULT '',
				system_prompt    TEXT NOT NULL,
				transcript       TEXT NOT NULL DEFAULT '[]',
				status           TEXT NOT NULL DEFAULT 'ACTIVE',
				created_at       TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE interview_reports (
				session_id    TEXT PRIMARY KEY REFERENCES interview_sessions(id) ON DELETE CASCADE,
				score         INTEGER NOT NULL CHECK (score BETWEEN 1 AND 10),
				body          TEXT NOT NULL,
				generated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
	{
		Version: 2,
		Name:    "index sessions by status and recency",
		SQL: `
			CREATE INDEX idx_sessions_status ON interview_sessions (status);
			CREATE INDEX idx_sessions_created ON interview_sessions (created_at DESC);
			CREATE INDEX idx_sessions_user ON interview_sessions (user_id);
		`,
	},
	{
		Version: 3,
		Name:    "record the chosen interviewer",
		SQL: `
			ALTER TABLE interview_sessions ADD COLUMN interviewer_id TEXT NOT NULL DEFAULT '';
		`,
	},
}
