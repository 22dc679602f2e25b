package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260308-140000",
		Description: "Resume snapshot index (bodies live in object storage)",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS resume_snapshots (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				label TEXT NOT NULL DEFAULT '',
				object_key TEXT NOT NULL,
				size_bytes INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_resume_snapshots_session ON resume_snapshots(session_id, created_at)`,
		},
	})
}
