package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260301-090000",
		Description: "Sessions and per-session key/value store",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				created_at TEXT NOT NULL,
				last_seen_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen_at)`,

			// Whole-value replace per (session, key); no versioning.
			`CREATE TABLE IF NOT EXISTS kv_store (
				session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				key TEXT NOT NULL,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (session_id, key)
			)`,
		},
	})
}
