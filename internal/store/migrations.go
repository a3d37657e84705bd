package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per emitted swipe. fired_at is unix milliseconds.
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			direction TEXT NOT NULL CHECK(direction IN ('left', 'right', 'up', 'down')),
			key TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL CHECK(mode IN ('live', 'test')),
			dx REAL NOT NULL,
			dy REAL NOT NULL,
			fired_at INTEGER NOT NULL
		)`,

		// Named recognizer tunings. Durations are milliseconds.
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			history_ms INTEGER NOT NULL,
			cooldown_ms INTEGER NOT NULL,
			dx_thresh REAL NOT NULL,
			dy_thresh REAL NOT NULL,
			neutral_radius REAL NOT NULL,
			neutral_hold_ms INTEGER NOT NULL,
			auto_rearm_ms INTEGER NOT NULL,
			key_set TEXT NOT NULL DEFAULT 'arrows',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_fired_at ON events(fired_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
