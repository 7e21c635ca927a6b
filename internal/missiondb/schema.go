package missiondb

import "context"

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS players (
			player_id TEXT PRIMARY KEY,
			last_score INTEGER NOT NULL DEFAULT 0,
			last_badge TEXT NOT NULL DEFAULT '',
			last_attempt_unix INTEGER NOT NULL DEFAULT 0,
			last_questions TEXT NOT NULL DEFAULT '[]'
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			attempt_id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			badge TEXT NOT NULL,
			question_ids TEXT NOT NULL,
			attempted_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS mission_scores (
			player_id TEXT PRIMARY KEY,
			score INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'not cleared',
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_player ON attempts(player_id, attempted_at_unix);`,
		`CREATE INDEX IF NOT EXISTS idx_players_last_score ON players(last_score DESC, last_attempt_unix ASC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
