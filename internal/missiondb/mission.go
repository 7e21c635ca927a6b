package missiondb

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// MissionStatus reports whether the player has identified the phone's owner.
// Unknown players have not.
func (s *SQLiteStore) MissionStatus(ctx context.Context, playerID string) (MissionStatus, error) {
	status := MissionStatus{Status: StatusNotCleared}
	err := s.db.QueryRowContext(
		ctx,
		`SELECT status, score FROM mission_scores WHERE player_id = ?`,
		playerID,
	).Scan(&status.Status, &status.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return MissionStatus{Status: StatusNotCleared}, nil
	}
	if err != nil {
		return MissionStatus{}, err
	}
	return status, nil
}

func (s *SQLiteStore) MarkCleared(ctx context.Context, playerID string, score int) error {
	if playerID == "" {
		return ErrPlayerRequired
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO mission_scores (player_id, score, status, updated_at_unix)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
			score = excluded.score,
			status = excluded.status,
			updated_at_unix = excluded.updated_at_unix`,
		playerID,
		score,
		StatusCleared,
		time.Now().UTC().UnixNano(),
	)
	return err
}
