package missiondb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// RecordAttempt appends the attempt to the history and makes it the player's
// latest, in one transaction.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, attempt Attempt) error {
	if attempt.PlayerID == "" {
		return ErrPlayerRequired
	}
	if attempt.At.IsZero() {
		attempt.At = time.Now().UTC()
	}
	if attempt.QuestionIDs == nil {
		attempt.QuestionIDs = []int{}
	}

	questionsJSON, err := json.Marshal(attempt.QuestionIDs)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO attempts (player_id, score, total, badge, question_ids, attempted_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		attempt.PlayerID,
		attempt.Score,
		attempt.Total,
		attempt.Badge,
		string(questionsJSON),
		attempt.At.UnixNano(),
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO players (player_id, last_score, last_badge, last_attempt_unix, last_questions)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
			last_score = excluded.last_score,
			last_badge = excluded.last_badge,
			last_attempt_unix = excluded.last_attempt_unix,
			last_questions = excluded.last_questions`,
		attempt.PlayerID,
		attempt.Score,
		attempt.Badge,
		attempt.At.UnixNano(),
		string(questionsJSON),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LastQuestions returns the question ids of the player's latest attempt, or
// nil for a player who has none.
func (s *SQLiteStore) LastQuestions(ctx context.Context, playerID string) ([]int, error) {
	var raw string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT last_questions FROM players WHERE player_id = ?`,
		playerID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []int
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *SQLiteStore) AttemptCount(ctx context.Context, playerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM attempts WHERE player_id = ?`,
		playerID,
	).Scan(&count)
	return count, err
}

// Leaderboard ranks players by their latest score. Earlier attempts win ties.
func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT player_id, last_score, last_badge, last_attempt_unix
		 FROM players
		 WHERE last_attempt_unix > 0
		 ORDER BY last_score DESC, last_attempt_unix ASC, player_id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leaderboard := make([]LeaderboardEntry, 0)
	for rows.Next() {
		var (
			entry         LeaderboardEntry
			lastAttemptNs int64
		)
		if err := rows.Scan(&entry.PlayerID, &entry.LastScore, &entry.LastBadge, &lastAttemptNs); err != nil {
			return nil, err
		}
		entry.LastAttemptAt = time.Unix(0, lastAttemptNs).UTC()
		leaderboard = append(leaderboard, entry)
	}

	return leaderboard, rows.Err()
}
