package missiondb

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	StatusCleared    = "cleared"
	StatusNotCleared = "not cleared"
)

var ErrPlayerRequired = errors.New("player id is required")

// Attempt is one graded quiz submission.
type Attempt struct {
	PlayerID    string
	Score       int
	Total       int
	Badge       string
	QuestionIDs []int
	At          time.Time
}

type MissionStatus struct {
	Status string
	Score  int
}

type LeaderboardEntry struct {
	PlayerID      string    `json:"player_id"`
	LastScore     int       `json:"last_score"`
	LastBadge     string    `json:"last_badge"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "mission.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
