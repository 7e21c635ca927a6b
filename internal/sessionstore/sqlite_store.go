package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var ErrInvalidSession = errors.New("invalid session id")

// SQLiteStore keeps tab-session scoped key/value pairs. Every front-end run
// works inside one session id; relaunching with the same id restores its
// values, like a page reload within the same tab.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "session.db"
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

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS session_storage (
			session_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at_unix INTEGER NOT NULL,
			PRIMARY KEY (session_id, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_session_storage_updated_at ON session_storage(updated_at_unix);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewSessionID returns a fresh tab-session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

func ParseSessionID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidSession
	}
	return id.String(), nil
}

// Scope returns the storage view of a single session.
func (s *SQLiteStore) Scope(sessionID string) *Scoped {
	return &Scoped{store: s, sessionID: sessionID}
}

func (s *SQLiteStore) get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM session_storage WHERE session_id = ? AND key = ?`,
		sessionID,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) set(ctx context.Context, sessionID, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO session_storage (session_id, key, value, updated_at_unix)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at_unix = excluded.updated_at_unix`,
		sessionID,
		key,
		value,
		time.Now().UTC().UnixNano(),
	)
	return err
}

func (s *SQLiteStore) delete(ctx context.Context, sessionID, key string) error {
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM session_storage WHERE session_id = ? AND key = ?`,
		sessionID,
		key,
	)
	return err
}

// ClearSession drops every value of a session, as closing its tab would.
func (s *SQLiteStore) ClearSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_storage WHERE session_id = ?`, sessionID)
	return err
}

// Purge removes sessions whose newest value is older than before and returns
// how many rows were deleted.
func (s *SQLiteStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM session_storage
		 WHERE session_id IN (
			SELECT session_id FROM session_storage
			GROUP BY session_id
			HAVING MAX(updated_at_unix) < ?
		 )`,
		before.UTC().UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type Scoped struct {
	store     *SQLiteStore
	sessionID string
}

func (s *Scoped) SessionID() string {
	return s.sessionID
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.get(ctx, s.sessionID, key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.store.set(ctx, s.sessionID, key, value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.store.delete(ctx, s.sessionID, key)
}
