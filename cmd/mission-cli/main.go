package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cybercase/internal/cli"
	"cybercase/internal/missionapi"
	"cybercase/internal/sessionstore"
)

const sessionRetention = 30 * 24 * time.Hour

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	server := flag.String("server", envOr("MISSION_SERVER", missionapi.DefaultServer), "mission service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	session := flag.String("session", "", "session id to resume (a new one is created when empty)")
	storage := flag.String("storage", envOr("MISSION_STORAGE", "mission-session.db"), "sqlite file for session storage")
	reset := flag.Bool("reset-session", false, "discard notes and player of the resumed session before starting")
	lockQuiz := flag.Bool("lock-quiz-on-failure", false, "keep the quiz disabled after a failed load")
	flag.Parse()

	sessionID := sessionstore.NewSessionID()
	if *session != "" {
		parsed, err := sessionstore.ParseSessionID(*session)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		sessionID = parsed
	}

	store, err := sessionstore.NewSQLiteStore(*storage)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: open session storage:", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.Purge(ctx, time.Now().Add(-sessionRetention)); err != nil {
		fmt.Fprintln(os.Stderr, "warning: purge old sessions:", err)
	}
	if *reset {
		if err := store.ClearSession(ctx, sessionID); err != nil {
			fmt.Fprintln(os.Stderr, "warning: reset session:", err)
		}
	}

	err = cli.Run(ctx, os.Stdin, os.Stdout, cli.Config{
		ServerURL:            *server,
		HTTPTimeout:          *timeout,
		Storage:              store.Scope(sessionID),
		SessionID:            sessionID,
		LockAfterLoadFailure: *lockQuiz,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		store.Close()
		os.Exit(1)
	}
}
