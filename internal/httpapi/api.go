package httpapi

import (
	"context"
	"log"
	"strings"

	"cybercase/internal/bank"
	"cybercase/internal/missiondb"
	"cybercase/internal/quizsessions"
)

const (
	DefaultOwnerName     = "krithika"
	DefaultQuestionCount = 8
	DefaultTimer         = 90
)

// MissionStore persists mission progress and quiz attempts per player.
type MissionStore interface {
	RecordAttempt(ctx context.Context, attempt missiondb.Attempt) error
	LastQuestions(ctx context.Context, playerID string) ([]int, error)
	AttemptCount(ctx context.Context, playerID string) (int, error)
	MissionStatus(ctx context.Context, playerID string) (missiondb.MissionStatus, error)
	MarkCleared(ctx context.Context, playerID string, score int) error
	Leaderboard(ctx context.Context, limit int) ([]missiondb.LeaderboardEntry, error)
}

type Config struct {
	Bank     *bank.Bank
	Store    MissionStore
	Sessions quizsessions.Store

	OwnerName     string
	QuestionCount int
	Timer         int
}

type API struct {
	bank      *bank.Bank
	store     MissionStore
	sessions  quizsessions.Store
	ownerName string
	count     int
	timer     int
}

func NewAPI(cfg Config) *API {
	if cfg.Bank == nil {
		defaultBank, err := bank.Default()
		if err != nil {
			log.Printf("embedded question bank unavailable: %v", err)
			defaultBank = bank.New(nil)
		}
		cfg.Bank = defaultBank
	}
	if cfg.Sessions == nil {
		cfg.Sessions = quizsessions.NewMemoryStore(0)
	}
	if strings.TrimSpace(cfg.OwnerName) == "" {
		cfg.OwnerName = DefaultOwnerName
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultQuestionCount
	}
	if cfg.Timer <= 0 {
		cfg.Timer = DefaultTimer
	}
	return &API{
		bank:      cfg.Bank,
		store:     cfg.Store,
		sessions:  cfg.Sessions,
		ownerName: strings.ToLower(strings.TrimSpace(cfg.OwnerName)),
		count:     cfg.QuestionCount,
		timer:     cfg.Timer,
	}
}
