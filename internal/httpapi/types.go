package httpapi

import (
	"time"

	"cybercase/internal/bank"
)

type answerRequest struct {
	Answer string `json:"answer"`
}

type validateResponse struct {
	Result   string `json:"result"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

type validateAnswerResponse struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Score    int    `json:"score"`
	Attempts int    `json:"attempts"`
}

type startResponse struct {
	Questions []bank.PublicQuestion `json:"questions"`
	Timer     int                   `json:"timer"`
}

type submitRequest struct {
	Answers map[string]int `json:"answers"`
}

type leaderboardEntryResponse struct {
	Player        string    `json:"player"`
	Score         int       `json:"score"`
	Badge         string    `json:"badge"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

type leaderboardResponse struct {
	Leaderboard []leaderboardEntryResponse `json:"leaderboard"`
}

type errorResponse struct {
	Error string `json:"error"`
}
