package shell

import (
	"context"
	"strconv"

	"cybercase/internal/missionapi"
)

const (
	statusNotCleared  = "not cleared"
	NotClearedMessage = "Score: 0 — not cleared"
)

type StatusSource interface {
	Status(ctx context.Context) (missionapi.Status, error)
}

// PollStatus fetches the mission status once and formats it for display.
func PollStatus(ctx context.Context, source StatusSource) string {
	status, err := source.Status(ctx)
	if err != nil {
		return NotClearedMessage
	}
	return FormatStatus(status)
}

func FormatStatus(status missionapi.Status) string {
	if status.Status == "" || status.Status == statusNotCleared {
		return NotClearedMessage
	}
	score := 0.0
	if status.Score != nil {
		score = *status.Score
	}
	return "Score: " + strconv.FormatFloat(score, 'f', -1, 64) + " — " + status.Status
}
