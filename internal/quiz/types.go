package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
)

var (
	ErrBusy          = errors.New("quiz request already in flight")
	ErrNotInProgress = errors.New("no quiz question is active")
	ErrInvalidOption = errors.New("option out of range")
	ErrStartLocked   = errors.New("quiz could not be loaded; reload to try again")
	ErrNoQuestions   = errors.New("quiz returned no questions")
)

// ID accepts both numeric and string question identifiers from the backend.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*id = ID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*id = ID(number.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

type Question struct {
	ID       ID       `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// AnswerMap maps a question id to the selected option index.
type AnswerMap map[string]int

type Start struct {
	Questions []Question `json:"questions"`
	Timer     int        `json:"timer,omitempty"`
}

type Result struct {
	Score   int      `json:"score"`
	Total   int      `json:"total"`
	Badge   string   `json:"badge"`
	Correct []string `json:"correct"`
	Wrong   []string `json:"wrong"`
}

type API interface {
	StartQuiz(ctx context.Context) (Start, error)
	SubmitQuiz(ctx context.Context, answers AnswerMap) (Result, error)
}

type State int

const (
	StateIntro State = iota
	StateLoading
	StateInProgress
	StateDegraded
	StateSubmitting
	StateResult
	StateSubmitFailed
)

func (s State) String() string {
	switch s {
	case StateIntro:
		return "intro"
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateDegraded:
		return "degraded"
	case StateSubmitting:
		return "submitting"
	case StateResult:
		return "result"
	case StateSubmitFailed:
		return "submit_failed"
	default:
		return "unknown"
	}
}
