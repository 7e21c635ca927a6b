package quiz

import (
	"encoding/json"
	"errors"
	"testing"
)

func sampleQuestions() []Question {
	return []Question{
		{ID: "1", Question: "Which port does HTTPS use?", Options: []string{"80", "443", "22"}},
		{ID: "2", Question: "What does MFA stand for?", Options: []string{"Multi-factor authentication", "Main frame access"}},
		{ID: "3", Question: "Is 'password' a strong password?", Options: []string{"Yes", "No"}},
	}
}

func TestNewSessionDefaultsTimer(t *testing.T) {
	session := NewSession(sampleQuestions(), 0)
	if session.Remaining != DefaultTimer {
		t.Fatalf("remaining = %d, want %d", session.Remaining, DefaultTimer)
	}
	if session.Index != 0 || len(session.Answers) != 0 {
		t.Fatalf("unexpected fresh session: index=%d answers=%v", session.Index, session.Answers)
	}

	session = NewSession(sampleQuestions(), 90)
	if session.Remaining != 90 {
		t.Fatalf("remaining = %d, want 90", session.Remaining)
	}
}

func TestSessionIndexStaysInBounds(t *testing.T) {
	session := NewSession(sampleQuestions(), 10)
	moves := []string{"prev", "prev", "next", "next", "next", "next", "prev", "next", "next", "prev", "prev", "prev", "prev"}

	for step, move := range moves {
		switch move {
		case "next":
			session.Next()
		case "prev":
			session.Prev()
		}
		if session.Index < 0 || session.Index >= len(session.Questions) {
			t.Fatalf("step %d (%s): index %d out of range", step, move, session.Index)
		}
	}

	if session.Index != 0 {
		t.Fatalf("final index = %d, want 0", session.Index)
	}
}

func TestSessionNextStopsAtLastQuestion(t *testing.T) {
	session := NewSession(sampleQuestions(), 10)
	if !session.Next() || !session.Next() {
		t.Fatalf("expected to advance to the last question")
	}
	if session.Next() {
		t.Fatalf("Next moved past the last question")
	}
	if !session.IsLast() {
		t.Fatalf("expected last question, index=%d", session.Index)
	}
}

func TestSessionSelectOverwritesPreviousChoice(t *testing.T) {
	session := NewSession(sampleQuestions(), 10)

	if err := session.Select(0); err != nil {
		t.Fatalf("Select(0) failed: %v", err)
	}
	if err := session.Select(2); err != nil {
		t.Fatalf("Select(2) failed: %v", err)
	}

	if len(session.Answers) != 1 {
		t.Fatalf("expected a single recorded answer, got %v", session.Answers)
	}
	if got := session.Answers["1"]; got != 2 {
		t.Fatalf("answer for question 1 = %d, want 2", got)
	}
}

func TestSessionSelectRejectsOutOfRange(t *testing.T) {
	session := NewSession(sampleQuestions(), 10)

	tests := []struct {
		name   string
		option int
	}{
		{name: "negative", option: -1},
		{name: "past end", option: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := session.Select(tc.option); !errors.Is(err, ErrInvalidOption) {
				t.Fatalf("Select(%d) error = %v, want ErrInvalidOption", tc.option, err)
			}
		})
	}
	if len(session.Answers) != 0 {
		t.Fatalf("rejected selections must not be recorded: %v", session.Answers)
	}
}

func TestSessionProgressNeverReachesHundred(t *testing.T) {
	session := NewSession(sampleQuestions(), 10)
	if got := session.Progress(); got != 0 {
		t.Fatalf("progress at first question = %v, want 0", got)
	}

	session.Next()
	session.Next()
	want := float64(2) / float64(3) * 100
	if got := session.Progress(); got != want {
		t.Fatalf("progress at last question = %v, want %v", got, want)
	}
}

func TestSessionTickCountsDownToZero(t *testing.T) {
	session := NewSession(sampleQuestions(), 2)
	if session.Tick() {
		t.Fatalf("timer expired after one tick")
	}
	if !session.Tick() {
		t.Fatalf("timer should expire on the second tick")
	}
	if session.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", session.Remaining)
	}
}

func TestSessionBeginSubmitOnlyOnce(t *testing.T) {
	session := NewSession(sampleQuestions(), 2)
	if !session.BeginSubmit() {
		t.Fatalf("first BeginSubmit should succeed")
	}
	if session.BeginSubmit() {
		t.Fatalf("second BeginSubmit should be refused")
	}
	session.abortSubmit()
	if !session.BeginSubmit() {
		t.Fatalf("BeginSubmit should succeed again after an aborted submission")
	}
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		Questions []Question `json:"questions"`
	}
	body := `{"questions":[{"id":7,"question":"Q7","options":["A"]},{"id":"q-8","question":"Q8","options":["B"]}]}`
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.Questions[0].ID != "7" || payload.Questions[1].ID != "q-8" {
		t.Fatalf("unexpected ids: %q %q", payload.Questions[0].ID, payload.Questions[1].ID)
	}

	encoded, err := json.Marshal(payload.Questions[0].ID)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(encoded) != "7" {
		t.Fatalf("numeric id encoded as %s, want 7", encoded)
	}
}
