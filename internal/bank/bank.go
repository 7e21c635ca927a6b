package bank

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"
)

const (
	BadgeHero       = "Cyber Hero"
	BadgeDefender   = "Cyber Defender"
	BadgeLearner    = "Cyber Learner"
	BadgePracticing = "Keep Practicing"
)

var ErrEmptyBank = errors.New("question bank is empty")

//go:embed questions.json
var defaultBank []byte

// Question is a bank entry. Answer is the index of the correct option and is
// never sent to players.
type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

type PublicQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type Result struct {
	Score   int      `json:"score"`
	Total   int      `json:"total"`
	Badge   string   `json:"badge"`
	Correct []string `json:"correct"`
	Wrong   []string `json:"wrong"`
}

type Bank struct {
	mu        sync.RWMutex
	questions []Question
	byID      map[int]Question
	rng       *rand.Rand
}

func New(questions []Question) *Bank {
	b := &Bank{
		byID: make(map[int]Question),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	b.Add(questions...)
	return b
}

// Default returns the bank shipped with the service.
func Default() (*Bank, error) {
	questions, err := decode(defaultBank)
	if err != nil {
		return nil, fmt.Errorf("embedded bank: %w", err)
	}
	return New(questions), nil
}

func Load(r io.Reader) (*Bank, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	questions, err := decode(data)
	if err != nil {
		return nil, err
	}
	return New(questions), nil
}

func LoadFile(path string) (*Bank, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file)
}

func decode(data []byte) ([]Question, error) {
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	for _, question := range questions {
		if question.Answer < 0 || question.Answer >= len(question.Options) {
			return nil, fmt.Errorf("question %d: answer index %d out of range", question.ID, question.Answer)
		}
	}
	return questions, nil
}

// Add stores questions, assigning ids to entries that have none.
func (b *Bank) Add(questions ...Question) {
	b.mu.Lock()
	defer b.mu.Unlock()

	nextID := 1
	for id := range b.byID {
		if id >= nextID {
			nextID = id + 1
		}
	}
	for _, question := range questions {
		if question.ID <= 0 {
			question.ID = nextID
		}
		if question.ID >= nextID {
			nextID = question.ID + 1
		}
		if _, exists := b.byID[question.ID]; !exists {
			b.questions = append(b.questions, question)
		} else {
			for idx := range b.questions {
				if b.questions[idx].ID == question.ID {
					b.questions[idx] = question
				}
			}
		}
		b.byID[question.ID] = question
	}
}

func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

// Pick draws n distinct questions, avoiding the ids in exclude. When fewer
// than n remain after exclusion the whole bank is used instead.
func (b *Bank) Pick(n int, exclude []int) ([]Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.questions) == 0 {
		return nil, ErrEmptyBank
	}

	skip := make(map[int]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	pool := make([]Question, 0, len(b.questions))
	for _, question := range b.questions {
		if _, excluded := skip[question.ID]; !excluded {
			pool = append(pool, question)
		}
	}
	if len(pool) < n {
		pool = append(pool[:0], b.questions...)
	}
	if n > len(pool) {
		n = len(pool)
	}

	b.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:n], nil
}

// Score grades answers against the question ids drawn for the attempt.
// Question text lands in Correct or Wrong in draw order; ids missing from the
// bank are ignored.
func (b *Bank) Score(ids []int, answers map[string]int) Result {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := Result{
		Correct: make([]string, 0),
		Wrong:   make([]string, 0),
	}
	for _, id := range ids {
		question, ok := b.byID[id]
		if !ok {
			continue
		}
		result.Total++

		selected, answered := answers[strconv.Itoa(id)]
		if answered && selected == question.Answer {
			result.Score++
			result.Correct = append(result.Correct, question.Question)
		} else {
			result.Wrong = append(result.Wrong, question.Question)
		}
	}
	result.Badge = Badge(result.Score, result.Total)
	return result
}

func Badge(score, total int) string {
	if total <= 0 {
		return BadgePracticing
	}
	switch {
	case score == total:
		return BadgeHero
	case float64(score) >= float64(total)*0.75:
		return BadgeDefender
	case float64(score) >= float64(total)*0.5:
		return BadgeLearner
	default:
		return BadgePracticing
	}
}

func ToPublic(questions []Question) []PublicQuestion {
	public := make([]PublicQuestion, 0, len(questions))
	for _, question := range questions {
		public = append(public, PublicQuestion{
			ID:       question.ID,
			Question: question.Question,
			Options:  question.Options,
		})
	}
	return public
}

func IDs(questions []Question) []int {
	ids := make([]int, 0, len(questions))
	for _, question := range questions {
		ids = append(ids, question.ID)
	}
	return ids
}
