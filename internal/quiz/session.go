package quiz

const DefaultTimer = 60

// Session is the state of a single quiz attempt. A new one is built for every
// start so nothing carries over between attempts.
type Session struct {
	Questions []Question
	Answers   AnswerMap
	Index     int
	Remaining int

	submitting bool
}

func NewSession(questions []Question, timer int) *Session {
	if timer <= 0 {
		timer = DefaultTimer
	}
	return &Session{
		Questions: questions,
		Answers:   make(AnswerMap),
		Remaining: timer,
	}
}

func (s *Session) Current() (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

func (s *Session) IsLast() bool {
	return s.Index >= len(s.Questions)-1
}

// Next advances the cursor and reports whether it moved. It never moves past
// the last question.
func (s *Session) Next() bool {
	if s.IsLast() {
		return false
	}
	s.Index++
	return true
}

func (s *Session) Prev() bool {
	if s.Index <= 0 {
		return false
	}
	s.Index--
	return true
}

func (s *Session) Select(option int) error {
	question, ok := s.Current()
	if !ok {
		return ErrNotInProgress
	}
	if option < 0 || option >= len(question.Options) {
		return ErrInvalidOption
	}
	s.Answers[question.ID.String()] = option
	return nil
}

func (s *Session) Selected() (int, bool) {
	question, ok := s.Current()
	if !ok {
		return -1, false
	}
	option, ok := s.Answers[question.ID.String()]
	return option, ok
}

// Progress is the share of questions before the current one, in percent.
func (s *Session) Progress() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	return float64(s.Index) / float64(len(s.Questions)) * 100
}

// Tick decrements the countdown and reports whether it has run out.
func (s *Session) Tick() bool {
	if s.Remaining > 0 {
		s.Remaining--
	}
	return s.Remaining <= 0
}

// BeginSubmit flips the submitting guard. Only the first caller gets true.
func (s *Session) BeginSubmit() bool {
	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *Session) abortSubmit() {
	s.submitting = false
}

func (s *Session) snapshotAnswers() AnswerMap {
	answers := make(AnswerMap, len(s.Answers))
	for id, option := range s.Answers {
		answers[id] = option
	}
	return answers
}
