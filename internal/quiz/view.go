package quiz

import "fmt"

const (
	LoadFailedMessage   = "Quiz could not be loaded."
	SubmitFailedMessage = "Your answers could not be submitted. Choose Finish to try again."

	labelStart   = "Start"
	labelLoading = "Loading..."
	labelNext    = "Next"
	labelFinish  = "Finish"
)

type OptionView struct {
	Text     string
	Selected bool
}

// View is everything a front-end needs to draw the quiz. It is derived from
// controller state by Render and carries no behaviour.
type View struct {
	State State
	// Seq orders views emitted by a Controller. Render leaves it zero.
	Seq uint64

	ShowIntro    bool
	ShowQuestion bool
	ShowResult   bool

	StartLabel    string
	StartDisabled bool

	QuestionNumber string
	QuestionText   string
	Options        []OptionView
	PrevDisabled   bool
	NextDisabled   bool
	NextLabel      string
	Progress       float64
	Remaining      int

	ScoreText string
	Badge     string
	Correct   []string
	Wrong     []string

	Error string
}

type Snapshot struct {
	State   State
	Session *Session
	Result  *Result
	Message string
	// StartLocked keeps the start control disabled after a failed load.
	StartLocked bool
}

func Render(snap Snapshot) View {
	view := View{
		State:      snap.State,
		StartLabel: labelStart,
		NextLabel:  labelNext,
	}

	switch snap.State {
	case StateIntro:
		view.ShowIntro = true
	case StateLoading:
		view.ShowIntro = true
		view.StartDisabled = true
		view.StartLabel = labelLoading
	case StateDegraded:
		view.ShowQuestion = true
		view.StartDisabled = snap.StartLocked
		view.QuestionText = LoadFailedMessage
		view.PrevDisabled = true
		view.NextDisabled = true
		view.Error = snap.Message
	case StateInProgress, StateSubmitting, StateSubmitFailed:
		view.ShowQuestion = true
		view.StartDisabled = true
		renderQuestion(&view, snap.Session)
		switch snap.State {
		case StateSubmitting:
			view.PrevDisabled = true
			view.NextDisabled = true
		case StateSubmitFailed:
			view.PrevDisabled = true
			view.NextLabel = labelFinish
			view.Error = snap.Message
		}
	case StateResult:
		view.ShowResult = true
		view.StartDisabled = false
		if snap.Result != nil {
			view.ScoreText = fmt.Sprintf("You scored %d out of %d", snap.Result.Score, snap.Result.Total)
			view.Badge = snap.Result.Badge
			view.Correct = snap.Result.Correct
			view.Wrong = snap.Result.Wrong
		}
	}

	return view
}

func renderQuestion(view *View, session *Session) {
	if session == nil {
		return
	}
	question, ok := session.Current()
	if !ok {
		return
	}

	view.QuestionNumber = fmt.Sprintf("Question %d / %d", session.Index+1, len(session.Questions))
	view.QuestionText = question.Question
	view.Progress = session.Progress()
	view.Remaining = session.Remaining
	view.PrevDisabled = session.Index == 0
	if session.IsLast() {
		view.NextLabel = labelFinish
	}

	selected, hasSelection := session.Selected()
	view.Options = make([]OptionView, 0, len(question.Options))
	for idx, text := range question.Options {
		view.Options = append(view.Options, OptionView{
			Text:     text,
			Selected: hasSelection && selected == idx,
		})
	}
}
