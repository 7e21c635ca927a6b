package quiz

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeAPI struct {
	mu sync.Mutex

	start    Start
	startErr error

	result    Result
	submitErr error
	// submitGate, when set, blocks SubmitQuiz until it is closed.
	submitGate chan struct{}

	startCalls  int
	submitCalls int
	submitted   []AnswerMap
}

func (f *fakeAPI) StartQuiz(context.Context) (Start, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	return f.start, f.startErr
}

func (f *fakeAPI) SubmitQuiz(_ context.Context, answers AnswerMap) (Result, error) {
	f.mu.Lock()
	f.submitCalls++
	f.submitted = append(f.submitted, answers)
	gate := f.submitGate
	result, err := f.result, f.submitErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return result, err
}

func (f *fakeAPI) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls, f.submitCalls
}

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) C() <-chan time.Time {
	return f.ch
}

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type harness struct {
	api        *fakeAPI
	ticker     *fakeTicker
	controller *Controller
	views      chan View
}

func newHarness(t *testing.T, api *fakeAPI, lockOnFail bool) *harness {
	t.Helper()

	h := &harness{
		api:    api,
		ticker: newFakeTicker(),
		views:  make(chan View, 256),
	}
	h.controller = NewController(Config{
		API: api,
		NewTicker: func(time.Duration) Ticker {
			return h.ticker
		},
		LockAfterLoadFailure: lockOnFail,
		Notify: func(view View) {
			select {
			case h.views <- view:
			default:
			}
		},
	})
	return h
}

// fireTick runs one countdown step synchronously against the live timer.
func (h *harness) fireTick(ctx context.Context) bool {
	h.controller.mu.Lock()
	stop := h.controller.stop
	h.controller.mu.Unlock()
	if stop == nil {
		return true
	}
	return h.controller.tick(ctx, stop)
}

func (h *harness) waitForState(t *testing.T, want State) View {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case view := <-h.views:
			if view.State == want {
				return view
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s (current %s)", want, h.controller.State())
		}
	}
}

func drainViews(views chan View) {
	for {
		select {
		case <-views:
		default:
			return
		}
	}
}

func singleQuestionAPI() *fakeAPI {
	return &fakeAPI{
		start: Start{
			Questions: []Question{{ID: "1", Question: "Q1", Options: []string{"A", "B"}}},
			Timer:     2,
		},
		result: Result{Score: 1, Total: 1, Badge: "Cyber Hero", Correct: []string{"Q1"}, Wrong: []string{}},
	}
}

func TestControllerStartEntersFirstQuestion(t *testing.T) {
	api := &fakeAPI{start: Start{Questions: sampleQuestions()}}
	h := newHarness(t, api, false)

	if err := h.controller.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	view := h.controller.View()
	if view.State != StateInProgress {
		t.Fatalf("state = %s, want in_progress", view.State)
	}
	if view.QuestionNumber != "Question 1 / 3" || view.Remaining != DefaultTimer {
		t.Fatalf("unexpected first view: %+v", view)
	}
	if view.Progress != 0 {
		t.Fatalf("progress = %v, want 0", view.Progress)
	}

	if err := h.controller.Start(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Start error = %v, want ErrBusy", err)
	}
	if starts, _ := api.calls(); starts != 1 {
		t.Fatalf("start calls = %d, want 1", starts)
	}
}

func TestControllerSubmitPayloadFromSelection(t *testing.T) {
	api := singleQuestionAPI()
	h := newHarness(t, api, false)
	ctx := context.Background()

	if err := h.controller.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := h.controller.Select(1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if err := h.controller.Next(ctx); err != nil {
		t.Fatalf("Next on last question failed: %v", err)
	}

	if len(api.submitted) != 1 {
		t.Fatalf("submit calls = %d, want 1", len(api.submitted))
	}
	want := AnswerMap{"1": 1}
	if !reflect.DeepEqual(api.submitted[0], want) {
		t.Fatalf("submitted answers = %v, want %v", api.submitted[0], want)
	}

	view := h.controller.View()
	if view.State != StateResult || view.ScoreText != "You scored 1 out of 1" || view.Badge != "Cyber Hero" {
		t.Fatalf("unexpected result view: %+v", view)
	}
	if !h.ticker.isStopped() {
		t.Fatalf("ticker must be stopped after submission")
	}
}

func TestControllerSelectOverwrites(t *testing.T) {
	api := singleQuestionAPI()
	h := newHarness(t, api, false)
	ctx := context.Background()

	_ = h.controller.Start(ctx)
	_ = h.controller.Select(0)
	_ = h.controller.Select(1)
	if err := h.controller.Finish(ctx); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if got := api.submitted[0]["1"]; got != 1 {
		t.Fatalf("recorded option = %d, want 1", got)
	}
}

func TestControllerNavigationBounds(t *testing.T) {
	api := &fakeAPI{start: Start{Questions: sampleQuestions(), Timer: 30}}
	h := newHarness(t, api, false)
	ctx := context.Background()
	_ = h.controller.Start(ctx)

	_ = h.controller.Prev()
	if view := h.controller.View(); view.QuestionNumber != "Question 1 / 3" || !view.PrevDisabled {
		t.Fatalf("prev on first question should be a no-op: %+v", view)
	}

	_ = h.controller.Next(ctx)
	_ = h.controller.Next(ctx)
	view := h.controller.View()
	if view.QuestionNumber != "Question 3 / 3" || view.NextLabel != "Finish" {
		t.Fatalf("unexpected last question view: %+v", view)
	}
	if _, submits := api.calls(); submits != 0 {
		t.Fatalf("no submission expected before Finish, got %d", submits)
	}

	_ = h.controller.Prev()
	if view := h.controller.View(); view.QuestionNumber != "Question 2 / 3" {
		t.Fatalf("prev did not move back: %+v", view)
	}
}

func TestControllerTimerExpirySubmitsOnce(t *testing.T) {
	api := singleQuestionAPI()
	h := newHarness(t, api, false)
	ctx := context.Background()
	_ = h.controller.Start(ctx)

	if done := h.fireTick(ctx); done {
		t.Fatalf("timer finished after the first tick")
	}
	if view := h.controller.View(); view.Remaining != 1 {
		t.Fatalf("remaining = %d, want 1", view.Remaining)
	}
	if done := h.fireTick(ctx); !done {
		t.Fatalf("timer should finish when reaching zero")
	}

	if _, submits := api.calls(); submits != 1 {
		t.Fatalf("submit calls = %d, want 1", submits)
	}
	if !h.ticker.isStopped() {
		t.Fatalf("ticker must be stopped on expiry")
	}
	if done := h.fireTick(ctx); !done {
		t.Fatalf("stale tick should be ignored")
	}
	if err := h.controller.Finish(ctx); err == nil {
		t.Fatalf("Finish after result should be rejected")
	}
	if _, submits := api.calls(); submits != 1 {
		t.Fatalf("submit calls = %d after late finish, want 1", submits)
	}
}

func TestControllerTimerGoroutineTicks(t *testing.T) {
	api := singleQuestionAPI()
	api.start.Timer = 3
	h := newHarness(t, api, false)
	_ = h.controller.Start(context.Background())

	h.ticker.ch <- time.Now()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case view := <-h.views:
			if view.State == StateInProgress && view.Remaining == 2 {
				return
			}
		case <-deadline:
			t.Fatalf("timer goroutine did not apply the tick")
		}
	}
}

func TestControllerFinishCancelsTimer(t *testing.T) {
	api := singleQuestionAPI()
	api.start.Timer = 30
	h := newHarness(t, api, false)
	ctx := context.Background()
	_ = h.controller.Start(ctx)

	if err := h.controller.Finish(ctx); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if !h.ticker.isStopped() {
		t.Fatalf("ticker must be stopped by Finish")
	}

	drainViews(h.views)
	select {
	case h.ticker.ch <- time.Now():
	case <-time.After(50 * time.Millisecond):
	}
	time.Sleep(20 * time.Millisecond)

	select {
	case view := <-h.views:
		t.Fatalf("no view expected after submission, got %+v", view)
	default:
	}
	if view := h.controller.View(); view.State != StateResult {
		t.Fatalf("state = %s, want result", view.State)
	}
}

func TestControllerFinishWhileSubmittingIsRejected(t *testing.T) {
	api := singleQuestionAPI()
	api.submitGate = make(chan struct{})
	h := newHarness(t, api, false)
	ctx := context.Background()
	_ = h.controller.Start(ctx)

	done := make(chan error, 1)
	go func() {
		done <- h.controller.Finish(ctx)
	}()
	h.waitForState(t, StateSubmitting)

	if err := h.controller.Finish(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Finish error = %v, want ErrBusy", err)
	}
	if done := h.fireTick(ctx); !done {
		t.Fatalf("tick during submission should report a finished timer")
	}

	close(api.submitGate)
	if err := <-done; err != nil {
		t.Fatalf("first Finish failed: %v", err)
	}
	if _, submits := api.calls(); submits != 1 {
		t.Fatalf("submit calls = %d, want 1", submits)
	}
}

func TestControllerDropsOvertakenViews(t *testing.T) {
	api := &fakeAPI{start: Start{Questions: sampleQuestions(), Timer: 30}}
	h := newHarness(t, api, false)

	if err := h.controller.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	drainViews(h.views)

	// A tick rendered before a concurrent finish but delivered after it.
	h.controller.mu.Lock()
	h.controller.session.Tick()
	tickView := h.controller.renderLocked()
	h.controller.state = StateSubmitting
	submitView := h.controller.renderLocked()
	h.controller.state = StateInProgress
	h.controller.mu.Unlock()

	h.controller.emit(submitView)
	h.controller.emit(tickView)

	select {
	case view := <-h.views:
		if view.State != StateSubmitting || view.Seq != submitView.Seq {
			t.Fatalf("first delivered view = %s seq %d, want submitting seq %d", view.State, view.Seq, submitView.Seq)
		}
	default:
		t.Fatalf("expected the submitting view to be delivered")
	}
	select {
	case view := <-h.views:
		t.Fatalf("stale view delivered: %s seq %d", view.State, view.Seq)
	default:
	}
}

func TestControllerStartFailureDegrades(t *testing.T) {
	api := &fakeAPI{startErr: errors.New("connection refused")}
	h := newHarness(t, api, true)

	err := h.controller.Start(context.Background())
	if err == nil {
		t.Fatalf("expected start error")
	}

	view := h.controller.View()
	if view.State != StateDegraded || !view.ShowQuestion {
		t.Fatalf("unexpected degraded view: %+v", view)
	}
	if view.QuestionText != "Quiz could not be loaded." {
		t.Fatalf("question text = %q", view.QuestionText)
	}
	if !view.PrevDisabled || !view.NextDisabled {
		t.Fatalf("navigation must be disabled: %+v", view)
	}

	if err := h.controller.Next(context.Background()); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("Next in degraded state error = %v, want ErrNotInProgress", err)
	}
	if err := h.controller.Start(context.Background()); !errors.Is(err, ErrStartLocked) {
		t.Fatalf("Start after locked failure error = %v, want ErrStartLocked", err)
	}
}

func TestControllerStartRetryAfterFailure(t *testing.T) {
	api := &fakeAPI{startErr: errors.New("bad gateway")}
	h := newHarness(t, api, false)
	ctx := context.Background()

	if err := h.controller.Start(ctx); err == nil {
		t.Fatalf("expected start error")
	}
	if view := h.controller.View(); view.StartDisabled {
		t.Fatalf("start control should be re-enabled after a failure")
	}

	api.mu.Lock()
	api.startErr = nil
	api.start = Start{Questions: sampleQuestions()}
	api.mu.Unlock()

	if err := h.controller.Start(ctx); err != nil {
		t.Fatalf("retry Start failed: %v", err)
	}
	if state := h.controller.State(); state != StateInProgress {
		t.Fatalf("state = %s, want in_progress", state)
	}
}

func TestControllerEmptyQuestionSetDegrades(t *testing.T) {
	h := newHarness(t, &fakeAPI{}, false)

	err := h.controller.Start(context.Background())
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("Start error = %v, want ErrNoQuestions", err)
	}
	if state := h.controller.State(); state != StateDegraded {
		t.Fatalf("state = %s, want degraded", state)
	}
}

func TestControllerSubmitFailureIsVisibleAndRetryable(t *testing.T) {
	api := singleQuestionAPI()
	api.submitErr = errors.New("gateway timeout")
	h := newHarness(t, api, false)
	ctx := context.Background()
	_ = h.controller.Start(ctx)
	_ = h.controller.Select(0)

	if err := h.controller.Finish(ctx); err == nil {
		t.Fatalf("expected submit error")
	}
	view := h.controller.View()
	if view.State != StateSubmitFailed || view.Error != SubmitFailedMessage {
		t.Fatalf("unexpected failed view: %+v", view)
	}
	if view.NextDisabled || view.NextLabel != "Finish" {
		t.Fatalf("finish must stay available for retry: %+v", view)
	}
	if err := h.controller.Select(1); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("Select after failed submit error = %v, want ErrNotInProgress", err)
	}

	api.mu.Lock()
	api.submitErr = nil
	api.mu.Unlock()

	if err := h.controller.Next(ctx); err != nil {
		t.Fatalf("retry via Next failed: %v", err)
	}
	if state := h.controller.State(); state != StateResult {
		t.Fatalf("state = %s, want result", state)
	}
	if _, submits := api.calls(); submits != 2 {
		t.Fatalf("submit calls = %d, want 2", submits)
	}
}

func TestControllerNewAttemptResetsAnswers(t *testing.T) {
	api := singleQuestionAPI()
	h := newHarness(t, api, false)
	ctx := context.Background()

	_ = h.controller.Start(ctx)
	_ = h.controller.Select(1)
	_ = h.controller.Finish(ctx)

	h.ticker = newFakeTicker()
	api.mu.Lock()
	api.start = Start{Questions: []Question{{ID: "9", Question: "Q9", Options: []string{"X", "Y"}}}}
	api.mu.Unlock()

	if err := h.controller.Start(ctx); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if err := h.controller.Finish(ctx); err != nil {
		t.Fatalf("second Finish failed: %v", err)
	}
	if len(api.submitted) != 2 || len(api.submitted[1]) != 0 {
		t.Fatalf("second attempt must start with no answers, got %v", api.submitted)
	}
}
