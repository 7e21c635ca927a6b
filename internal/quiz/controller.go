package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const tickInterval = time.Second

type Config struct {
	API       API
	NewTicker func(time.Duration) Ticker
	// LockAfterLoadFailure keeps the start control disabled once a start
	// request fails, so the player has to relaunch to try again.
	LockAfterLoadFailure bool
	// Notify receives a fresh View after every transition, timer ticks included.
	// It is called without the controller lock held, in transition order; a
	// view overtaken by a later one is dropped. Notify must not call back into
	// the controller.
	Notify func(View)
}

// Controller drives one quiz attempt at a time: intro, loading, questions,
// submission and result. All transitions go through mu, which makes the
// timer goroutine and user actions a single writer.
type Controller struct {
	api        API
	newTicker  func(time.Duration) Ticker
	lockOnFail bool
	notify     func(View)

	mu      sync.Mutex
	state   State
	session *Session
	result  *Result
	message string
	ticker  Ticker
	stop    chan struct{}
	seq     uint64

	emitMu  sync.Mutex
	emitted uint64
}

func NewController(cfg Config) *Controller {
	newTicker := cfg.NewTicker
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &Controller{
		api:        cfg.API,
		newTicker:  newTicker,
		lockOnFail: cfg.LockAfterLoadFailure,
		notify:     cfg.Notify,
		state:      StateIntro,
	}
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start requests a new question set. ctx bounds the whole attempt: the
// countdown stops when it is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateIntro, StateResult:
	case StateDegraded:
		if c.lockOnFail {
			c.mu.Unlock()
			return ErrStartLocked
		}
	default:
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateLoading
	c.session = nil
	c.result = nil
	c.message = ""
	view := c.renderLocked()
	c.mu.Unlock()
	c.emit(view)

	start, err := c.api.StartQuiz(ctx)
	if err == nil && len(start.Questions) == 0 {
		err = ErrNoQuestions
	}

	c.mu.Lock()
	if err != nil {
		c.state = StateDegraded
		c.message = err.Error()
		view = c.renderLocked()
		c.mu.Unlock()
		c.emit(view)
		return fmt.Errorf("start quiz: %w", err)
	}

	c.session = NewSession(start.Questions, start.Timer)
	c.state = StateInProgress
	ticker := c.newTicker(tickInterval)
	stop := make(chan struct{})
	c.ticker = ticker
	c.stop = stop
	view = c.renderLocked()
	c.mu.Unlock()

	go c.runTimer(ctx, ticker, stop)
	c.emit(view)
	return nil
}

func (c *Controller) Prev() error {
	c.mu.Lock()
	if c.state != StateInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	c.session.Prev()
	view := c.renderLocked()
	c.mu.Unlock()
	c.emit(view)
	return nil
}

// Next moves to the following question, or submits when the current one is
// the last.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateInProgress && c.session.Next() {
		view := c.renderLocked()
		c.mu.Unlock()
		c.emit(view)
		return nil
	}
	answers, err := c.beginSubmitLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	view := c.renderLocked()
	c.mu.Unlock()
	c.emit(view)

	return c.completeSubmit(ctx, answers)
}

func (c *Controller) Finish(ctx context.Context) error {
	c.mu.Lock()
	answers, err := c.beginSubmitLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	view := c.renderLocked()
	c.mu.Unlock()
	c.emit(view)

	return c.completeSubmit(ctx, answers)
}

func (c *Controller) Select(option int) error {
	c.mu.Lock()
	if c.state != StateInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	if err := c.session.Select(option); err != nil {
		c.mu.Unlock()
		return err
	}
	view := c.renderLocked()
	c.mu.Unlock()
	c.emit(view)
	return nil
}

func (c *Controller) runTimer(ctx context.Context, ticker Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			c.mu.Lock()
			if c.stop == stop {
				c.stopTimerLocked()
			}
			c.mu.Unlock()
			return
		case <-ticker.C():
			if done := c.tick(ctx, stop); done {
				return
			}
		}
	}
}

// tick applies one countdown step for the timer identified by stop and
// reports whether that timer is finished.
func (c *Controller) tick(ctx context.Context, stop <-chan struct{}) bool {
	c.mu.Lock()
	if c.stop == nil || c.stop != stop || c.state != StateInProgress {
		c.mu.Unlock()
		return true
	}

	if !c.session.Tick() {
		view := c.renderLocked()
		c.mu.Unlock()
		c.emit(view)
		return false
	}

	answers, err := c.beginSubmitLocked()
	view := c.renderLocked()
	c.mu.Unlock()
	if err != nil {
		return true
	}
	c.emit(view)
	_ = c.completeSubmit(ctx, answers)
	return true
}

func (c *Controller) beginSubmitLocked() (AnswerMap, error) {
	if c.state != StateInProgress && c.state != StateSubmitFailed {
		if c.state == StateSubmitting {
			return nil, ErrBusy
		}
		return nil, ErrNotInProgress
	}
	if !c.session.BeginSubmit() {
		return nil, ErrBusy
	}
	c.stopTimerLocked()
	c.state = StateSubmitting
	c.message = ""
	return c.session.snapshotAnswers(), nil
}

func (c *Controller) completeSubmit(ctx context.Context, answers AnswerMap) error {
	result, err := c.api.SubmitQuiz(ctx, answers)

	c.mu.Lock()
	if err != nil {
		c.session.abortSubmit()
		c.state = StateSubmitFailed
		c.message = SubmitFailedMessage
		view := c.renderLocked()
		c.mu.Unlock()
		c.emit(view)
		return fmt.Errorf("submit quiz: %w", err)
	}

	c.result = &result
	c.state = StateResult
	view := c.renderLocked()
	c.mu.Unlock()
	c.emit(view)
	return nil
}

func (c *Controller) stopTimerLocked() {
	if c.stop == nil {
		return
	}
	c.ticker.Stop()
	close(c.stop)
	c.ticker = nil
	c.stop = nil
}

func (c *Controller) renderLocked() View {
	view := Render(Snapshot{
		State:       c.state,
		Session:     c.session,
		Result:      c.result,
		Message:     c.message,
		StartLocked: c.lockOnFail,
	})
	c.seq++
	view.Seq = c.seq
	return view
}

func (c *Controller) emit(view View) {
	if c.notify == nil {
		return
	}
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if view.Seq <= c.emitted {
		return
	}
	c.emitted = view.Seq
	c.notify(view)
}
