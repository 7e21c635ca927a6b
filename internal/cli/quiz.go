package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"cybercase/internal/quiz"
)

// quizPrinter receives controller notifications. It prints full views on
// state changes and a countdown line on selected ticks; views caused by
// navigation are printed by the command that caused them.
type quizPrinter struct {
	out io.Writer

	mu        sync.Mutex
	lastState quiz.State
	lastLeft  int
}

func (p *quizPrinter) notify(view quiz.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if view.State == p.lastState {
		if view.State == quiz.StateInProgress && view.Remaining != p.lastLeft {
			p.lastLeft = view.Remaining
			if view.Remaining%30 == 0 || view.Remaining <= 5 {
				fmt.Fprintf(p.out, "\n[%ds left]\n", view.Remaining)
			}
		}
		return
	}

	p.lastState = view.State
	p.lastLeft = view.Remaining
	switch view.State {
	case quiz.StateLoading:
		fmt.Fprintln(p.out, view.StartLabel)
	case quiz.StateSubmitting:
		if view.Remaining == 0 {
			fmt.Fprintln(p.out, "\nTime is up!")
		}
		fmt.Fprintln(p.out, "Submitting answers...")
	default:
		printView(p.out, view)
	}
}

// runQuiz handles quiz commands until the player goes back. done reports that
// input ended or the player asked to exit the program.
func (a *app) runQuiz(ctx context.Context, reader *bufio.Reader) (bool, error) {
	printQuizHelp(a.out)
	printView(a.out, a.quiz.View())

	for {
		fmt.Fprint(a.out, "\nquiz> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line != "" {
			command, _ := splitCommand(line)
			switch command {
			case "back":
				return false, nil
			case "exit", "quit":
				return true, nil
			default:
				a.quizCommand(ctx, command)
			}
		}

		if eof {
			fmt.Fprintln(a.out)
			return true, nil
		}
	}
}

func (a *app) quizCommand(ctx context.Context, command string) {
	switch command {
	case "help":
		printQuizHelp(a.out)
	case "show":
		printView(a.out, a.quiz.View())
	case "start":
		if err := a.quiz.Start(ctx); err != nil {
			a.reportQuizError(err)
		}
	case "next":
		a.navigateQuiz(func() error { return a.quiz.Next(ctx) })
	case "prev":
		a.navigateQuiz(a.quiz.Prev)
	case "finish":
		if err := a.quiz.Finish(ctx); err != nil {
			a.reportQuizError(err)
		}
	default:
		option, ok := parseOption(command)
		if !ok {
			fmt.Fprintln(a.out, "unknown quiz command. type 'help' for usage.")
			return
		}
		a.navigateQuiz(func() error { return a.quiz.Select(option) })
	}
}

// navigateQuiz runs an in-question action and shows the question again when
// the quiz is still in progress afterwards.
func (a *app) navigateQuiz(action func() error) {
	if err := action(); err != nil {
		a.reportQuizError(err)
		return
	}
	if view := a.quiz.View(); view.State == quiz.StateInProgress {
		printView(a.out, view)
	}
}

func (a *app) reportQuizError(err error) {
	switch {
	case errors.Is(err, quiz.ErrNotInProgress):
		fmt.Fprintln(a.out, "No quiz in progress. Type 'start' to begin.")
	case errors.Is(err, quiz.ErrBusy):
		fmt.Fprintln(a.out, "Please wait...")
	case errors.Is(err, quiz.ErrStartLocked):
		fmt.Fprintln(a.out, "The quiz is unavailable. Relaunch to try again.")
	case errors.Is(err, quiz.ErrInvalidOption):
		fmt.Fprintln(a.out, "No such option.")
	default:
		// Load and submit failures are already shown through the view.
	}
}

// parseOption accepts a letter (a, B) or a 1-based number.
func parseOption(command string) (int, bool) {
	if len(command) == 1 && command[0] >= 'a' && command[0] <= 'z' {
		return int(command[0] - 'a'), true
	}
	number, err := strconv.Atoi(command)
	if err != nil || number < 1 {
		return 0, false
	}
	return number - 1, true
}

func printQuizHelp(out io.Writer) {
	fmt.Fprintln(out, "Quiz commands:")
	fmt.Fprintln(out, "  start          begin an attempt")
	fmt.Fprintln(out, "  a | b | c ...  choose an option (or 1, 2, 3...)")
	fmt.Fprintln(out, "  next | prev")
	fmt.Fprintln(out, "  finish         submit now")
	fmt.Fprintln(out, "  show")
	fmt.Fprintln(out, "  back           return to the phone")
	fmt.Fprintln(out, "  exit")
}
