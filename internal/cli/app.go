package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"cybercase/internal/missionapi"
	"cybercase/internal/quiz"
	"cybercase/internal/shell"
)

const (
	defaultHTTPTimeout      = 5 * time.Second
	defaultLeaderboardLimit = 10

	playerCookieName = "cybercase_player"
	playerStorageKey = "player_cookie"
)

type Config struct {
	ServerURL   string
	HTTPTimeout time.Duration
	// Storage keeps notes and the player cookie for this session. Values are
	// lost on exit when it is nil.
	Storage   shell.Storage
	SessionID string
	// LockAfterLoadFailure disables quiz retries after a failed start.
	LockAfterLoadFailure bool
}

type app struct {
	out       io.Writer
	serverURL string
	baseURL   *url.URL
	sessionID string

	client   *missionapi.HTTPClient
	jar      http.CookieJar
	storage  shell.Storage
	panels   *shell.PanelLoader
	mission  *shell.Validator
	caseFile *shell.Validator
	notes    *shell.Notes
	quiz     *quiz.Controller
	printer  *quizPrinter
}

// Run starts the mission front-end and reads commands from in until exit or
// EOF.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if serverURL == "" {
		serverURL = missionapi.DefaultServer
	}
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	storage := cfg.Storage
	if storage == nil {
		storage = newMemoryStorage()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := &syncWriter{out: out}
	defer writer.close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}

	a := &app{
		out:       writer,
		serverURL: serverURL,
		baseURL:   baseURL,
		sessionID: cfg.SessionID,
		jar:       jar,
		storage:   storage,
	}
	a.client = missionapi.NewHTTPClient(serverURL, &http.Client{Timeout: timeout, Jar: jar})
	a.panels = shell.NewPanelLoader(a.client, nil)
	a.mission = shell.NewValidator(shell.MissionValidator(), a.client, a.navigate(ctx))
	a.caseFile = shell.NewValidator(shell.CaseValidator(), a.client, a.navigate(ctx))
	a.notes = shell.NewNotes(storage)
	a.printer = &quizPrinter{out: writer}
	a.quiz = quiz.NewController(quiz.Config{
		API:                  a.client,
		LockAfterLoadFailure: cfg.LockAfterLoadFailure,
		Notify:               a.printer.notify,
	})

	if err := a.restorePlayer(ctx); err != nil {
		fmt.Fprintf(writer, "warning: could not restore player: %v\n", err)
	}

	fmt.Fprintf(writer, "mission-cli\nserver=%s\n", serverURL)
	if a.sessionID != "" {
		fmt.Fprintf(writer, "session=%s\n", a.sessionID)
	}
	fmt.Fprintln(writer, shell.PollStatus(ctx, a.client))
	a.savePlayer(ctx)

	if text, err := a.notes.Load(ctx); err != nil {
		fmt.Fprintf(writer, "warning: could not load notes: %v\n", err)
	} else if text != "" {
		fmt.Fprintln(writer, "Notes restored. Type 'notes' to read them.")
	}

	fmt.Fprintln(writer)
	printHelp(writer)

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(writer, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(writer)
				return nil
			}
			continue
		}

		command, rest := splitCommand(line)
		switch command {
		case "help":
			printHelp(writer)
		case "exit", "quit":
			return nil
		case "phone", "messages":
			panel, err := shell.ParsePanel(command)
			if err != nil {
				fmt.Fprintf(writer, "error: %v\n", err)
				break
			}
			a.openPanel(ctx, panel)
		case "answer":
			printFeedback(writer, a.mission.Submit(ctx, rest))
		case "case-answer":
			printFeedback(writer, a.caseFile.Submit(ctx, rest))
		case "notes":
			a.showNotes()
		case "note":
			if rest == "" {
				fmt.Fprintln(writer, "usage: note <text>")
				break
			}
			if err := a.notes.Append(ctx, rest); err != nil {
				fmt.Fprintf(writer, "error: %v\n", err)
				break
			}
			fmt.Fprintln(writer, "Saved.")
		case "clear-notes":
			if err := a.notes.Clear(ctx); err != nil {
				fmt.Fprintf(writer, "error: %v\n", err)
				break
			}
			fmt.Fprintln(writer, "Notes cleared.")
		case "status":
			fmt.Fprintln(writer, shell.PollStatus(ctx, a.client))
		case "leaderboard":
			limit, parseErr := parsePositiveLimit(rest, defaultLeaderboardLimit)
			if parseErr != nil {
				fmt.Fprintf(writer, "invalid leaderboard limit: %v\n", parseErr)
				break
			}
			if err := a.showLeaderboard(ctx, limit); err != nil {
				fmt.Fprintf(writer, "error: %v\n", err)
			}
		case "session":
			if a.sessionID == "" {
				fmt.Fprintln(writer, "No persistent session.")
				break
			}
			fmt.Fprintf(writer, "session=%s (relaunch with --session %s to resume)\n", a.sessionID, a.sessionID)
		case "quiz":
			done, err := a.runQuiz(ctx, reader)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		default:
			fmt.Fprintln(writer, "unknown command. type 'help' for usage.")
		}
		a.savePlayer(ctx)

		if eof {
			fmt.Fprintln(writer)
			return nil
		}
	}
}

func (a *app) openPanel(ctx context.Context, panel shell.Panel) {
	markup, err := a.panels.Load(ctx, panel)
	fmt.Fprintln(a.out, fragmentText(markup))
	if err != nil {
		fmt.Fprintf(a.out, "(%v)\n", describeClientError(err, a.serverURL))
	}
}

func (a *app) showNotes() {
	text := a.notes.Text()
	if text == "" {
		fmt.Fprintln(a.out, "No notes yet. Add one with 'note <text>'.")
		return
	}
	fmt.Fprintln(a.out, text)
}

func (a *app) showLeaderboard(ctx context.Context, limit int) error {
	entries, err := a.client.Leaderboard(ctx, limit)
	if err != nil {
		return describeClientError(err, a.serverURL)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No quiz attempts yet.")
		return nil
	}

	fmt.Fprintln(a.out, "Leaderboard:")
	for idx, entry := range entries {
		fmt.Fprintf(a.out, "%d. %s score=%d badge=%s last=%s\n",
			idx+1,
			entry.Player,
			entry.Score,
			entry.Badge,
			entry.LastAttemptAt.Format(time.RFC3339),
		)
	}
	return nil
}

// navigate follows a validator redirect by loading the target page once the
// delay has passed.
func (a *app) navigate(ctx context.Context) func(string) {
	var mu sync.Mutex
	return func(target string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		markup, err := a.client.Panel(ctx, target)
		if err != nil {
			fmt.Fprintf(a.out, "\ncould not open %s: %v\n", target, describeClientError(err, a.serverURL))
			return
		}
		fmt.Fprintf(a.out, "\n%s\n", fragmentText(markup))
	}
}

// restorePlayer puts a player cookie saved by an earlier run back into the jar
// so the backend keeps recognising this session.
func (a *app) restorePlayer(ctx context.Context) error {
	value, ok, err := a.storage.Get(ctx, playerStorageKey)
	if err != nil || !ok || value == "" {
		return err
	}
	a.jar.SetCookies(a.baseURL, []*http.Cookie{{Name: playerCookieName, Value: value, Path: "/"}})
	return nil
}

func (a *app) savePlayer(ctx context.Context) {
	for _, cookie := range a.jar.Cookies(a.baseURL) {
		if cookie.Name != playerCookieName {
			continue
		}
		stored, ok, err := a.storage.Get(ctx, playerStorageKey)
		if err == nil && ok && stored == cookie.Value {
			return
		}
		_ = a.storage.Set(ctx, playerStorageKey, cookie.Value)
		return
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  phone | messages        open an app on the found phone")
	fmt.Fprintln(out, "  answer <name>           name the phone's owner")
	fmt.Fprintln(out, "  case-answer <name>      submit the case file answer")
	fmt.Fprintln(out, "  notes                   show your notes")
	fmt.Fprintln(out, "  note <text>             add a line to your notes")
	fmt.Fprintln(out, "  clear-notes")
	fmt.Fprintln(out, "  status")
	fmt.Fprintln(out, "  leaderboard [limit]")
	fmt.Fprintln(out, "  quiz                    enter the timed cyber quiz")
	fmt.Fprintln(out, "  session")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  exit")
}

func splitCommand(line string) (string, string) {
	command, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(command), strings.TrimSpace(rest)
}

func parsePositiveLimit(arg string, defaultValue int) (int, error) {
	if arg == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(arg)
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, missionapi.ErrServiceUnavailable) {
		return fmt.Errorf("mission service unavailable at %s", serverURL)
	}
	return err
}
