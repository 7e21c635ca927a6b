package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"cybercase/internal/quiz"
	"cybercase/internal/shell"
)

// fragmentText flattens an HTML panel fragment into terminal lines. Block
// elements start new lines and list items get a bullet.
func fragmentText(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var (
		lines   []string
		current strings.Builder
	)
	flush := func() {
		line := strings.Join(strings.Fields(current.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			current.WriteString(node.Data)
			current.WriteString(" ")
			return
		case html.ElementNode:
			switch node.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.Br:
				flush()
				return
			}
		}

		block := isBlock(node)
		if block {
			flush()
			if node.DataAtom == atom.Li {
				current.WriteString("- ")
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if block {
			flush()
		}
	}

	for _, node := range nodes {
		walk(node)
	}
	flush()
	return strings.Join(lines, "\n")
}

func isBlock(node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	switch node.DataAtom {
	case atom.Div, atom.P, atom.Li, atom.Ul, atom.Ol, atom.Section, atom.Header, atom.Footer,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Tr, atom.Table:
		return true
	}
	return false
}

func printFeedback(out io.Writer, feedback shell.Feedback) {
	marker := "[!]"
	if feedback.Tone == shell.ToneSuccess {
		marker = "[ok]"
	}
	fmt.Fprintf(out, "%s %s\n", marker, feedback.Text)
	if feedback.Correct && feedback.Redirect != "" {
		fmt.Fprintf(out, "Opening %s in %s...\n", feedback.Redirect, feedback.Delay)
	}
}

func printView(out io.Writer, view quiz.View) {
	switch {
	case view.ShowIntro:
		if view.StartDisabled {
			fmt.Fprintf(out, "[%s]\n", view.StartLabel)
			return
		}
		fmt.Fprintf(out, "Cyber quiz. Type 'start' to begin (%s).\n", view.StartLabel)
	case view.ShowResult:
		fmt.Fprintln(out)
		fmt.Fprintln(out, view.ScoreText)
		fmt.Fprintf(out, "Badge: %s\n", view.Badge)
		printList(out, "Correct", view.Correct)
		printList(out, "Wrong", view.Wrong)
		fmt.Fprintln(out, "Type 'start' for a new attempt.")
	case view.ShowQuestion:
		if len(view.Options) == 0 {
			fmt.Fprintln(out, view.QuestionText)
			if view.Error != "" {
				fmt.Fprintf(out, "error: %s\n", view.Error)
			}
			if !view.StartDisabled {
				fmt.Fprintln(out, "Type 'start' to try again.")
			}
			return
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s  [%s]  %ds left\n", view.QuestionNumber, progressBar(view.Progress), view.Remaining)
		fmt.Fprintf(out, "%s\n\n", view.QuestionText)
		for idx, option := range view.Options {
			marker := " "
			if option.Selected {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %c. %s\n", marker, 'A'+idx, option.Text)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, navigationHint(view))
		if view.Error != "" {
			fmt.Fprintf(out, "error: %s\n", view.Error)
		}
	}
}

func navigationHint(view quiz.View) string {
	parts := make([]string, 0, 3)
	if !view.PrevDisabled {
		parts = append(parts, "prev")
	}
	lastQuestion := strings.EqualFold(view.NextLabel, "finish")
	if !view.NextDisabled {
		parts = append(parts, strings.ToLower(view.NextLabel))
	}
	if view.NextDisabled || !lastQuestion {
		parts = append(parts, "finish")
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func progressBar(percent float64) string {
	const width = 20
	filled := int(percent / 100 * width)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func printList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}

// syncWriter serializes output from the REPL, the quiz timer and delayed
// redirects. Writes after close are dropped.
type syncWriter struct {
	mu     sync.Mutex
	out    io.Writer
	closed bool
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return len(p), nil
	}
	return w.out.Write(p)
}

func (w *syncWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}
