package shell

import (
	"context"
	"fmt"
	"sync"
)

type Panel string

const (
	PanelPhone    Panel = "phone"
	PanelMessages Panel = "messages"

	ErrorFragment = `<div class="app-screen"><p>Error loading app.</p></div>`
)

func ParsePanel(name string) (Panel, error) {
	switch Panel(name) {
	case PanelPhone, PanelMessages:
		return Panel(name), nil
	default:
		return "", fmt.Errorf("unknown panel %q", name)
	}
}

type PanelSource interface {
	Panel(ctx context.Context, name string) (string, error)
}

// ContentArea holds the markup of the currently shown panel.
type ContentArea struct {
	mu     sync.Mutex
	markup string
}

func (a *ContentArea) Replace(markup string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.markup = markup
}

func (a *ContentArea) Markup() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.markup
}

type PanelLoader struct {
	source  PanelSource
	content *ContentArea
}

func NewPanelLoader(source PanelSource, content *ContentArea) *PanelLoader {
	if content == nil {
		content = &ContentArea{}
	}
	return &PanelLoader{source: source, content: content}
}

// Load fetches the panel on every call and swaps it into the content area
// verbatim. A failed fetch shows ErrorFragment instead; the error is
// returned for logging only.
func (l *PanelLoader) Load(ctx context.Context, panel Panel) (string, error) {
	markup, err := l.source.Panel(ctx, string(panel))
	if err != nil {
		l.content.Replace(ErrorFragment)
		return ErrorFragment, err
	}
	l.content.Replace(markup)
	return markup, nil
}

func (l *PanelLoader) Content() *ContentArea {
	return l.content
}
