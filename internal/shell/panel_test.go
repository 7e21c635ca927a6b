package shell

import (
	"context"
	"errors"
	"testing"
)

type fakePanels struct {
	fragments map[string]string
	err       error
	calls     []string
}

func (f *fakePanels) Panel(_ context.Context, name string) (string, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return "", f.err
	}
	return f.fragments[name], nil
}

func TestPanelLoaderReplacesContentVerbatim(t *testing.T) {
	source := &fakePanels{fragments: map[string]string{
		"phone":    `<div class="app-screen"><h3>Calls</h3></div>`,
		"messages": `<div class="app-screen"><p>aGVsbG8=</p></div>`,
	}}
	loader := NewPanelLoader(source, nil)

	got, err := loader.Load(context.Background(), PanelPhone)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != source.fragments["phone"] || loader.Content().Markup() != got {
		t.Fatalf("content = %q, want phone fragment", loader.Content().Markup())
	}

	if _, err := loader.Load(context.Background(), PanelMessages); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loader.Content().Markup() != source.fragments["messages"] {
		t.Fatalf("content = %q, want messages fragment", loader.Content().Markup())
	}
}

func TestPanelLoaderRefetchesEveryTime(t *testing.T) {
	source := &fakePanels{fragments: map[string]string{"phone": "<p>x</p>"}}
	loader := NewPanelLoader(source, nil)

	for i := 0; i < 3; i++ {
		_, _ = loader.Load(context.Background(), PanelPhone)
	}
	if len(source.calls) != 3 {
		t.Fatalf("panel fetches = %d, want 3", len(source.calls))
	}
}

func TestPanelLoaderFailureShowsErrorFragment(t *testing.T) {
	source := &fakePanels{err: errors.New("offline")}
	content := &ContentArea{}
	content.Replace("<p>old</p>")
	loader := NewPanelLoader(source, content)

	got, err := loader.Load(context.Background(), PanelMessages)
	if err == nil {
		t.Fatalf("expected load error")
	}
	if got != ErrorFragment || content.Markup() != ErrorFragment {
		t.Fatalf("content = %q, want error fragment", content.Markup())
	}
}

func TestParsePanel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Panel
		wantErr bool
	}{
		{name: "phone", input: "phone", want: PanelPhone},
		{name: "messages", input: "messages", want: PanelMessages},
		{name: "unknown", input: "camera", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePanel(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("ParsePanel(%q) = (%q, %v), want %q", tc.input, got, err, tc.want)
			}
		})
	}
}
