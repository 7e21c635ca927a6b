package shell

import "context"

const NotesKey = "mission_notes"

// Storage is a session scoped string store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Notes struct {
	store Storage
	text  string
}

func NewNotes(store Storage) *Notes {
	return &Notes{store: store}
}

// Load restores the stored text, or the empty string when nothing is stored.
func (n *Notes) Load(ctx context.Context) (string, error) {
	text, ok, err := n.store.Get(ctx, NotesKey)
	if err != nil {
		return "", err
	}
	if !ok {
		text = ""
	}
	n.text = text
	return text, nil
}

// Input replaces the text and writes it through to storage.
func (n *Notes) Input(ctx context.Context, text string) error {
	n.text = text
	return n.store.Set(ctx, NotesKey, text)
}

func (n *Notes) Append(ctx context.Context, line string) error {
	text := n.text
	if text != "" {
		text += "\n"
	}
	return n.Input(ctx, text+line)
}

func (n *Notes) Clear(ctx context.Context) error {
	n.text = ""
	return n.store.Delete(ctx, NotesKey)
}

func (n *Notes) Text() string {
	return n.text
}
