package convo

import (
	"fmt"
	"os"
	"strings"

	"github.com/snow-ghost/advisor/core"
)

const separator = "=================================="

// Transcript is the flat conversation dump written during the worker's
// lifetime: epoch notes as they happen, the full turn history at exit.
type Transcript struct {
	f *os.File
}

// OpenTranscript creates (or truncates) the transcript file.
func OpenTranscript(path string) (*Transcript, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	return &Transcript{f: f}, nil
}

// WriteNote appends a free-form line, used for epoch boundaries.
func (t *Transcript) WriteNote(note string) error {
	if _, err := fmt.Fprintln(t.f, note); err != nil {
		return fmt.Errorf("write transcript note: %w", err)
	}
	return t.f.Sync()
}

// Flush writes every turn as a role-tagged block in arrival order:
// capitalized role label, the content, a blank line, a separator line.
func (t *Transcript) Flush(turns []core.DialogTurn) error {
	for _, turn := range turns {
		if _, err := fmt.Fprintf(t.f, "%s:\n\n%s\n%s\n", capitalize(string(turn.Role)), turn.Content, separator); err != nil {
			return fmt.Errorf("write transcript turn: %w", err)
		}
	}
	return t.f.Sync()
}

// Close syncs and closes the underlying file.
func (t *Transcript) Close() error {
	return t.f.Close()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
