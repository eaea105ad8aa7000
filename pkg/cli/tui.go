package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Assistant label and accents
	Accent  lipgloss.Color // User label
	Dim     lipgloss.Color // Dimmed/help text color
	Error   lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Accent:  lipgloss.Color("#58a6ff"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#ff5f5f"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		User:      lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Help:      lipgloss.NewStyle().Foreground(t.Dim),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// Transcript prints a chat transcript with a styled label per speaker.
// Assistant text arrives as deltas; the label is printed before the first
// delta of a turn and EndTurn terminates the line. Safe for concurrent use.
type Transcript struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
	width  int
	open   bool
}

// NewTranscript returns a transcript writing to w. Info lines longer than
// width cells are cut; zero disables the limit.
func NewTranscript(w io.Writer, styles Styles, width int) *Transcript {
	return &Transcript{w: w, styles: styles, width: width}
}

// Title prints a heading line.
func (t *Transcript) Title(title, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
	line := t.styles.Title.Render(title)
	if status != "" {
		line += " " + t.styles.Help.Render("["+status+"]")
	}
	fmt.Fprintln(t.w, line)
}

// User prints a complete user line.
func (t *Transcript) User(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
	fmt.Fprintln(t.w, t.styles.User.Render("you ›")+" "+text)
}

// Prompt prints the user label without a newline, ready for input.
func (t *Transcript) Prompt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
	fmt.Fprint(t.w, t.styles.User.Render("you ›")+" ")
}

// Delta appends assistant text to the current turn.
func (t *Transcript) Delta(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		fmt.Fprint(t.w, t.styles.Assistant.Render("assistant ›")+" ")
		t.open = true
	}
	fmt.Fprint(t.w, text)
}

// EndTurn finishes the assistant line, if one is open.
func (t *Transcript) EndTurn() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
}

// Info prints a dimmed status line.
func (t *Transcript) Info(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
	text := fmt.Sprintf(format, args...)
	if t.width > 1 && lipgloss.Width(text) > t.width {
		text = truncateString(text, t.width-1) + "…"
	}
	fmt.Fprintln(t.w, t.styles.Help.Render(text))
}

// Error prints an error line.
func (t *Transcript) Error(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
	fmt.Fprintln(t.w, t.styles.Error.Render("error ›")+" "+fmt.Sprintf(format, args...))
}

func (t *Transcript) closeLocked() {
	if t.open {
		fmt.Fprintln(t.w)
		t.open = false
	}
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}

