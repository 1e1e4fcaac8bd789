package display

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/Proton-105/voice-journal/internal/capture"
)

const meterWidth = 12

var (
	meterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	fullMeterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	entryTypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Console renders snapshots, statuses and spoken lines to a terminal.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole writes to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Render prints the meter, the limit note and the login status.
func (c *Console) Render(s Snapshot) {
	style := meterStyle
	if s.LimitReached {
		style = fullMeterStyle
	}

	c.println(style.Render(fmt.Sprintf("%s %s", Bar(s.Fraction, meterWidth), s.Meter())))
	c.println(noteStyle.Render(s.Note()))
	c.println(noteStyle.Render(fmt.Sprintf("%s Balance: ₹%d", s.Login(), s.Credits)))
}

// Status prints a capture status line.
func (c *Console) Status(st capture.Status) {
	c.println(statusStyle.Render(st.Text))
}

// Assistant formats a spoken line.
func (c *Console) Assistant(text string) string {
	return assistantStyle.Render("assistant: ") + text
}

// Log prints the entry log.
func (c *Console) Log(s Snapshot) {
	if len(s.Entries) == 0 {
		c.println(noteStyle.Render(EmptyLog))
		return
	}
	for _, entry := range s.Entries {
		c.println(entryTypeStyle.Render(string(entry.Type)+":") + " " + entry.Text)
	}
}

// Println prints a plain line.
func (c *Console) Println(text string) {
	c.println(text)
}

func (c *Console) println(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.w, text)
}

// Bar draws fraction as a fixed-width progress bar.
func Bar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = math.Max(0, math.Min(1, fraction))
	filled := int(math.Round(fraction * float64(width)))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
