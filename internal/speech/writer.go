package speech

import (
	"fmt"
	"io"
	"sync"
)

// WriterPlayer prints each message on its own line and completes immediately.
type WriterPlayer struct {
	mu     sync.Mutex
	w      io.Writer
	format func(string) string
}

// NewWriterPlayer writes to w. format may be nil.
func NewWriterPlayer(w io.Writer, format func(string) string) *WriterPlayer {
	return &WriterPlayer{w: w, format: format}
}

// Play writes text and calls done.
func (p *WriterPlayer) Play(text string, done func()) {
	p.mu.Lock()
	if p.format != nil {
		text = p.format(text)
	}
	_, _ = fmt.Fprintln(p.w, text)
	p.mu.Unlock()

	done()
}
