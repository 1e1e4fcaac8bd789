package capture

import "fmt"

// StatusKind identifies a capture status line.
type StatusKind string

const (
	StatusListening   StatusKind = "listening"
	StatusHeard       StatusKind = "heard"
	StatusReady       StatusKind = "ready"
	StatusFailed      StatusKind = "failed"
	StatusUnsupported StatusKind = "unsupported"
)

// Status is one progress report of a capture session.
type Status struct {
	Kind StatusKind
	Text string
}

// StatusSink receives capture progress.
type StatusSink interface {
	Status(Status)
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(Status)

// Status calls f(s).
func (f StatusFunc) Status(s Status) {
	f(s)
}

// NewStatus builds the status of kind. heard is only used by StatusHeard.
func NewStatus(kind StatusKind, heard string) Status {
	var text string
	switch kind {
	case StatusListening:
		text = "Listening..."
	case StatusHeard:
		text = fmt.Sprintf(`Heard: "%s"`, heard)
	case StatusReady:
		text = "Tap the mic when you want to speak."
	case StatusFailed:
		text = "Couldn't capture audio. Try again."
	case StatusUnsupported:
		text = "Speech recognition is not supported on this device."
	}

	return Status{Kind: kind, Text: text}
}
