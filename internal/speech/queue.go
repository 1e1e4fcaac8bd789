// Package speech plays assistant messages one at a time in the order they were requested.
package speech

import (
	"log/slog"
	"strings"
	"sync"
)

// Player renders one message and calls done when it has finished.
// done may be called from any goroutine; calls after the first are ignored.
type Player interface {
	Play(text string, done func())
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(text string, done func())

// Play calls f(text, done).
func (f PlayerFunc) Play(text string, done func()) {
	f(text, done)
}

// Queue is a FIFO of messages in front of a Player. A message never interrupts
// the one currently playing.
type Queue struct {
	mu      sync.Mutex
	player  Player
	items   []string
	playing bool
	caption string
	log     *slog.Logger
}

// NewQueue creates a queue that plays through player.
func NewQueue(player Player, log *slog.Logger) *Queue {
	if log == nil {
		log = slog.Default()
	}

	return &Queue{
		player: player,
		log:    log,
	}
}

// Enqueue schedules text. The caption updates immediately, playback waits its turn.
func (q *Queue) Enqueue(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	q.mu.Lock()
	q.caption = text
	q.items = append(q.items, text)
	if q.playing {
		q.mu.Unlock()
		return
	}
	next, ok := q.popLocked()
	q.mu.Unlock()

	if ok {
		q.play(next)
	}
}

// Caption returns the most recently requested message.
func (q *Queue) Caption() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.caption
}

// Pending returns the number of messages waiting behind the one playing.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Playing reports whether a message is currently playing.
func (q *Queue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.playing
}

func (q *Queue) popLocked() (string, bool) {
	if len(q.items) == 0 {
		q.playing = false
		return "", false
	}

	next := q.items[0]
	q.items = q.items[1:]
	q.playing = true
	return next, true
}

func (q *Queue) play(text string) {
	if q.player == nil {
		q.finished()
		return
	}

	var once sync.Once
	q.log.Debug("playing message", "pending", q.Pending())
	q.player.Play(text, func() { once.Do(q.finished) })
}

func (q *Queue) finished() {
	q.mu.Lock()
	next, ok := q.popLocked()
	q.mu.Unlock()

	if ok {
		q.play(next)
	}
}
