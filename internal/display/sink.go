package display

import "sync"

// Sink receives a snapshot after every mutation.
type Sink interface {
	Render(Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot)

// Render calls f(s).
func (f SinkFunc) Render(s Snapshot) {
	f(s)
}

// Multi forwards each snapshot to every sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(s Snapshot) {
		for _, sink := range sinks {
			if sink != nil {
				sink.Render(s)
			}
		}
	})
}

// Latest keeps the most recent snapshot for readers on other goroutines.
type Latest struct {
	mu       sync.RWMutex
	snapshot Snapshot
	renders  int
}

// Render stores s.
func (l *Latest) Render(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = s
	l.renders++
}

// Snapshot returns the last stored snapshot.
func (l *Latest) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// Renders returns how many snapshots were stored.
func (l *Latest) Renders() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.renders
}
