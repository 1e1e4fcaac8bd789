// Package metrics exposes the journal's Prometheus instruments.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Proton-105/voice-journal/internal/state"
)

// DefaultCollectInterval is how often SessionCollector polls session counts.
const DefaultCollectInterval = 10 * time.Second

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_bot_commands_total",
			Help: "Total number of bot updates handled labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journal_command_duration_seconds",
			Help:    "Duration of bot updates in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	entriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_entries_total",
			Help: "Total number of stored entries labeled by type",
		},
		[]string{"type"},
	)
	ignoredUtterancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_ignored_utterances_total",
			Help: "Utterances that were not stored labeled by reason",
		},
		[]string{"reason"},
	)
	sellsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_sells_total",
			Help: "Accepted offers labeled by offer label",
		},
		[]string{"label"},
	)
	creditsEarnedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_credits_earned_total",
			Help: "Sum of all credited offer amounts",
		},
	)
	cancelsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_cancels_total",
			Help: "Rejected offers",
		},
	)
	captureFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_capture_failures_total",
			Help: "Capture sessions that produced no transcript because of an error",
		},
	)
	speechMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "journal_speech_messages_total",
			Help: "Assistant messages queued for playback",
		},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "journal_active_sessions",
			Help: "Current number of sessions held in memory",
		},
	)
	sessionsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "journal_sessions_by_state",
			Help: "Number of sessions per conversation state",
		},
		[]string{"state"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStateTransition)
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	command = orUnknown(command)
	botCommandsTotal.WithLabelValues(command, orUnknown(status)).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordStateTransition tracks conversation transitions.
func RecordStateTransition(from, to string) {
	stateTransitionsTotal.WithLabelValues(orUnknown(from), orUnknown(to)).Inc()
}

// RecordEntry counts a stored entry.
func RecordEntry(entryType string) {
	entriesTotal.WithLabelValues(orUnknown(entryType)).Inc()
}

// RecordIgnored counts an utterance that was not stored.
func RecordIgnored(reason string) {
	ignoredUtterancesTotal.WithLabelValues(orUnknown(reason)).Inc()
}

// RecordSell counts an accepted offer and the credited amount.
func RecordSell(label string, amount int) {
	sellsTotal.WithLabelValues(orUnknown(label)).Inc()
	if amount > 0 {
		creditsEarnedTotal.Add(float64(amount))
	}
}

// RecordCancel counts a rejected offer.
func RecordCancel() {
	cancelsTotal.Inc()
}

// RecordCaptureFailure counts a failed capture session.
func RecordCaptureFailure() {
	captureFailuresTotal.Inc()
}

// RecordSpeech counts a queued assistant message.
func RecordSpeech() {
	speechMessagesTotal.Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	errorsTotal.WithLabelValues(orUnknown(code), orUnknown(severity)).Inc()
}

// SetActiveSessions updates the gauge for sessions held in memory.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// SetSessionsByState updates the gauge for the given state.
func SetSessionsByState(state string, count int) {
	sessionsByState.WithLabelValues(orUnknown(state)).Set(float64(count))
}

// SessionCounter reports live sessions grouped by state.
type SessionCounter interface {
	CountByState() map[state.State]int
}

// SessionCollector periodically gathers session counts and emits gauge metrics.
type SessionCollector struct {
	sessions SessionCounter
	interval time.Duration
}

// NewSessionCollector builds a collector bound to sessions. A non-positive interval uses DefaultCollectInterval.
func NewSessionCollector(sessions SessionCounter, interval time.Duration) *SessionCollector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	return &SessionCollector{sessions: sessions, interval: interval}
}

// Run polls the session counts until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.Collect()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Collect updates the session gauges once.
func (c *SessionCollector) Collect() {
	counts := c.sessions.CountByState()

	total := 0
	sessionsByState.Reset()
	for _, tracked := range state.States {
		SetSessionsByState(string(tracked), counts[tracked])
		total += counts[tracked]
		delete(counts, tracked)
	}
	for label, count := range counts {
		SetSessionsByState(string(label), count)
		total += count
	}

	SetActiveSessions(total)
}
