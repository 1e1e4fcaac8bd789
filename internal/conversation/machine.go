// Package conversation drives the journaling dialogue for one session.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/Proton-105/voice-journal/internal/capture"
	"github.com/Proton-105/voice-journal/internal/display"
	"github.com/Proton-105/voice-journal/internal/domain"
	apperrors "github.com/Proton-105/voice-journal/internal/errors"
	"github.com/Proton-105/voice-journal/internal/journal"
	"github.com/Proton-105/voice-journal/internal/state"
	"github.com/Proton-105/voice-journal/internal/topic"
	"github.com/Proton-105/voice-journal/internal/valuation"
	"github.com/Proton-105/voice-journal/pkg/logger"
	"github.com/Proton-105/voice-journal/pkg/metrics"
)

// Speaker accepts assistant messages for playback. speech.Queue satisfies it.
type Speaker interface {
	Enqueue(text string)
}

// Chooser picks an index in [0, n).
type Chooser func(n int) int

// Config wires a Machine to its collaborators. Storage and Speaker are required.
type Config struct {
	SessionID  string
	Storage    state.Storage
	Speaker    Speaker
	Display    display.Sink
	Status     capture.StatusSink
	Chooser    Chooser
	Overflow   OverflowPolicy
	MaxEntries int
	Clock      func() time.Time
	Log        *slog.Logger
}

// Machine is the conversation state machine of one session. All methods are safe
// for concurrent use; events are applied one at a time.
type Machine struct {
	mu       sync.Mutex
	session  state.Session
	entries  *journal.Store
	storage  state.Storage
	speaker  Speaker
	display  display.Sink
	chooser  Chooser
	overflow OverflowPolicy
	caption  string
	capture  *capture.Controller
	log      *slog.Logger
}

// New loads the persisted session and returns its machine.
func New(ctx context.Context, cfg Config) (*Machine, error) {
	if cfg.Storage == nil {
		return nil, errors.New("conversation: storage is required")
	}
	if cfg.Speaker == nil {
		return nil, errors.New("conversation: speaker is required")
	}
	if cfg.SessionID == "" {
		return nil, apperrors.NewValidationError("session id is required")
	}

	overflow, err := ParseOverflow(string(cfg.Overflow))
	if err != nil {
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("session_id", cfg.SessionID))

	chooser := cfg.Chooser
	if chooser == nil {
		chooser = rand.IntN
	}

	sink := cfg.Display
	if sink == nil {
		sink = display.SinkFunc(func(display.Snapshot) {})
	}

	session, entries, err := cfg.Storage.LoadSession(ctx, cfg.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", cfg.SessionID, err)
	}
	session.ID = cfg.SessionID

	opts := []journal.Option{journal.WithMax(cfg.MaxEntries)}
	if cfg.Clock != nil {
		opts = append(opts, journal.WithClock(cfg.Clock))
	}

	m := &Machine{
		session:  session,
		entries:  journal.NewStore(cfg.SessionID, cfg.Storage, entries, opts...),
		storage:  cfg.Storage,
		speaker:  cfg.Speaker,
		display:  sink,
		chooser:  chooser,
		overflow: overflow,
		log:      log,
	}

	m.capture = capture.NewController(m.HandleUtterance, cfg.Status, log)
	m.capture.OnFailure(func(error) { metrics.RecordCaptureFailure() })

	log.Debug("session loaded",
		slog.String("state", string(m.current())),
		slog.Int("entries", m.entries.Count()),
		slog.Int64("credits", session.Credits),
	)

	return m, nil
}

// ID returns the session identifier.
func (m *Machine) ID() string {
	return m.session.ID
}

// Welcome speaks the opening greeting and renders the initial view.
func (m *Machine) Welcome(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.speak(Greetings[0])
	m.render()
}

// Listen runs one capture session and feeds its transcript to HandleUtterance.
// It returns capture.ErrCaptureActive when another session is running.
func (m *Machine) Listen(ctx context.Context, src capture.Source) error {
	return m.capture.Start(ctx, src)
}

// HandleUtterance applies one completed transcript. Blank text is ignored.
func (m *Machine) HandleUtterance(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.RecordIgnored("empty")
		return nil
	}

	ctx = withTurn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.current()

	var err error
	switch from {
	case state.StateLoggedOut:
		err = m.login(ctx, text)
	case state.StateAwaitingAnswer:
		err = m.answer(ctx, text)
	case state.StateIdle:
		err = m.entry(ctx, text)
	case state.StateFull:
		err = m.overflowed(ctx, text)
	default:
		err = apperrors.NewStateError(fmt.Sprintf("unknown state %q", from), nil)
	}
	if err != nil {
		m.log.ErrorContext(ctx, "utterance not applied", slog.String("state", string(from)), slog.Any("error", err))
		m.render()
		return err
	}

	return m.finish(ctx, "utterance", from, slog.String(logger.UtteranceKey, text))
}

// Sell credits the current offer, clears the entries and drops any pending question.
// With no entries it only explains that there is nothing to sell.
func (m *Machine) Sell(ctx context.Context) (domain.Offer, error) {
	ctx = withTurn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.current()

	if m.entries.Count() == 0 {
		m.speak(NothingToSell)
		return domain.NoOffer, m.finish(ctx, "sell", from)
	}

	offer := valuation.ComputeOffer(m.entries.Entries())
	balance := m.session.Credits + int64(offer.Amount)

	if err := m.storage.SaveCredits(ctx, m.session.ID, balance); err != nil {
		m.log.ErrorContext(ctx, "failed to credit offer", slog.Int("amount", offer.Amount), slog.Any("error", err))
		return domain.NoOffer, err
	}
	m.session.Credits = balance

	if err := m.entries.Clear(ctx); err != nil {
		m.log.ErrorContext(ctx, "failed to clear sold entries", slog.Any("error", err))
		m.render()
		return offer, err
	}
	m.session.ClearQuestion()

	m.speak(SellMessage(offer.Amount, balance))
	metrics.RecordSell(offer.Label, offer.Amount)

	return offer, m.finish(ctx, "sell", from,
		slog.Int("amount", offer.Amount),
		slog.String("label", offer.Label),
		slog.Int64("balance", balance),
	)
}

// Cancel declines the offer. Nothing is mutated.
func (m *Machine) Cancel(ctx context.Context) {
	ctx = withTurn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.current()
	m.speak(Cancelled)
	metrics.RecordCancel()

	_ = m.finish(ctx, "cancel", from)
}

// State returns the current conversation state.
func (m *Machine) State() state.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current()
}

// Session returns a copy of the session flags.
func (m *Machine) Session() state.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.session
}

// Snapshot returns the current view.
func (m *Machine) Snapshot() display.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snapshot()
}

func (m *Machine) login(ctx context.Context, text string) error {
	if err := m.storage.SaveLoggedIn(ctx, m.session.ID, true); err != nil {
		return err
	}
	m.session.LoggedIn = true

	m.speak(LoginMessage(m.greeting()))

	if m.entries.IsFull() {
		m.log.WarnContext(ctx, "login utterance not stored, journal already full")
		metrics.RecordIgnored("limit")
		return nil
	}
	return m.store(ctx, text, domain.EntryLogin)
}

func (m *Machine) answer(ctx context.Context, text string) error {
	if err := m.store(ctx, text, domain.EntryAnswer); err != nil {
		return err
	}

	m.session.ClearQuestion()
	m.speak(AnswerAck)
	return nil
}

func (m *Machine) entry(ctx context.Context, text string) error {
	if err := m.store(ctx, text, domain.EntryFree); err != nil {
		return err
	}

	if m.entries.IsFull() {
		m.speak(LimitReached)
		return nil
	}

	question := topic.Classify(text)
	m.session.Ask(question)
	m.speak(question)
	return nil
}

func (m *Machine) overflowed(ctx context.Context, text string) error {
	if m.entries.Count() < m.overflow.limit(m.entries.Max()) {
		if err := m.store(ctx, text, domain.EntryFree); err != nil {
			return err
		}
	} else {
		metrics.RecordIgnored("limit")
	}

	m.speak(LimitReached)
	return nil
}

func (m *Machine) store(ctx context.Context, text string, typ domain.EntryType) error {
	stored, err := m.entries.Append(ctx, text, typ)
	if err != nil {
		return err
	}
	if stored {
		metrics.RecordEntry(string(typ))
	}
	return nil
}

// finish validates the turn, logs it and pushes a fresh snapshot.
func (m *Machine) finish(ctx context.Context, event string, from state.State, attrs ...slog.Attr) error {
	to := m.current()

	if err := state.Transition(from, to); err != nil {
		m.log.ErrorContext(ctx, "illegal transition", slog.String("event", event), slog.Any("error", err))
		m.render()
		return apperrors.NewStateError(err.Error(), err)
	}

	attrs = append(attrs,
		slog.String("event", event),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.Int("entries", m.entries.Count()),
	)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	m.log.LogAttrs(ctx, slog.LevelDebug, "turn applied", attrs...)

	m.render()
	return nil
}

func (m *Machine) current() state.State {
	return m.session.Current(m.entries.IsFull())
}

func (m *Machine) greeting() string {
	idx := m.chooser(len(Greetings))
	if idx < 0 || idx >= len(Greetings) {
		idx = 0
	}
	return Greetings[idx]
}

func (m *Machine) speak(text string) {
	m.caption = text
	m.speaker.Enqueue(text)
	metrics.RecordSpeech()
}

func (m *Machine) render() {
	m.display.Render(m.snapshot())
}

func (m *Machine) snapshot() display.Snapshot {
	entries := m.entries.Entries()
	return display.Snapshot{
		SessionID:    m.session.ID,
		State:        m.current(),
		Entries:      entries,
		Offer:        valuation.ComputeOffer(entries),
		Fraction:     m.entries.Fraction(),
		LimitReached: m.entries.IsFull(),
		LoggedIn:     m.session.LoggedIn,
		Credits:      m.session.Credits,
		Caption:      m.caption,
	}
}

func withTurn(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger.CorrelationIDFromContext(ctx) != "" {
		return ctx
	}
	return logger.WithCorrelationID(ctx, logger.NewCorrelationID())
}
