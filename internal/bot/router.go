package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/bot/handlers"
	"github.com/Proton-105/voice-journal/internal/bot/keyboard"
)

// Router dispatches commands, callbacks, voice notes and plain text.
type Router struct {
	mu        sync.RWMutex
	commands  map[string]handlers.Handler
	callbacks map[string]handlers.CallbackHandler
	voice     handlers.Handler
	text      handlers.Handler
	unknown   handlers.Handler
	chain     []handlers.Middleware
	log       *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:  map[string]handlers.Handler{},
		callbacks: map[string]handlers.CallbackHandler{},
		log:       log,
	}
}

func (r *Router) locked(fn func()) {
	r.mu.Lock()
	fn()
	r.mu.Unlock()
}

// RegisterCommand binds a "/name" command.
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.locked(func() { r.commands[cmd] = h })
}

// RegisterCallback binds a keyboard button by its unique identifier.
func (r *Router) RegisterCallback(unique string, h handlers.CallbackHandler) {
	r.locked(func() { r.callbacks[unique] = h })
}

// Use appends a middleware. The first one added runs outermost.
func (r *Router) Use(mw handlers.Middleware) {
	r.locked(func() { r.chain = append(r.chain, mw) })
}

// SetDefault sets the handler for plain text.
func (r *Router) SetDefault(h handlers.Handler) {
	r.locked(func() { r.text = h })
}

// SetVoice sets the handler for voice, audio and video notes.
func (r *Router) SetVoice(h handlers.Handler) {
	r.locked(func() { r.voice = h })
}

// SetUnknownCommand sets the handler for unregistered commands.
// Without one, unknown commands are dropped rather than journaled.
func (r *Router) SetUnknownCommand(h handlers.Handler) {
	r.locked(func() { r.unknown = h })
}

// Route picks a handler for the update and runs it through the middleware chain.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	r.mu.RLock()
	h, kind := r.resolve(c)
	chain := append([]handlers.Middleware(nil), r.chain...)
	r.mu.RUnlock()

	if h == nil {
		r.log.Debug("update dropped", slog.String("kind", kind))
		return nil
	}

	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h(c)
}

// resolve must be called with r.mu held.
func (r *Router) resolve(c telebot.Context) (handlers.Handler, string) {
	if cb := c.Callback(); cb != nil {
		unique, _, err := keyboard.DecodeCallback(cb.Data)
		if err != nil {
			return nil, "invalid callback"
		}
		if h, ok := r.callbacks[unique]; ok && h != nil {
			return handlers.Handler(h), "callback"
		}
		return nil, "callback " + unique
	}

	if msg := c.Message(); msg != nil && isVoice(msg) {
		return r.voice, "voice"
	}

	text := c.Text()
	if !strings.HasPrefix(text, "/") {
		return r.text, "text"
	}

	name := commandName(text)
	if h, ok := r.commands[name]; ok && h != nil {
		return h, name
	}
	return r.unknown, "command " + name
}

func isVoice(msg *telebot.Message) bool {
	return msg.Voice != nil || msg.Audio != nil || msg.VideoNote != nil
}

// commandName strips arguments and the @botname suffix: "/sell@journal_bot now" -> "/sell".
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return name
}
