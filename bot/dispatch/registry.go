// Package dispatch maps routing keys to handler functions and invokes
// them with an explicit dependency set. A routing key is the command
// token for command messages and the verbatim callback payload for
// button presses.
//
// Registries are populated during single-threaded startup and are
// read-only afterwards; Resolve takes no locks and never blocks.
package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	botpkg "github.com/botfoundry/menubot/bot"
	"github.com/mymmrac/telego"
)

// Deps enumerates every service a handler may receive. Each handler reads
// only the fields it needs; the set is supplied fresh on every dispatch
// and never stored in the registry.
type Deps struct {
	Client   botpkg.MessageSender
	MainMenu botpkg.MenuPresenter
	Sessions botpkg.SessionStore
	Logger   botpkg.Logger
}

// Handler processes one inbound update. args carries the capture groups
// of a pattern route (empty for static routes). Errors propagate to the
// caller unchanged; the front door converts them to user-visible replies.
type Handler func(ctx context.Context, update telego.Update, args []string, deps Deps) error

type patternRoute struct {
	expr    *regexp.Regexp
	handler Handler
}

// Registry stores static and pattern routes. Static routes are exact
// string matches and always win over patterns; among patterns the first
// registered match wins, so route order is caller-controlled and
// overlapping patterns can shadow each other.
type Registry struct {
	static   map[string]Handler
	patterns []patternRoute
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		static: make(map[string]Handler),
	}
}

// Register stores a static route under key. Registering an already
// registered key fails with ErrDuplicateRoute to catch copy-paste
// mistakes at startup; there is no silent override and no unregister.
func (r *Registry) Register(key string, h Handler) error {
	if key == "" {
		return fmt.Errorf("dispatch: empty routing key")
	}
	if h == nil {
		return fmt.Errorf("dispatch: nil handler for key %q", key)
	}
	if _, exists := r.static[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRoute, key)
	}
	r.static[key] = h
	return nil
}

// RegisterPattern compiles expr and appends it to the pattern list in
// call order. The pattern must match the whole routing key; capture
// groups are passed to the handler as args.
func (r *Registry) RegisterPattern(expr string, h Handler) error {
	if h == nil {
		return fmt.Errorf("dispatch: nil handler for pattern %q", expr)
	}
	compiled, err := regexp.Compile(wholeMatch(expr))
	if err != nil {
		return fmt.Errorf("dispatch: compile pattern %q: %w", expr, err)
	}
	r.patterns = append(r.patterns, patternRoute{expr: compiled, handler: h})
	return nil
}

// MustRegister is Register that panics on error, for startup tables.
func (r *Registry) MustRegister(key string, h Handler) {
	if err := r.Register(key, h); err != nil {
		panic(err)
	}
}

// MustRegisterPattern is RegisterPattern that panics on error.
func (r *Registry) MustRegisterPattern(expr string, h Handler) {
	if err := r.RegisterPattern(expr, h); err != nil {
		panic(err)
	}
}

// Resolve looks up the handler for key. Static routes are checked first;
// if none matches, patterns are evaluated in registration order against
// the full key and the capture groups of the first match become args.
// An unresolved key returns (nil, nil, false); that is not an error,
// callers must treat it as "unhandled".
func (r *Registry) Resolve(key string) (Handler, []string, bool) {
	if h, ok := r.static[key]; ok {
		return h, nil, true
	}
	for _, route := range r.patterns {
		m := route.expr.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		return route.handler, m[1:], true
	}
	return nil, nil, false
}

// Dispatch extracts the routing key from update, resolves it, and invokes
// the handler with the capture arguments and deps. It returns whether a
// handler was found and the handler's error, unchanged. Handler errors
// are not swallowed here; the front door is the single catch-all.
func (r *Registry) Dispatch(ctx context.Context, update telego.Update, deps Deps) (bool, error) {
	key := RoutingKey(update)
	if key == "" {
		return false, nil
	}
	h, args, ok := r.Resolve(key)
	if !ok {
		return false, nil
	}
	return true, h(ctx, update, args, deps)
}

// Len returns the number of registered routes.
func (r *Registry) Len() int {
	return len(r.static) + len(r.patterns)
}

// RoutingKey extracts the routing key from an update: the exact callback
// payload for button presses, the command token (without the slash or a
// @botname suffix) for command messages. Anything else yields "".
func RoutingKey(update telego.Update) string {
	if update.CallbackQuery != nil {
		return update.CallbackQuery.Data
	}
	if update.Message != nil {
		return commandToken(update.Message.Text)
	}
	return ""
}

func commandToken(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	token := text[1:]
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	if i := strings.IndexByte(token, '@'); i >= 0 {
		token = token[:i]
	}
	return token
}

// wholeMatch anchors expr so the routing key must match it entirely.
func wholeMatch(expr string) string {
	return "^(?:" + expr + ")$"
}
