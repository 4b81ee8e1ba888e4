package handler

import (
	"context"
	"fmt"

	botpkg "github.com/botfoundry/menubot/bot"
	"github.com/botfoundry/menubot/bot/dispatch"
	"github.com/botfoundry/menubot/bot/menu"
	"github.com/botfoundry/menubot/bot/telegram"
)

// Route declares one handler of a section. Label is looked up on the
// owning menu (or In, when set) at registration time; the button's
// routing key becomes the registration key. A label with no matching
// button registers under the label verbatim; that is a fallback, not
// an error.
type Route struct {
	Label   string
	In      *menu.Menu // alternate menu to search instead of the owning one
	Handler dispatch.Handler
}

// SectionConfig describes a menu section to build.
type SectionConfig struct {
	Client   botpkg.MessageSender
	Logger   botpkg.Logger
	Title    string
	Rows     [][]menu.Button
	Registry *dispatch.Registry
	Routes   []Route
}

// Section couples one validated menu with the handlers that respond to
// its buttons. Menu structure errors and duplicate routes abort
// construction; both mean a broken startup table.
type Section struct {
	client    botpkg.MessageSender
	menu      *menu.Menu
	logger    botpkg.Logger
	parseMode string
}

// NewSection builds and validates the menu, then registers every route.
func NewSection(cfg SectionConfig) (*Section, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("client required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry required")
	}

	m := menu.New(cfg.Title)
	for _, row := range cfg.Rows {
		if err := m.AddRow(row...); err != nil {
			return nil, err
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	s := &Section{client: cfg.Client, menu: m, logger: cfg.Logger}

	for _, route := range cfg.Routes {
		key := s.resolveKey(route)
		if err := cfg.Registry.Register(key, route.Handler); err != nil {
			return nil, err
		}
		if s.logger != nil {
			s.logger.Debug("route registered", "menu", cfg.Title, "label", route.Label, "key", key)
		}
	}

	return s, nil
}

func (s *Section) resolveKey(route Route) string {
	source := s.menu
	if route.In != nil {
		source = route.In
	}
	if key, ok := source.KeyForLabel(route.Label); ok {
		return key
	}
	if s.logger != nil {
		s.logger.Warn("route label not found on menu, using verbatim key",
			"menu", source.Title, "label", route.Label)
	}
	return route.Label
}

// Show renders the menu as an inline keyboard and sends it.
func (s *Section) Show(ctx context.Context, chatID int64) error {
	keyboard := telegram.InlineKeyboard(s.menu)
	return s.client.Send(ctx, chatID, botpkg.MenuResponse(s.menu.Title, keyboard, s.parseMode))
}

// AppendRow appends a button row after construction and re-validates.
func (s *Section) AppendRow(buttons ...menu.Button) error {
	if err := s.menu.AddRow(buttons...); err != nil {
		return err
	}
	return s.menu.Validate()
}

// Menu exposes the owned menu.
func (s *Section) Menu() *menu.Menu {
	return s.menu
}
