package handler

import (
	"context"

	botpkg "github.com/botfoundry/menubot/bot"
	"github.com/botfoundry/menubot/bot/dispatch"
	"github.com/botfoundry/menubot/bot/menu"
	"github.com/mymmrac/telego"
)

// MenuName identifies the main menu in session state.
const MainMenuName = "main"

// MainMenu is the control-center entry menu. Each button routes to a
// handler registered against the callback registry at construction.
type MainMenu struct {
	*Section
}

// NewMainMenu builds the main menu and registers its button handlers.
func NewMainMenu(client botpkg.MessageSender, logger botpkg.Logger, registry *dispatch.Registry) (*MainMenu, error) {
	m := &MainMenu{}

	section, err := NewSection(SectionConfig{
		Client: client,
		Logger: logger,
		Title:  mainMenuTitle,
		Rows: [][]menu.Button{
			{menu.Btn(labelMonitoring), menu.Btn(labelTraining)},
			{menu.Btn(labelReports), menu.Btn(labelSettings)},
		},
		Registry: registry,
		Routes: []Route{
			{Label: labelMonitoring, Handler: m.handleMonitoring},
			{Label: labelTraining, Handler: m.handleTraining},
			{Label: labelReports, Handler: m.handleReports},
			{Label: labelSettings, Handler: m.handleSettings},
		},
	})
	if err != nil {
		return nil, err
	}

	m.Section = section
	return m, nil
}

func (m *MainMenu) handleMonitoring(ctx context.Context, update telego.Update, args []string, deps dispatch.Deps) error {
	if deps.Logger != nil {
		deps.Logger.Info("user requested monitoring", "user_id", senderID(update))
	}
	return deps.Client.Send(ctx, senderID(update), botpkg.Info(pressedButtonPrefix+labelMonitoring))
}

func (m *MainMenu) handleTraining(ctx context.Context, update telego.Update, args []string, deps dispatch.Deps) error {
	if deps.Logger != nil {
		deps.Logger.Info("user accessed training control", "user_id", senderID(update))
	}
	return deps.Client.Send(ctx, senderID(update), botpkg.Info(pressedButtonPrefix+labelTraining))
}

func (m *MainMenu) handleReports(ctx context.Context, update telego.Update, args []string, deps dispatch.Deps) error {
	if deps.Logger != nil {
		deps.Logger.Info("user requested reports", "user_id", senderID(update))
	}
	return deps.Client.Send(ctx, senderID(update), botpkg.Info(pressedButtonPrefix+labelReports))
}

func (m *MainMenu) handleSettings(ctx context.Context, update telego.Update, args []string, deps dispatch.Deps) error {
	if deps.Logger != nil {
		deps.Logger.Info("user accessed settings", "user_id", senderID(update))
	}
	return deps.Client.Send(ctx, senderID(update), botpkg.Info(pressedButtonPrefix+labelSettings))
}
