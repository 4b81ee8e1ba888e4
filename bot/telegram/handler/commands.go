package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	botpkg "github.com/botfoundry/menubot/bot"
	"github.com/botfoundry/menubot/bot/dispatch"
	"github.com/mymmrac/telego"
)

// CommandSpec pairs a command name with its description and handler.
// The name, without slash, is the routing key.
type CommandSpec struct {
	Name        string
	Description string
	Handler     dispatch.Handler
}

// Commands holds the bot's command table and registers it against a
// registry at construction. Help text and the Telegram command list are
// generated from the same table so they cannot drift apart.
type Commands struct {
	specs []CommandSpec
}

// NewCommands registers the built-in commands plus any extras.
func NewCommands(registry *dispatch.Registry, extra ...CommandSpec) (*Commands, error) {
	c := &Commands{}
	c.specs = append([]CommandSpec{
		{Name: "start", Description: "Start the bot and show main menu", Handler: c.handleStart},
		{Name: "help", Description: "Show available commands and help", Handler: c.handleHelp},
	}, extra...)

	for _, spec := range c.specs {
		if err := registry.Register(spec.Name, spec.Handler); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// HelpText renders the command list, sorted by name.
func (c *Commands) HelpText() string {
	if len(c.specs) == 0 {
		return noCommandsText
	}

	specs := make([]CommandSpec, len(c.specs))
	copy(specs, c.specs)
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	var sb strings.Builder
	sb.WriteString(helpHeader)
	for _, spec := range specs {
		sb.WriteString(fmt.Sprintf("\n/%s - %s", spec.Name, spec.Description))
	}
	return sb.String()
}

// BotCommands returns the table in the shape SetMyCommands wants.
func (c *Commands) BotCommands() []telego.BotCommand {
	commands := make([]telego.BotCommand, 0, len(c.specs))
	for _, spec := range c.specs {
		commands = append(commands, telego.BotCommand{Command: spec.Name, Description: spec.Description})
	}
	return commands
}

func (c *Commands) handleStart(ctx context.Context, update telego.Update, args []string, deps dispatch.Deps) error {
	userID := senderID(update)
	if userID == 0 {
		return nil
	}

	if deps.Logger != nil {
		deps.Logger.Info("user started bot", "user_id", userID, "username", senderUsername(update))
	}

	if deps.MainMenu == nil {
		return fmt.Errorf("main menu not configured")
	}
	if err := deps.MainMenu.Show(ctx, userID); err != nil {
		return err
	}
	if deps.Sessions != nil {
		deps.Sessions.SetMenu(ctx, userID, MainMenuName)
	}
	return nil
}

func (c *Commands) handleHelp(ctx context.Context, update telego.Update, args []string, deps dispatch.Deps) error {
	userID := senderID(update)
	if userID == 0 {
		return nil
	}

	if deps.Logger != nil {
		deps.Logger.Info("user requested help", "user_id", userID)
	}
	return deps.Client.Send(ctx, userID, botpkg.Info(c.HelpText()))
}
