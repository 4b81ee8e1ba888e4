// Package handler bridges inbound Telegram updates to the dispatch
// registries and owns the menus the bot presents.
package handler

import (
	"context"
	"runtime/debug"
	"strings"

	botpkg "github.com/botfoundry/menubot/bot"
	"github.com/botfoundry/menubot/bot/dispatch"
	"github.com/mymmrac/telego"
)

// Router is the single per-update entry point. It extracts the routing
// key per update kind, dispatches, and converts unresolved keys and
// handler failures into user-visible replies. Nothing it does may escape
// into the polling loop.
type Router struct {
	Commands  *dispatch.Registry
	Callbacks *dispatch.Registry
	Client    botpkg.MessageSender
	Sessions  botpkg.SessionStore
	Logger    botpkg.Logger
	Deps      dispatch.Deps
}

// HandleUpdate processes one inbound update.
func (r *Router) HandleUpdate(ctx context.Context, update telego.Update) {
	defer func() {
		if p := recover(); p != nil {
			r.Logger.Error("handler panic",
				"panic", p,
				"routing_key", dispatch.RoutingKey(update),
				"stack", string(debug.Stack()),
			)
			r.reply(ctx, senderID(update), botpkg.Error(genericErrorText))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		r.handleCallback(ctx, update)
	case update.Message != nil:
		r.handleMessage(ctx, update)
	}
}

func (r *Router) handleCallback(ctx context.Context, update telego.Update) {
	query := update.CallbackQuery
	r.touch(ctx, update)

	// Acknowledge early so the client stops its spinner even if the
	// handler takes a while.
	if err := r.Client.AnswerCallback(ctx, query.ID, ""); err != nil {
		r.Logger.Warn("answer callback failed", "error", err)
	}

	r.Logger.Debug("callback received", "user_id", query.From.ID, "callback_data", query.Data)

	found, err := r.Callbacks.Dispatch(ctx, update, r.Deps)
	if err != nil {
		r.Logger.Error("callback handler failed",
			"callback_data", query.Data,
			"user_id", query.From.ID,
			"error", err,
		)
		r.reply(ctx, query.From.ID, botpkg.Error(callbackErrorText))
		return
	}
	if !found {
		r.Logger.Warn("no handler registered for callback data", "callback_data", query.Data)
		r.reply(ctx, query.From.ID, botpkg.Warning(unknownButtonText+query.Data))
	}
}

func (r *Router) handleMessage(ctx context.Context, update telego.Update) {
	msg := update.Message
	if msg.From == nil {
		return
	}
	r.touch(ctx, update)

	if strings.HasPrefix(msg.Text, "/") {
		found, err := r.Commands.Dispatch(ctx, update, r.Deps)
		if err != nil {
			r.Logger.Error("command handler failed",
				"command", dispatch.RoutingKey(update),
				"user_id", msg.From.ID,
				"error", err,
			)
			r.reply(ctx, msg.From.ID, botpkg.Error(genericErrorText))
			return
		}
		if !found {
			r.Logger.Debug("unknown command ignored", "command", dispatch.RoutingKey(update))
		}
		return
	}

	if msg.Text == "" {
		return
	}
	r.Logger.Debug("text received", "user_id", msg.From.ID, "len", len(msg.Text))
	r.reply(ctx, msg.From.ID, botpkg.Custom(echoPrefix+msg.Text, "💬"))
}

func (r *Router) touch(ctx context.Context, update telego.Update) {
	if r.Sessions == nil {
		return
	}
	if id := senderID(update); id != 0 {
		r.Sessions.Touch(ctx, id, senderUsername(update))
	}
}

// reply sends best-effort; a failed error reply is only logged.
func (r *Router) reply(ctx context.Context, chatID int64, resp botpkg.Response) {
	if chatID == 0 {
		return
	}
	if err := r.Client.Send(ctx, chatID, resp); err != nil {
		r.Logger.Error("send reply failed", "chat_id", chatID, "error", err)
	}
}
