package handler

import "github.com/mymmrac/telego"

// senderID returns the ID of the user behind an update, or 0 when the
// update carries no user. Replies go to this ID so the pressing user is
// answered directly even in group chats.
func senderID(update telego.Update) int64 {
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	return 0
}

func senderUsername(update telego.Update) string {
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.Username
	}
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	return ""
}
