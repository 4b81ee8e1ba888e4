package telegram

import (
	"github.com/botfoundry/menubot/bot/menu"
	"github.com/mymmrac/telego"
)

// InlineKeyboard renders a menu grid as an inline keyboard. Button keys
// become callback payloads verbatim, so whatever the menu validated is
// exactly what comes back on a press.
func InlineKeyboard(m *menu.Menu) *telego.InlineKeyboardMarkup {
	grid := m.Rows()
	rows := make([][]telego.InlineKeyboardButton, 0, len(grid))
	for _, row := range grid {
		buttons := make([]telego.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, telego.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Key,
			})
		}
		rows = append(rows, buttons)
	}
	return &telego.InlineKeyboardMarkup{InlineKeyboard: rows}
}
