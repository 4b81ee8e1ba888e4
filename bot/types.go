package bot

import (
	"fmt"
	"time"

	"github.com/mymmrac/telego"
)

// Response is the outbound message shape handlers produce. It is the sole
// contract between handler logic and the transport's send primitive.
type Response struct {
	Text      string
	Keyboard  *telego.InlineKeyboardMarkup
	ParseMode string
}

// Success creates a response prefixed with a success mark.
func Success(msg string) Response {
	return Response{Text: "✅ " + msg}
}

// Error creates a response prefixed with an error mark.
func Error(msg string) Response {
	return Response{Text: "❌ " + msg}
}

// Info creates a response prefixed with an info mark.
func Info(msg string) Response {
	return Response{Text: "ℹ️ " + msg}
}

// Warning creates a response prefixed with a warning mark.
func Warning(msg string) Response {
	return Response{Text: "⚠️ " + msg}
}

// Custom creates a response with an optional emoji prefix.
func Custom(msg, emoji string) Response {
	if emoji != "" {
		msg = fmt.Sprintf("%s %s", emoji, msg)
	}
	return Response{Text: msg}
}

// MenuResponse creates a response carrying a rendered keyboard.
func MenuResponse(title string, keyboard *telego.InlineKeyboardMarkup, parseMode string) Response {
	return Response{Text: title, Keyboard: keyboard, ParseMode: parseMode}
}

// UserSession holds per-user conversational state. Sessions are cheap to
// recreate; only menu position and timestamps survive restarts.
type UserSession struct {
	UserID       int64
	Username     string
	CurrentMenu  string
	State        string
	CreatedAt    time.Time
	LastActivity time.Time
}

// Touch updates the last-activity timestamp.
func (s *UserSession) Touch() {
	s.LastActivity = time.Now()
}

// ExpiredAt reports whether the session has been inactive since before cutoff.
func (s *UserSession) ExpiredAt(cutoff time.Time) bool {
	return s.LastActivity.Before(cutoff)
}
