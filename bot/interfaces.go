package bot

import (
	"context"
	"time"
)

// Logger is the minimal logging abstraction used across modules.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config provides typed access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat64(key string) float64
}

// MessageSender is the outbound surface handlers talk to. The Response
// triple is the whole contract; message delivery details belong to the
// transport wrapper.
type MessageSender interface {
	Send(ctx context.Context, chatID int64, resp Response) error
	AnswerCallback(ctx context.Context, queryID string, text string) error
}

// MenuPresenter renders and sends a menu to a chat.
type MenuPresenter interface {
	Show(ctx context.Context, chatID int64) error
}

// SessionStore is the handler-facing session API.
type SessionStore interface {
	Touch(ctx context.Context, userID int64, username string) *UserSession
	SetMenu(ctx context.Context, userID int64, menuName string)
	SetState(ctx context.Context, userID int64, state string)
}

// SessionRepository defines storage operations for user sessions.
// Get returns (nil, nil) when no session exists for the user.
type SessionRepository interface {
	Get(ctx context.Context, userID int64) (*UserSession, error)
	Save(ctx context.Context, session *UserSession) error
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// WorkerPool limits concurrency for update handling.
type WorkerPool interface {
	Submit(task func()) error
	Shutdown(ctx context.Context) error
	Size() int
}
