package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	botpkg "github.com/botfoundry/menubot/bot"
	"github.com/botfoundry/menubot/bot/dispatch"
	"github.com/mymmrac/telego"
)

// fakeSender records outbound messages instead of hitting the API.
type fakeSender struct {
	mu       sync.Mutex
	sent     []sentMessage
	answered []string
	sendErr  error
}

type sentMessage struct {
	chatID int64
	resp   botpkg.Response
}

func (f *fakeSender) Send(ctx context.Context, chatID int64, resp botpkg.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, resp: resp})
	return nil
}

func (f *fakeSender) AnswerCallback(ctx context.Context, queryID string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, queryID)
	return nil
}

func (f *fakeSender) lastSent(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeLogger struct{}

func (fakeLogger) Debug(msg string, args ...any) {}
func (fakeLogger) Info(msg string, args ...any)  {}
func (fakeLogger) Warn(msg string, args ...any)  {}
func (fakeLogger) Error(msg string, args ...any) {}

func (f fakeLogger) With(args ...any) botpkg.Logger { return f }

type fakeSessions struct {
	mu      sync.Mutex
	touched []int64
	menus   map[int64]string
	states  map[int64]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{menus: make(map[int64]string), states: make(map[int64]string)}
}

func (f *fakeSessions) Touch(ctx context.Context, userID int64, username string) *botpkg.UserSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, userID)
	return &botpkg.UserSession{UserID: userID, Username: username}
}

func (f *fakeSessions) SetMenu(ctx context.Context, userID int64, menuName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.menus[userID] = menuName
}

func (f *fakeSessions) SetState(ctx context.Context, userID int64, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[userID] = state
}

func newTestRouter(sender *fakeSender, sessions *fakeSessions) (*Router, *dispatch.Registry, *dispatch.Registry) {
	commands := dispatch.New()
	callbacks := dispatch.New()
	r := &Router{
		Commands:  commands,
		Callbacks: callbacks,
		Client:    sender,
		Sessions:  sessions,
		Logger:    fakeLogger{},
		Deps: dispatch.Deps{
			Client:   sender,
			Sessions: sessions,
			Logger:   fakeLogger{},
		},
	}
	return r, commands, callbacks
}

func callbackFrom(userID int64, data string) telego.Update {
	return telego.Update{CallbackQuery: &telego.CallbackQuery{
		ID:   "query-1",
		From: telego.User{ID: userID},
		Data: data,
	}}
}

func messageFrom(userID int64, text string) telego.Update {
	return telego.Update{Message: &telego.Message{
		Text: text,
		From: &telego.User{ID: userID},
	}}
}

func TestRouterCallbackDispatched(t *testing.T) {
	sender := &fakeSender{}
	sessions := newFakeSessions()
	router, _, callbacks := newTestRouter(sender, sessions)

	var gotData string
	callbacks.MustRegister("Settings", func(ctx context.Context, u telego.Update, args []string, d dispatch.Deps) error {
		gotData = u.CallbackQuery.Data
		return nil
	})

	router.HandleUpdate(context.Background(), callbackFrom(42, "Settings"))

	if gotData != "Settings" {
		t.Errorf("handler saw data %q, want Settings", gotData)
	}
	if len(sender.answered) != 1 {
		t.Errorf("callback answered %d times, want 1", len(sender.answered))
	}
	if len(sessions.touched) != 1 || sessions.touched[0] != 42 {
		t.Errorf("sessions touched = %v, want [42]", sessions.touched)
	}
}

func TestRouterUnknownCallback(t *testing.T) {
	sender := &fakeSender{}
	router, _, _ := newTestRouter(sender, newFakeSessions())

	router.HandleUpdate(context.Background(), callbackFrom(42, "mystery"))

	got := sender.lastSent(t)
	if got.chatID != 42 {
		t.Errorf("reply chat = %d, want 42", got.chatID)
	}
	if !strings.Contains(got.resp.Text, unknownButtonText+"mystery") {
		t.Errorf("reply = %q, want unknown-button text naming the payload", got.resp.Text)
	}
	if !strings.HasPrefix(got.resp.Text, "⚠️") {
		t.Errorf("reply = %q, want warning prefix", got.resp.Text)
	}
}

func TestRouterCallbackHandlerError(t *testing.T) {
	sender := &fakeSender{}
	router, _, callbacks := newTestRouter(sender, newFakeSessions())

	callbacks.MustRegister("broken", func(ctx context.Context, u telego.Update, args []string, d dispatch.Deps) error {
		return fmt.Errorf("backend down")
	})

	router.HandleUpdate(context.Background(), callbackFrom(7, "broken"))

	got := sender.lastSent(t)
	if !strings.Contains(got.resp.Text, callbackErrorText) {
		t.Errorf("reply = %q, want %q", got.resp.Text, callbackErrorText)
	}
	if strings.Contains(got.resp.Text, "backend down") {
		t.Errorf("reply = %q, internal error leaked to user", got.resp.Text)
	}
}

func TestRouterCommandDispatched(t *testing.T) {
	sender := &fakeSender{}
	router, commands, _ := newTestRouter(sender, newFakeSessions())

	var called bool
	commands.MustRegister("start", func(ctx context.Context, u telego.Update, args []string, d dispatch.Deps) error {
		called = true
		return nil
	})

	router.HandleUpdate(context.Background(), messageFrom(7, "/start"))
	if !called {
		t.Error("command handler not invoked")
	}
}

func TestRouterUnknownCommandIgnored(t *testing.T) {
	sender := &fakeSender{}
	router, _, _ := newTestRouter(sender, newFakeSessions())

	router.HandleUpdate(context.Background(), messageFrom(7, "/nothere"))

	if len(sender.sent) != 0 {
		t.Errorf("unknown command produced %d replies, want 0", len(sender.sent))
	}
}

func TestRouterCommandHandlerError(t *testing.T) {
	sender := &fakeSender{}
	router, commands, _ := newTestRouter(sender, newFakeSessions())

	commands.MustRegister("boom", func(ctx context.Context, u telego.Update, args []string, d dispatch.Deps) error {
		return fmt.Errorf("boom")
	})

	router.HandleUpdate(context.Background(), messageFrom(7, "/boom"))

	got := sender.lastSent(t)
	if !strings.Contains(got.resp.Text, genericErrorText) {
		t.Errorf("reply = %q, want generic error text", got.resp.Text)
	}
}

func TestRouterEchoesPlainText(t *testing.T) {
	sender := &fakeSender{}
	router, _, _ := newTestRouter(sender, newFakeSessions())

	router.HandleUpdate(context.Background(), messageFrom(9, "hello there"))

	got := sender.lastSent(t)
	if got.resp.Text != "💬 "+echoPrefix+"hello there" {
		t.Errorf("reply = %q, want echo with prefix", got.resp.Text)
	}
}

func TestRouterRecoversPanic(t *testing.T) {
	sender := &fakeSender{}
	router, _, callbacks := newTestRouter(sender, newFakeSessions())

	callbacks.MustRegister("panic", func(ctx context.Context, u telego.Update, args []string, d dispatch.Deps) error {
		panic("handler bug")
	})

	// Must not propagate the panic into the polling loop.
	router.HandleUpdate(context.Background(), callbackFrom(3, "panic"))

	got := sender.lastSent(t)
	if !strings.Contains(got.resp.Text, genericErrorText) {
		t.Errorf("reply = %q, want generic error after panic", got.resp.Text)
	}
}

func TestRouterIgnoresEmptyMessage(t *testing.T) {
	sender := &fakeSender{}
	router, _, _ := newTestRouter(sender, newFakeSessions())

	router.HandleUpdate(context.Background(), messageFrom(9, ""))
	router.HandleUpdate(context.Background(), telego.Update{})

	if len(sender.sent) != 0 {
		t.Errorf("empty updates produced %d replies, want 0", len(sender.sent))
	}
}
