package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/botfoundry/menubot/bot"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestGetAbsentReturnsNilNil(t *testing.T) {
	repo := newTestRepo(t)

	s, err := repo.Get(context.Background(), 404)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s != nil {
		t.Errorf("Get() = %+v, want nil for absent session", s)
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	want := &bot.UserSession{
		UserID:       1,
		Username:     "alice",
		CurrentMenu:  "main",
		State:        "idle",
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil after Save")
	}
	if got.Username != "alice" || got.CurrentMenu != "main" || got.State != "idle" {
		t.Errorf("Get() = %+v, want saved values", got)
	}
}

func TestSaveUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s := &bot.UserSession{UserID: 2, Username: "bob", LastActivity: time.Now()}
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	s.CurrentMenu = "settings"
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := repo.Get(ctx, 2)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if got.CurrentMenu != "settings" {
		t.Errorf("CurrentMenu = %q, want settings", got.CurrentMenu)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1 after upsert", count)
	}
}

func TestSaveNilSession(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Save(context.Background(), nil); err == nil {
		t.Error("Save(nil) error = nil, want error")
	}
}

func TestDeleteInactiveBefore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	sessions := []*bot.UserSession{
		{UserID: 1, LastActivity: now},
		{UserID: 2, LastActivity: now.Add(-48 * time.Hour)},
		{UserID: 3, LastActivity: now.Add(-30 * time.Hour)},
	}
	for _, s := range sessions {
		if err := repo.Save(ctx, s); err != nil {
			t.Fatalf("Save(%d) error = %v", s.UserID, err)
		}
	}

	removed, err := repo.DeleteInactiveBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteInactiveBefore() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}

	kept, err := repo.Get(ctx, 1)
	if err != nil || kept == nil {
		t.Errorf("active session lost: %v, %v", kept, err)
	}
}

func TestConfigurePool(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.ConfigurePool(2, 1, time.Minute); err != nil {
		t.Errorf("ConfigurePool() error = %v", err)
	}
	// Non-positive values fall back to safe minimums.
	if err := repo.ConfigurePool(0, 0, 0); err != nil {
		t.Errorf("ConfigurePool() with zeros error = %v", err)
	}
}
