package prefs

import (
	"context"
	"testing"

	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.New(t.TempDir(), store.Options{SkipLock: true})
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st)
}

func TestGetFallsBackToDefault(t *testing.T) {
	s := newTestService(t)

	got, err := s.Get(context.Background(), "u1", "brief_time")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "07:30" {
		t.Fatalf("default brief_time = %q", got)
	}
}

func TestSetAndGetRoundTrip(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if err := s.Set(ctx, "u1", "brief_time", "08:15"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := s.Get(ctx, "u1", "brief_time")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "08:15" {
		t.Fatalf("got %q, want 08:15", got)
	}

	// Another user still sees the default.
	got, err = s.Get(ctx, "u2", "brief_time")
	if err != nil {
		t.Fatalf("Get for u2 failed: %v", err)
	}
	if got != "07:30" {
		t.Fatalf("u2 brief_time = %q, want default", got)
	}
}

func TestSetRejectsUnknownKeyAndBadTime(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if err := s.Set(ctx, "u1", "favorite_color", "blue"); !errors.IsCategory(err, errors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown key, got %v", err)
	}
	if err := s.Set(ctx, "u1", "brief_time", "25:99"); !errors.IsCategory(err, errors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for bad time, got %v", err)
	}
	if err := s.Set(ctx, "u1", "brief_time", "9:05"); err != nil {
		t.Fatalf("single-digit hour should be accepted: %v", err)
	}
}

func TestAllMergesOverrides(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if err := s.Set(ctx, "u1", "timezone", "Asia/Jakarta"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	all, err := s.All(ctx, "u1")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if all["timezone"] != "Asia/Jakarta" {
		t.Fatalf("override lost: %v", all)
	}
	if all["brief_format"] != "detailed" {
		t.Fatalf("default missing: %v", all)
	}
	if len(all) != len(Keys()) {
		t.Fatalf("All returned %d keys, want %d", len(all), len(Keys()))
	}
}
