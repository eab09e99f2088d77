package idempotency

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSeenMarksAndDetects(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "events.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	key := EventKey("telegram", 42)
	seen, err := s.Seen(key, time.Hour)
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Fatal("first occurrence must not be seen")
	}

	seen, err = s.Seen(key, time.Hour)
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if !seen {
		t.Fatal("second occurrence must be seen")
	}
}

func TestSeenSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if _, err := s.Seen(EventKey("telegram", 7), time.Hour); err != nil {
		t.Fatalf("Seen failed: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	seen, err := reopened.Seen(EventKey("telegram", 7), time.Hour)
	if err != nil {
		t.Fatalf("Seen after reopen failed: %v", err)
	}
	if !seen {
		t.Fatal("seen keys must survive a restart")
	}
}

func TestExpiredKeyIsReprocessed(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "events.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	key := EventKey("telegram", 1)
	if _, err := s.Seen(key, -time.Second); err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	seen, err := s.Seen(key, time.Hour)
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Fatal("expired key should be treated as new")
	}
}

func TestPruneDropsExpired(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "events.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	s.Seen(EventKey("telegram", 1), -time.Second)
	s.Seen(EventKey("telegram", 2), time.Hour)

	pruned, err := s.Prune()
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}
}
