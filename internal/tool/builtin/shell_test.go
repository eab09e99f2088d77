package builtin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestShellRunCapturesOutput(t *testing.T) {
	sh := NewShellTool()

	res, err := sh.Execute(context.Background(), "run", map[string]any{"command": "echo hello world"}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got %v", res)
	}
	if msg, _ := res["message"].(string); !strings.Contains(msg, "hello world") {
		t.Fatalf("output lost: %v", res)
	}
}

func TestShellRunBlocksDangerousCommands(t *testing.T) {
	sh := NewShellTool()

	for _, cmd := range []string{"rm -rf /tmp/x", "sudo whoami", "shutdown now"} {
		res, err := sh.Execute(context.Background(), "run", map[string]any{"command": cmd}, "u1")
		if err != nil {
			t.Fatalf("Execute(%q) failed: %v", cmd, err)
		}
		if res.Success() {
			t.Fatalf("%q must be refused", cmd)
		}
		if !strings.Contains(res.Err(), "blocked") {
			t.Fatalf("unexpected error for %q: %v", cmd, res.Err())
		}
	}
}

func TestShellRunNoShellFeatures(t *testing.T) {
	sh := NewShellTool()

	// The pipe is just an argument to echo, not a shell pipeline.
	res, err := sh.Execute(context.Background(), "run", map[string]any{"command": "echo a | cat"}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if msg, _ := res["message"].(string); !strings.Contains(msg, "|") {
		t.Fatalf("pipe should be a literal argument: %v", res)
	}
}

func TestShellRunTimeout(t *testing.T) {
	sh := NewShellTool()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := sh.Execute(ctx, "run", map[string]any{"command": "sleep 5"}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Success() || !strings.Contains(res.Err(), "timed out") {
		t.Fatalf("expected timeout failure, got %v", res)
	}
}

func TestShellPwd(t *testing.T) {
	sh := NewShellTool()

	res, err := sh.Execute(context.Background(), "pwd", map[string]any{}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got %v", res)
	}
	if path, _ := res["path"].(string); path == "" {
		t.Fatalf("pwd should report a path: %v", res)
	}
}

func TestShellLs(t *testing.T) {
	sh := NewShellTool()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	res, err := sh.Execute(context.Background(), "ls", map[string]any{"path": dir}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success, got %v", res)
	}
	msg, _ := res["message"].(string)
	if !strings.Contains(msg, "notes.txt") || !strings.Contains(msg, "sub/") {
		t.Fatalf("listing incomplete: %q", msg)
	}

	res, err = sh.Execute(context.Background(), "ls", map[string]any{"path": filepath.Join(dir, "missing")}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Success() {
		t.Fatalf("missing directory must be a tool failure: %v", res)
	}
}

func TestShellRejectsUnknownAction(t *testing.T) {
	sh := NewShellTool()

	if _, err := sh.Execute(context.Background(), "interactive", map[string]any{}, "u1"); err == nil {
		t.Fatal("unknown action must be an invocation error")
	}
}
