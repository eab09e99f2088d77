package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/harunnryd/kaizen/internal/tool"
)

const maxShellOutput = 10_000

// blockedCommands are refused even after the approval gate. The gate answers
// "does the user want this run"; this list answers "will we run it at all".
var blockedCommands = map[string]struct{}{
	"rm":       {},
	"rmdir":    {},
	"mv":       {},
	"dd":       {},
	"mkfs":     {},
	"shutdown": {},
	"reboot":   {},
	"sudo":     {},
	"su":       {},
	"chmod":    {},
	"chown":    {},
	"kill":     {},
	"killall":  {},
}

// ShellTool runs a single command without a shell: the input is tokenized
// with shlex and exec'd directly, so pipes, redirects, and substitution are
// structurally impossible.
type ShellTool struct{}

func NewShellTool() *ShellTool { return &ShellTool{} }

func (t *ShellTool) Name() string { return "shell_tool" }

func (t *ShellTool) Description() string {
	return "Runs an approved command and captures its output"
}

func (t *ShellTool) Execute(ctx context.Context, action string, params map[string]any, userID string) (tool.Result, error) {
	switch action {
	case "run":
		return t.run(ctx, params)
	case "pwd":
		return t.pwd()
	case "ls":
		return t.list(params)
	default:
		return nil, fmt.Errorf("%w: shell_tool has no action '%s'", tool.ErrUnknownAction, action)
	}
}

func (t *ShellTool) run(ctx context.Context, params map[string]any) (tool.Result, error) {
	command, err := stringParam(params, "command")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	argv, err := shlex.Split(command)
	if err != nil {
		return tool.Fail(fmt.Sprintf("cannot parse command: %v", err)), nil
	}
	if len(argv) == 0 {
		return tool.Fail("empty command"), nil
	}
	if _, blocked := blockedCommands[argv[0]]; blocked {
		return tool.Fail(fmt.Sprintf("command '%s' is blocked", argv[0])), nil
	}

	// CommandContext kills the process when the step deadline expires.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	output := out.String()
	if len(output) > maxShellOutput {
		output = output[:maxShellOutput] + "\n... (output truncated)"
	}

	if ctx.Err() != nil {
		return tool.Fail("command timed out"), nil
	}
	if runErr != nil {
		return tool.Fail(fmt.Sprintf("command failed: %v\n%s", runErr, strings.TrimSpace(output))), nil
	}

	message := strings.TrimSpace(output)
	if message == "" {
		message = fmt.Sprintf("Command '%s' finished with no output.", argv[0])
	}
	return tool.Ok(map[string]any{
		"command": command,
		"output":  output,
		"message": message,
	}), nil
}

func (t *ShellTool) pwd() (tool.Result, error) {
	dir, err := os.Getwd()
	if err != nil {
		return tool.Fail(fmt.Sprintf("cannot determine working directory: %v", err)), nil
	}
	return tool.Ok(map[string]any{
		"path":    dir,
		"message": dir,
	}), nil
}

func (t *ShellTool) list(params map[string]any) (tool.Result, error) {
	path := "."
	if p, err := stringParam(params, "path"); err == nil && p != "" {
		path = p
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return tool.Fail(fmt.Sprintf("cannot list '%s': %v", path, err)), nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}

	message := strings.Join(names, "\n")
	if message == "" {
		message = fmt.Sprintf("Directory '%s' is empty.", path)
	}
	return tool.Ok(map[string]any{
		"path":    path,
		"entries": names,
		"message": message,
	}), nil
}
