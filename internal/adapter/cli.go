package adapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// CLIAdapter is an interactive stdin loop for local use. All input is
// attributed to a single fixed user.
type CLIAdapter struct {
	userID  string
	handler MessageHandler
	in      io.Reader
	out     io.Writer
}

func NewCLIAdapter(userID string, handler MessageHandler) *CLIAdapter {
	if userID == "" {
		userID = "local"
	}
	return &CLIAdapter{
		userID:  userID,
		handler: handler,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

func (a *CLIAdapter) Name() string {
	return "cli"
}

// Start reads lines until EOF, /exit, or context cancellation.
func (a *CLIAdapter) Start(ctx context.Context) error {
	fmt.Fprintln(a.out, "kaizen ready. Type a command or /exit to quit.")
	fmt.Fprint(a.out, "> ")

	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/exit" || line == "/quit":
			return nil
		default:
			reply, err := a.handler(ctx, a.userID, line)
			if err != nil {
				fmt.Fprintf(a.out, "\033[31mError: %v\033[0m\n", err)
			} else if reply != "" {
				fmt.Fprintf(a.out, "\033[32m%s\033[0m\n", reply)
			}
		}
		fmt.Fprint(a.out, "> ")
	}
	return scanner.Err()
}

func (a *CLIAdapter) Stop(ctx context.Context) error {
	return nil
}

func (a *CLIAdapter) Notify(ctx context.Context, userID, content string) error {
	_, err := fmt.Fprintf(a.out, "\033[36m%s\033[0m\n> ", content)
	return err
}

func (a *CLIAdapter) Health(ctx context.Context) error {
	return nil
}
