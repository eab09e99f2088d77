// Package adapter connects external surfaces (Telegram, CLI) to the kernel.
// Adapters receive raw messages, hand them to the bound handler, and deliver
// the rendered reply back to the platform.
package adapter

import "context"

// MessageHandler processes one inbound message and returns the reply text.
// Bound at wiring time so adapters never import the orchestrator.
type MessageHandler func(ctx context.Context, userID, text string) (string, error)

// InputAdapter listens for messages from an external platform.
type InputAdapter interface {
	Name() string

	// Start begins listening (long-poll, stdin loop). Must respect
	// context cancellation.
	Start(ctx context.Context) error

	Stop(ctx context.Context) error

	Health(ctx context.Context) error
}

// Notifier pushes unprompted messages to a user, e.g. the scheduled brief.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, userID, content string) error
	Health(ctx context.Context) error
}
