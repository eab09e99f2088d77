package adapter

import "context"

// NullNotifier swallows notifications. Used when no outbound surface is
// configured, e.g. headless serve without a Telegram token.
type NullNotifier struct {
	name string
}

func NewNullNotifier(name string) *NullNotifier {
	if name == "" {
		name = "null"
	}
	return &NullNotifier{name: name}
}

func (a *NullNotifier) Name() string {
	return a.name
}

func (a *NullNotifier) Notify(ctx context.Context, userID, content string) error {
	return nil
}

func (a *NullNotifier) Health(ctx context.Context) error {
	return nil
}
