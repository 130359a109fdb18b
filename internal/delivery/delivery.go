// Package delivery is the boundary to the external notification channels.
// A channel either delivers a message or it does not; transport failures
// surface as "not delivered", never as errors, and retrying is the
// channel provider's business.
package delivery

import (
	"context"

	"go.uber.org/zap"
)

// Channel names understood by the preference flags.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// Channel delivers one message to one user. Deliver reports success only;
// a failed call must not panic or block past its context.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, userID, title, body string) bool
}

// LogChannel writes messages to the log instead of delivering them.
// Used when no notifier gateway is configured, mirroring a development
// setup where real channels are absent.
type LogChannel struct {
	name   string
	logger *zap.Logger
}

// NewLogChannel creates a log-backed channel with the given name.
func NewLogChannel(name string, logger *zap.Logger) *LogChannel {
	return &LogChannel{name: name, logger: logger}
}

func (c *LogChannel) Name() string { return c.name }

// Deliver logs the message and always succeeds.
func (c *LogChannel) Deliver(_ context.Context, userID, title, body string) bool {
	c.logger.Info("delivering message",
		zap.String("channel", c.name),
		zap.String("user_id", userID),
		zap.String("title", title),
		zap.String("body", body),
	)
	return true
}
