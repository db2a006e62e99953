// Package mail delivers notification messages to invitees. Delivery is
// fire-and-forget: the inviting request never waits on, or observes, the
// outcome of a send.
package mail

import (
	"context"
	"log/slog"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a single message. Implementations must be safe for
// concurrent use by the dispatcher worker.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them.
// Used in dev environments and as the default when no provider is
// configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.Logger.Info("mail (not delivered, log mailer)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
