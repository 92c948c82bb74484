package notify

//go:generate mockgen -source=notifier.go -destination=mocks/mocks.go -package=mocks Notifier

import (
	"context"
	"log/slog"
)

// Notifier delivers a message to an external channel. Delivery is best-effort:
// the business operation that triggered the message never fails because a
// channel is down.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes notifications to the log. It is the default channel in
// development and the fallback when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "notification",
		"user_id", msg.UserID,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
