// Package notify delivers change notifications for taxi records.
// The service layer calls Changed after every successful mutation; delivery is
// fire-and-forget, so a notification failure never fails the mutation itself.
package notify

import (
	"context"
	"log/slog"

	"github.com/cabfleet/taxi-api/internal/domain"
)

// Notifier receives a change notification after each successful mutation.
// Implementations must not block the request longer than necessary and must
// handle their own delivery failures (typically by logging them).
type Notifier interface {
	Changed(ctx context.Context, kind domain.EventKind, taxi domain.Taxi)
}

// LogNotifier writes one structured log line per change event.
// It is the default Notifier when no event transport is configured.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier constructs a LogNotifier writing to the given logger.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Changed logs the event kind and the record's identity fields.
func (n *LogNotifier) Changed(ctx context.Context, kind domain.EventKind, taxi domain.Taxi) {
	n.log.InfoContext(ctx, "taxi changed",
		"kind", string(kind),
		"id", taxi.ID.String(),
		"idDriver", taxi.DriverID,
	)
}
