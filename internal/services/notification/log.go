package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogDispatcher writes events to the application log. It is the default when
// no broker is configured.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a log-only dispatcher.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.Named("notification")}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, event *Event) error {
	for _, party := range []Party{event.Sender, event.Receiver} {
		d.logger.Info("notify account of transfer",
			zap.String("event", event.Name),
			zap.String("channel", Channel(party.ID)),
			zap.String("reference", event.TransactionReference),
			zap.String("amount", event.Amount.StringFixed(2)),
			zap.Stringer("balance", party.Balance),
		)
	}
	return nil
}
