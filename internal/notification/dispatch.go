package notification

import (
	"context"
	"log/slog"
)

// Sink receives notifications after the transaction that created them has
// committed.
type Sink interface {
	Deliver(ctx context.Context, n *Notification) error
}

// Dispatcher fans committed notifications out to every sink. Delivery is
// best effort: failures are logged and never reach the caller. A nil
// Dispatcher drops everything.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher over the given sinks
func NewDispatcher(logger *slog.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, logger: logger}
}

// Dispatch delivers each notification to every sink
func (d *Dispatcher) Dispatch(ctx context.Context, notifications ...*Notification) {
	if d == nil {
		return
	}
	for _, n := range notifications {
		for _, sink := range d.sinks {
			if err := sink.Deliver(ctx, n); err != nil {
				d.logger.WarnContext(ctx, "notification delivery failed",
					"notification_id", n.ID,
					"user_id", n.UserID,
					"type", n.Type,
					"error", err,
				)
			}
		}
	}
}

// Outbox collects notifications created inside a transaction so they can be
// dispatched once it commits.
type Outbox struct {
	pending []*Notification
}

// Add queues n for dispatch
func (o *Outbox) Add(n *Notification) {
	o.pending = append(o.pending, n)
}

// Flush dispatches and clears the queued notifications
func (o *Outbox) Flush(ctx context.Context, d *Dispatcher) {
	d.Dispatch(ctx, o.pending...)
	o.pending = nil
}

// Pending returns the queued notifications
func (o *Outbox) Pending() []*Notification {
	return o.pending
}
