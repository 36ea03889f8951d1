package movement

import (
	"context"

	"github.com/psim/backend/internal/domain/shared"
)

// MetricsRecorder receives ledger activity counts. Implemented by
// telemetry.LedgerMetrics; a nil recorder is allowed everywhere.
type MetricsRecorder interface {
	RecordIssuance(ctx context.Context, tier string, lines int, units int64)
	RecordReturn(ctx context.Context, tier string, lines int, units int64)
	RecordLowStock(ctx context.Context, tier string)
}

// eventCollector gathers domain events from aggregates touched in a
// transaction so they can be published once it commits.
type eventCollector struct {
	events []shared.DomainEvent
}

func (c *eventCollector) collect(aggregates ...shared.AggregateRoot) {
	for _, a := range aggregates {
		c.events = append(c.events, a.PullDomainEvents()...)
	}
}

func (c *eventCollector) reset() {
	c.events = nil
}

// publish hands events to publisher. Failures are logged by the bus, not propagated.
func (c *eventCollector) publish(ctx context.Context, publisher shared.EventPublisher) {
	if publisher == nil || len(c.events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, c.events...)
}
