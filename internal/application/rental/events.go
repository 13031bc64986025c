package rental

import (
	"context"

	"github.com/rentflow/backend/internal/domain/shared"
)

// eventSource is satisfied by every aggregate; it keeps publishDomainEvents
// independent of the concrete aggregate types.
type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishDomainEvents publishes the pending events of each aggregate in order.
// It runs after the transaction has committed so subscribers never observe
// rolled-back state.
func publishDomainEvents(ctx context.Context, publisher shared.EventPublisher, sources ...eventSource) {
	if publisher == nil {
		return
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		events := src.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		// Publish errors are logged by the event bus, not propagated
		_ = publisher.Publish(ctx, events...)
		src.ClearDomainEvents()
	}
}
