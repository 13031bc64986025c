package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rentflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const dedupKeyPrefix = "event:"

// DedupStats is a snapshot of a DeduplicatingHandler's counters
type DedupStats struct {
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Failed     int64 `json:"failed"`
}

// DeduplicatingHandler delivers each event ID to the wrapped handler at most
// once per TTL, using the same store that guards Idempotency-Key requests.
type DeduplicatingHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger

	processed  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// NewDeduplicatingHandler wraps handler. A non-positive ttl defaults to 24h.
func NewDeduplicatingHandler(handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *DeduplicatingHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeduplicatingHandler{
		handler: handler,
		store:   store,
		ttl:     ttl,
		logger:  logger,
	}
}

// EventTypes returns the wrapped handler's event types
func (h *DeduplicatingHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle skips events already seen. A store failure delivers the event anyway.
func (h *DeduplicatingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := dedupKeyPrefix + event.EventID().String()

	isNew, err := h.store.MarkProcessed(ctx, key, h.ttl)
	switch {
	case err != nil:
		h.logger.Warn("event dedup check failed, delivering anyway",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	case !isNew:
		h.duplicates.Add(1)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns the current counters
func (h *DeduplicatingHandler) Stats() DedupStats {
	return DedupStats{
		Processed:  h.processed.Load(),
		Duplicates: h.duplicates.Load(),
		Failed:     h.failed.Load(),
	}
}

var _ shared.EventHandler = (*DeduplicatingHandler)(nil)
