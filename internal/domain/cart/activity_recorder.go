package cart

import (
	"context"
	"log"
	"time"

	"carts/internal/observability/metrics"
)

// ActivityStore persists cart activity events.
type ActivityStore interface {
	InsertActivity(ctx context.Context, event ActivityEvent) error
}

// ActivityRecorder writes consumed cart activity events to the store.
type ActivityRecorder struct {
	store ActivityStore
}

// NewActivityRecorder builds a recorder.
func NewActivityRecorder(store ActivityStore) *ActivityRecorder {
	return &ActivityRecorder{store: store}
}

// HandleActivity persists one event for auditing.
func (r *ActivityRecorder) HandleActivity(ctx context.Context, event ActivityEvent) error {
	start := time.Now()
	defer func() { metrics.ObserveConsumerProcessing("handle_activity", time.Since(start)) }()
	if err := r.store.InsertActivity(ctx, event); err != nil {
		log.Printf("activity recorder: failed to insert %s for customer=%s: %v", event.Action, event.CustomerID, err)
		return err
	}
	return nil
}
