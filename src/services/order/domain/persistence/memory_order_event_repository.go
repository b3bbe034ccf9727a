package persistence

import (
	"context"
	"fmt"
	"go-restaurant-pos/src/services/events"
	"slices"
	"sync"
	"time"
)

// MemoryOrderEventRepository is the replay queue used with the memory store.
type MemoryOrderEventRepository struct {
	mu     sync.Mutex
	events []*OrderEvent
}

func NewMemoryOrderEventRepository() *MemoryOrderEventRepository {
	return &MemoryOrderEventRepository{}
}

func (r *MemoryOrderEventRepository) StoreEventForReplay(_ context.Context, orderID, routingKey string, eventData []byte) error {
	evt, err := newParkedEvent(orderID, routingKey, eventData)
	if err != nil {
		return err
	}
	evt.EventData = slices.Clone(eventData)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, &evt)
	return nil
}

func (r *MemoryOrderEventRepository) GetUnreplayedEvents(_ context.Context, limit int64) ([]OrderEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var parked []OrderEvent
	for _, evt := range r.events {
		if limit > 0 && int64(len(parked)) >= limit {
			break
		}
		if evt.Replayed {
			continue
		}
		if evt.Status == events.EventStatusPending || evt.Status == events.EventStatusFailed {
			parked = append(parked, *evt)
		}
	}
	return parked, nil
}

func (r *MemoryOrderEventRepository) MarkEventAsReplaying(_ context.Context, eventID string) error {
	return r.update(eventID, func(evt *OrderEvent) { evt.Status = events.EventStatusReplaying })
}

func (r *MemoryOrderEventRepository) MarkEventAsCompleted(_ context.Context, eventID string) error {
	return r.update(eventID, func(evt *OrderEvent) {
		now := time.Now()
		evt.Status = events.EventStatusCompleted
		evt.Replayed = true
		evt.ReplayedAt = &now
	})
}

func (r *MemoryOrderEventRepository) MarkEventAsFailed(_ context.Context, eventID string) error {
	return r.update(eventID, func(evt *OrderEvent) { evt.Status = events.EventStatusFailed })
}

func (r *MemoryOrderEventRepository) update(eventID string, apply func(*OrderEvent)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, evt := range r.events {
		if evt.ID == eventID {
			apply(evt)
			return nil
		}
	}
	return fmt.Errorf("order event %s not found", eventID)
}
