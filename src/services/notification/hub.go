package notification

import (
	"context"
	"errors"
	"fmt"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/events"
	"sync"
)

var ErrDuplicateSession = errors.New("session already subscribed")

// Hub broadcasts every committed order change to all subscribed sessions.
// Publishes are serialized and stamped with a hub-wide sequence, so every
// session sees events in the same order they were published.
type Hub struct {
	logger log.Logger

	mu       sync.RWMutex
	sessions map[string]Session

	publishMu sync.Mutex
	sequence  uint64
}

func NewHub(logger log.Logger) *Hub {
	return &Hub{
		logger:   logger,
		sessions: make(map[string]Session),
	}
}

// Subscribe registers a session for all later publishes. There is no replay;
// new viewers load current state through the order list.
func (h *Hub) Subscribe(session Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.sessions[session.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSession, session.ID())
	}
	h.sessions[session.ID()] = session
	return nil
}

// Unsubscribe removes and closes the session. It reports whether the session
// was still subscribed and is safe to call repeatedly or during a publish.
func (h *Hub) Unsubscribe(id string) bool {
	h.mu.Lock()
	session, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		session.Close()
	}
	return ok
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Publish delivers the event to a snapshot of the current sessions. A session
// that fails is logged and unsubscribed; the error never reaches the caller.
func (h *Hub) Publish(ctx context.Context, event events.OrderEvent) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.sequence++
	event.Sequence = h.sequence

	for _, session := range h.snapshot() {
		if err := deliver(session, event); err != nil {
			h.logger.WarnWithExtra(ctx, "Dropping notification session", map[string]any{
				"SessionId": session.ID(),
				"EventType": event.Type,
				"OrderId":   event.Order.ID,
				"Sequence":  event.Sequence,
				"Error":     err.Error(),
			})
			h.Unsubscribe(session.ID())
		}
	}
}

// Close unsubscribes every session.
func (h *Hub) Close() {
	for _, session := range h.snapshot() {
		h.Unsubscribe(session.ID())
	}
}

func (h *Hub) snapshot() []Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sessions := make([]Session, 0, len(h.sessions))
	for _, session := range h.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func deliver(session Session, event events.OrderEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session panicked: %v", r)
		}
	}()
	return session.Deliver(event)
}
