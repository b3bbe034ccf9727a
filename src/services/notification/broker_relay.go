package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/events"
	"go-restaurant-pos/src/services/order/domain/persistence"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPublishRetries = 3
	replayBatchSize       = 100
	parkTimeout           = 5 * time.Second
	// overflowLimit bounds the events held in memory while the relay lags.
	overflowLimit = 10000
)

type BrokerPublisher interface {
	Publish(routingKey string, body []byte) error
}

// EventOutbox keeps events the broker did not accept until they are replayed.
type EventOutbox interface {
	StoreEventForReplay(ctx context.Context, orderID, routingKey string, eventData []byte) error
	GetUnreplayedEvents(ctx context.Context, limit int64) ([]persistence.OrderEvent, error)
	MarkEventAsReplaying(ctx context.Context, eventID string) error
	MarkEventAsCompleted(ctx context.Context, eventID string) error
	MarkEventAsFailed(ctx context.Context, eventID string) error
}

type RelayOption func(*BrokerRelay)

// WithPublishRetries sets how many times a publish is attempted and the base
// backoff; attempt n waits n*backoff before the next try.
func WithPublishRetries(attempts int, backoff time.Duration) RelayOption {
	return func(r *BrokerRelay) {
		if attempts > 0 {
			r.maxRetries = attempts
		}
		r.backoff = backoff
	}
}

// BrokerRelay is a Hub session that forwards order events to the broker, one
// at a time in the order they were published. Events the broker rejects end up
// in the outbox.
type BrokerRelay struct {
	id        string
	logger    log.Logger
	publisher BrokerPublisher
	outbox    EventOutbox

	queue     chan events.OrderEvent
	done      chan struct{}
	closeOnce sync.Once

	// Once the queue overflows, events go to overflow until Run has parked
	// the queue and the overflow, in that order.
	overflowMu    sync.Mutex
	overflow      []events.OrderEvent
	lagging       bool
	overflowReady chan struct{}

	maxRetries int
	backoff    time.Duration
	replayMu   sync.Mutex
}

func NewBrokerRelay(logger log.Logger, publisher BrokerPublisher, outbox EventOutbox, bufferSize int, opts ...RelayOption) *BrokerRelay {
	if bufferSize < 1 {
		bufferSize = 1
	}
	r := &BrokerRelay{
		id:            "broker-relay-" + uuid.NewString(),
		logger:        logger,
		publisher:     publisher,
		outbox:        outbox,
		queue:         make(chan events.OrderEvent, bufferSize),
		done:          make(chan struct{}),
		overflowReady: make(chan struct{}, 1),
		maxRetries:    defaultPublishRetries,
		backoff:       time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *BrokerRelay) ID() string { return r.id }

// Deliver queues the event for Run and never waits on the broker or the
// outbox. When the queue is full the relay starts lagging: later events are
// held in overflow and Run moves everything to the outbox in publish order.
func (r *BrokerRelay) Deliver(event events.OrderEvent) error {
	select {
	case <-r.done:
		return ErrSessionClosed
	default:
	}

	r.overflowMu.Lock()
	defer r.overflowMu.Unlock()

	if !r.lagging {
		select {
		case r.queue <- event:
			return nil
		default:
		}
		r.lagging = true
		r.logger.Warn(context.Background(), "Relay queue full, parking events until the relay catches up")
	}

	if len(r.overflow) >= overflowLimit {
		r.logger.Exception(context.Background(),
			fmt.Sprintf("Relay overflow full, dropping %s event for order %s", event.Type, event.Order.ID), ErrSessionBackpressure)
		return nil
	}
	r.overflow = append(r.overflow, event)
	select {
	case r.overflowReady <- struct{}{}:
	default:
	}
	return nil
}

func (r *BrokerRelay) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// Run publishes queued events until ctx is cancelled, then parks whatever is
// still queued. It is the only goroutine that writes to the outbox outside of
// replay.
func (r *BrokerRelay) Run(ctx context.Context) error {
	r.logger.Info(ctx, "Broker relay started")
	for {
		select {
		case <-ctx.Done():
			r.catchUp()
			r.logger.Info(context.Background(), "Broker relay stopped")
			return nil
		case <-r.overflowReady:
			r.catchUp()
		case event := <-r.queue:
			r.forward(ctx, event)
		}
	}
}

func (r *BrokerRelay) forward(ctx context.Context, event events.OrderEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		r.logger.Exception(ctx, "Failed to marshal order event for the broker", err)
		return
	}

	if err := r.publishWithRetry(ctx, event.Type, body); err != nil {
		r.logger.Exception(ctx, fmt.Sprintf("Failed to publish %s event for order %s after %d retries",
			event.Type, event.Order.ID, r.maxRetries), err)
		parkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), parkTimeout)
		defer cancel()
		if err := r.outbox.StoreEventForReplay(parkCtx, event.Order.ID, event.Type, body); err != nil {
			r.logger.Exception(ctx, "Failed to store order event for replay", err)
		}
	}
}

func (r *BrokerRelay) publishWithRetry(ctx context.Context, routingKey string, body []byte) error {
	var err error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if err = r.publisher.Publish(routingKey, body); err == nil {
			return nil
		}
		r.logger.Warn(ctx, fmt.Sprintf("Publish of %s failed, attempt %d/%d: %v", routingKey, attempt, r.maxRetries, err))
		if attempt == r.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (gave up: %w)", err, ctx.Err())
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return err
}

func (r *BrokerRelay) drain() {
	for {
		select {
		case event := <-r.queue:
			r.parkWithTimeout(event)
		default:
			return
		}
	}
}

// catchUp parks the queued events, then the overflow, and leaves the lagging
// state once both are empty. Deliver does not touch the queue while lagging,
// so nothing newer can slip ahead.
func (r *BrokerRelay) catchUp() {
	r.drain()
	for {
		r.overflowMu.Lock()
		pending := r.overflow
		r.overflow = nil
		if len(pending) == 0 {
			r.lagging = false
			r.overflowMu.Unlock()
			return
		}
		r.overflowMu.Unlock()

		for _, event := range pending {
			r.parkWithTimeout(event)
		}
	}
}

func (r *BrokerRelay) parkWithTimeout(event events.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), parkTimeout)
	defer cancel()
	if err := r.park(ctx, event); err != nil {
		r.logger.Exception(ctx, fmt.Sprintf("Failed to park %s event for order %s", event.Type, event.Order.ID), err)
	}
}

func (r *BrokerRelay) park(ctx context.Context, event events.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	return r.outbox.StoreEventForReplay(ctx, event.Order.ID, event.Type, body)
}

// ReplayFailedEvents republishes parked events oldest first and records the
// outcome of each. Only one replay runs at a time; an overlapping call returns
// immediately.
func (r *BrokerRelay) ReplayFailedEvents(ctx context.Context) error {
	if !r.replayMu.TryLock() {
		r.logger.Info(ctx, "Replay already in progress")
		return nil
	}
	defer r.replayMu.Unlock()

	parked, err := r.outbox.GetUnreplayedEvents(ctx, replayBatchSize)
	if err != nil {
		r.logger.Exception(ctx, "failed to fetch unreplayed events", err)
		return fmt.Errorf("failed to fetch unreplayed events: %w", err)
	}

	if len(parked) == 0 {
		r.logger.Info(ctx, "No events to replay")
		return nil
	}

	r.logger.Info(ctx, fmt.Sprintf("Starting replay of %d failed events", len(parked)))

	successCount := 0
	failureCount := 0

	for _, evt := range parked {
		if err := r.outbox.MarkEventAsReplaying(ctx, evt.ID); err != nil {
			r.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as replaying: %v", evt.ID, err))
		}

		if pubErr := r.publishWithRetry(ctx, evt.RoutingKey, evt.EventData); pubErr == nil {
			if err := r.outbox.MarkEventAsCompleted(ctx, evt.ID); err != nil {
				r.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as completed: %v", evt.ID, err))
			} else {
				r.logger.Info(ctx, fmt.Sprintf("Event %s successfully replayed and marked as completed", evt.ID))
			}
			successCount++
		} else {
			r.logger.Exception(ctx, fmt.Sprintf("Replay failed for event %s after %d retries", evt.ID, r.maxRetries), pubErr)
			if err := r.outbox.MarkEventAsFailed(context.WithoutCancel(ctx), evt.ID); err != nil {
				r.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as failed: %v", evt.ID, err))
			}
			failureCount++
		}
	}

	r.logger.Info(ctx, fmt.Sprintf("Replay completed: %d successful, %d failed", successCount, failureCount))

	if failureCount > 0 {
		return fmt.Errorf("replay completed with %d failures out of %d events", failureCount, len(parked))
	}
	return nil
}
