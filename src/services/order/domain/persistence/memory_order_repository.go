package persistence

import (
	"context"
	"fmt"
	"go-restaurant-pos/src/services/order/domain"
	"sync"
	"time"
)

type memoryEntry struct {
	mu    sync.Mutex
	order *domain.Order
}

// MemoryOrderRepository keeps orders in process memory. The index lock is
// held only to find or insert an entry; status changes lock the entry.
type MemoryOrderRepository struct {
	mu       sync.RWMutex
	byID     map[string]*memoryEntry
	numbers  map[string]struct{}
	sequence []*memoryEntry
	now      func() time.Time
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		byID:    make(map[string]*memoryEntry),
		numbers: make(map[string]struct{}),
		now:     time.Now,
	}
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *domain.Order) error {
	entry := &memoryEntry{order: order.Clone()}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.numbers[order.OrderNumber]; taken {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateOrderNumber, order.OrderNumber)
	}
	if _, taken := r.byID[order.ID]; taken {
		return fmt.Errorf("order id %s already exists", order.ID)
	}
	r.byID[order.ID] = entry
	r.numbers[order.OrderNumber] = struct{}{}
	r.sequence = append(r.sequence, entry)
	return nil
}

func (r *MemoryOrderRepository) Get(_ context.Context, id string) (*domain.Order, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.order.Clone(), nil
}

// List returns matching orders in creation order.
func (r *MemoryOrderRepository) List(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	entries := make([]*memoryEntry, len(r.sequence))
	copy(entries, r.sequence)
	r.mu.RUnlock()

	orders := make([]domain.Order, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		if filter.Matches(entry.order) {
			orders = append(orders, *entry.order.Clone())
		}
		entry.mu.Unlock()
	}
	return orders, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, to domain.Status, changedBy string) (*domain.Order, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	current := entry.order
	if err := domain.ValidateTransition(current.Status, to); err != nil {
		return nil, &domain.TransitionError{OrderID: id, From: current.Status, To: to}
	}

	now := r.now()
	next := current.Clone()
	next.History = append(next.History, domain.StatusChange{
		From:      current.Status,
		To:        to,
		ChangedBy: changedBy,
		ChangedAt: now,
	})
	next.Status = to
	next.Version++
	next.UpdatedAt = now
	entry.order = next
	return next.Clone(), nil
}

func (r *MemoryOrderRepository) SetPaymentStatus(_ context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status for order %s", id)
	}
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next := entry.order.Clone()
	next.PaymentStatus = status
	next.Version++
	next.UpdatedAt = r.now()
	entry.order = next
	return next.Clone(), nil
}

func (r *MemoryOrderRepository) entry(id string) (*memoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(id)
	}
	return entry, nil
}
