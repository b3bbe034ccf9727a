package persistence

import (
	"context"
	"go-restaurant-pos/src/services/events"
	"go-restaurant-pos/src/services/order/domain"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(id, number string) *domain.Order {
	now := time.Now()
	return &domain.Order{
		ID:          id,
		OrderNumber: number,
		Items: []domain.LineItem{
			{MenuItemID: "masala-dosa", Name: "Masala Dosa", Category: "Breakfast", Quantity: 2, Price: decimal.NewFromInt(120)},
		},
		Subtotal:      decimal.NewFromInt(240),
		TaxAmount:     decimal.NewFromInt(24),
		TotalAmount:   decimal.NewFromInt(264),
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentUnpaid,
		TableNumber:   3,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestMemoryOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	order := newOrder("o-1", "ORD-1")
	require.NoError(t, repo.Create(ctx, order))

	// the stored copy is detached from the caller's value
	order.Items[0].Quantity = 99

	got, err := repo.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Quantity)

	got.Items[0].Quantity = 50
	again, err := repo.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)

	_, err = repo.Get(ctx, "o-2")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMemoryOrderRepository_UniqueOrderNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o-1", "ORD-1")))

	err := repo.Create(ctx, newOrder("o-2", "ORD-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)

	err = repo.Create(ctx, newOrder("o-1", "ORD-2"))
	assert.Error(t, err)

	orders, err := repo.List(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestMemoryOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o-1", "ORD-1")))

	_, err := repo.UpdateStatus(ctx, "o-1", domain.StatusServed, "kitchen")
	var transitionErr *domain.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "o-1", transitionErr.OrderID)
	assert.Equal(t, domain.StatusPending, transitionErr.From)

	updated, err := repo.UpdateStatus(ctx, "o-1", domain.StatusPreparing, "kitchen")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, updated.Status)
	assert.Equal(t, int64(2), updated.Version)
	require.Len(t, updated.History, 1)
	assert.Equal(t, domain.StatusChange{
		From:      domain.StatusPending,
		To:        domain.StatusPreparing,
		ChangedBy: "kitchen",
		ChangedAt: updated.UpdatedAt,
	}, updated.History[0])

	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusPreparing, "")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMemoryOrderRepository_ConcurrentUpdateExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o-1", "ORD-1")))

	const callers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateStatus(ctx, "o-1", domain.StatusPreparing, "kitchen")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	got, err := repo.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
}

func TestMemoryOrderRepository_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := strconv.Itoa(i)
			assert.NoError(t, repo.Create(ctx, newOrder("o-"+id, "ORD-"+id)))
		}(i)
	}
	wg.Wait()

	orders, err := repo.List(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 50)
}

func TestMemoryOrderRepository_ListFiltersInCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, newOrder(id, "ORD-"+id)))
	}
	_, err := repo.SetPaymentStatus(ctx, "b", domain.PaymentPaid)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, "c", domain.StatusCancelled, "cashier")
	require.NoError(t, err)

	all, err := repo.List(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	paid, err := repo.List(ctx, domain.OrderFilter{PaymentStatuses: []domain.PaymentStatus{domain.PaymentPaid}})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "b", paid[0].ID)

	open, err := repo.List(ctx, domain.OrderFilter{Statuses: []domain.Status{domain.StatusPending, domain.StatusPreparing}})
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestMemoryOrderRepository_SetPaymentStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o-1", "ORD-1")))

	paid, err := repo.SetPaymentStatus(ctx, "o-1", domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, int64(2), paid.Version)

	_, err = repo.SetPaymentStatus(ctx, "o-1", domain.PaymentStatus{})
	assert.Error(t, err)

	_, err = repo.SetPaymentStatus(ctx, "missing", domain.PaymentPaid)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMemoryOrderEventRepository_ReplayQueue(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderEventRepository()

	assert.Error(t, repo.StoreEventForReplay(ctx, "o-1", events.OrderCreated, []byte("not json")))
	assert.Error(t, repo.StoreEventForReplay(ctx, "o-1", "", []byte(`{}`)))

	require.NoError(t, repo.StoreEventForReplay(ctx, "o-1", events.OrderCreated, []byte(`{"n":1}`)))
	require.NoError(t, repo.StoreEventForReplay(ctx, "o-1", events.OrderStatusChanged, []byte(`{"n":2}`)))

	parked, err := repo.GetUnreplayedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, parked, 2)
	assert.Equal(t, events.OrderCreated, parked[0].RoutingKey)
	assert.Equal(t, events.OrderStatusChanged, parked[1].RoutingKey)

	limited, err := repo.GetUnreplayedEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, repo.MarkEventAsReplaying(ctx, parked[0].ID))
	require.NoError(t, repo.MarkEventAsCompleted(ctx, parked[1].ID))
	remaining, err := repo.GetUnreplayedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	require.NoError(t, repo.MarkEventAsFailed(ctx, parked[0].ID))
	remaining, err = repo.GetUnreplayedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, parked[0].ID, remaining[0].ID)

	assert.Error(t, repo.MarkEventAsFailed(ctx, "unknown"))
}
