package domain_test

import (
	"context"
	"errors"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/events"
	"go-restaurant-pos/src/services/menu"
	"go-restaurant-pos/src/services/notification"
	"go-restaurant-pos/src/services/order/domain"
	"go-restaurant-pos/src/services/order/domain/persistence"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderStore) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id string, to domain.Status, changedBy string) (*domain.Order, error) {
	args := m.Called(ctx, id, to, changedBy)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderStore) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

type failingMenu struct{}

func (failingMenu) Resolve(context.Context, string) (*domain.MenuEntry, error) {
	return nil, errors.New("menu_items: connection reset")
}

type fixedNumbers string

func (f fixedNumbers) Next() string { return string(f) }

type fixture struct {
	service domain.OrderService
	store   *persistence.MemoryOrderRepository
	hub     *notification.Hub
	viewer  *notification.ChannelSession
}

func testCatalog() menu.Catalog {
	return menu.NewStaticCatalog(
		menu.MenuItem{ID: "A", Name: "Thali", Category: "Main Course", Price: decimal.NewFromInt(100), Available: true},
		menu.MenuItem{ID: "B", Name: "Lassi", Category: "Beverages", Price: decimal.NewFromInt(50), Available: true},
		menu.MenuItem{ID: "off", Name: "Seasonal Soup", Category: "Starters", Price: decimal.NewFromInt(90), Available: false},
	)
}

func newFixture(t *testing.T, opts ...domain.Option) fixture {
	t.Helper()
	logger := log.NewDiscardLogger()
	store := persistence.NewMemoryOrderRepository()
	hub := notification.NewHub(logger)
	viewer := notification.NewChannelSession(256)
	require.NoError(t, hub.Subscribe(viewer))
	return fixture{
		service: domain.NewOrderService(logger, store, testCatalog(), hub, opts...),
		store:   store,
		hub:     hub,
		viewer:  viewer,
	}
}

func (f fixture) received() []events.OrderEvent {
	var got []events.OrderEvent
	for {
		select {
		case e := <-f.viewer.Events():
			got = append(got, e)
		default:
			return got
		}
	}
}

func cart() domain.PlaceOrderRequest {
	return domain.PlaceOrderRequest{
		Items:       []domain.CartItem{{MenuItemID: "A", Quantity: 2}, {MenuItemID: "B", Quantity: 1}},
		TableNumber: 4,
	}
}

func asRole(role domain.Role) context.Context {
	return domain.WithActor(context.Background(), role)
}

func TestPlaceOrder_PricesFromMenu(t *testing.T) {
	f := newFixture(t)

	order, err := f.service.PlaceOrder(asRole(domain.RoleCashier), cart())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Regexp(t, `^ORD-\d+$`, order.OrderNumber)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, 4, order.TableNumber)
	assert.Equal(t, "250.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "25.00", order.TaxAmount.StringFixed(2))
	assert.Equal(t, "275.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Thali", order.Items[0].Name)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(100)))

	stored, err := f.store.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
}

func TestPlaceOrder_SubscriberReceivesExactlyOneCreatedEvent(t *testing.T) {
	f := newFixture(t)

	order, err := f.service.PlaceOrder(asRole(domain.RoleCashier), cart())
	require.NoError(t, err)

	got := f.received()
	require.Len(t, got, 1)
	assert.Equal(t, events.OrderCreated, got[0].Type)
	assert.Equal(t, order.OrderNumber, got[0].Order.OrderNumber)
	require.Len(t, got[0].Order.Items, len(order.Items))
	for i, item := range order.Items {
		assert.Equal(t, item.MenuItemID, got[0].Order.Items[i].MenuItem.ID)
		assert.Equal(t, item.Name, got[0].Order.Items[i].MenuItem.Name)
		assert.Equal(t, item.Quantity, got[0].Order.Items[i].Quantity)
	}
}

func TestPlaceOrder_EmptyCartNeverReachesStore(t *testing.T) {
	store := &mockOrderStore{}
	hub := notification.NewHub(log.NewDiscardLogger())
	service := domain.NewOrderService(log.NewDiscardLogger(), store, failingMenu{}, hub)

	for _, request := range []domain.PlaceOrderRequest{{}, {Items: []domain.CartItem{}, TableNumber: -1}} {
		_, err := service.PlaceOrder(context.Background(), request)
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
	}
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_RejectsBadCarts(t *testing.T) {
	tests := []struct {
		name    string
		request domain.PlaceOrderRequest
		want    error
		itemID  string
	}{
		{
			name:    "unknown menu item",
			request: domain.PlaceOrderRequest{Items: []domain.CartItem{{MenuItemID: "A", Quantity: 1}, {MenuItemID: "ghost", Quantity: 1}}},
			want:    domain.ErrInvalidMenuReference,
			itemID:  "ghost",
		},
		{
			name:    "unavailable menu item",
			request: domain.PlaceOrderRequest{Items: []domain.CartItem{{MenuItemID: "off", Quantity: 1}}},
			want:    domain.ErrInvalidMenuReference,
			itemID:  "off",
		},
		{
			name:    "missing menu item id",
			request: domain.PlaceOrderRequest{Items: []domain.CartItem{{Quantity: 1}}},
			want:    domain.ErrInvalidMenuReference,
		},
		{
			name:    "zero quantity",
			request: domain.PlaceOrderRequest{Items: []domain.CartItem{{MenuItemID: "A", Quantity: 0}}},
			want:    domain.ErrInvalidQuantity,
		},
		{
			name:    "negative table",
			request: domain.PlaceOrderRequest{Items: []domain.CartItem{{MenuItemID: "A", Quantity: 1}}, TableNumber: -3},
			want:    domain.ErrInvalidTableNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.PlaceOrder(context.Background(), tt.request)
			require.ErrorIs(t, err, tt.want)

			var refErr *domain.MenuReferenceError
			if errors.As(err, &refErr) {
				assert.Equal(t, tt.itemID, refErr.MenuItemID)
			}

			orders, err := f.store.List(context.Background(), domain.OrderFilter{})
			require.NoError(t, err)
			assert.Empty(t, orders)
			assert.Empty(t, f.received())
		})
	}
}

func TestPlaceOrder_MenuFailureIsStorageUnavailable(t *testing.T) {
	store := &mockOrderStore{}
	service := domain.NewOrderService(log.NewDiscardLogger(), store, failingMenu{}, notification.NewHub(log.NewDiscardLogger()))

	_, err := service.PlaceOrder(context.Background(), cart())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_StorageUnavailablePublishesNothing(t *testing.T) {
	store := &mockOrderStore{}
	store.On("Create", mock.Anything, mock.Anything).Return(domain.StorageFailure("insert order", errors.New("no reachable servers")))
	hub := notification.NewHub(log.NewDiscardLogger())
	viewer := notification.NewChannelSession(4)
	require.NoError(t, hub.Subscribe(viewer))
	service := domain.NewOrderService(log.NewDiscardLogger(), store, testCatalog(), hub)

	_, err := service.PlaceOrder(context.Background(), cart())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	select {
	case e := <-viewer.Events():
		t.Fatalf("unexpected event %s", e.Type)
	default:
	}
	store.AssertExpectations(t)
}

func TestPlaceOrder_DuplicateNumberIsReturnedToCaller(t *testing.T) {
	f := newFixture(t, domain.WithOrderNumbers(fixedNumbers("ORD-1")))

	_, err := f.service.PlaceOrder(context.Background(), cart())
	require.NoError(t, err)

	_, err = f.service.PlaceOrder(context.Background(), cart())
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)
	assert.Len(t, f.received(), 1)
}

func TestAdvanceStatus_Lifecycle(t *testing.T) {
	f := newFixture(t)
	order, err := f.service.PlaceOrder(asRole(domain.RoleCashier), cart())
	require.NoError(t, err)

	_, err = f.service.AdvanceStatus(asRole(domain.RoleKitchen), order.ID, domain.StatusReady)
	var transitionErr *domain.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, order.ID, transitionErr.OrderID)
	assert.Equal(t, domain.StatusPending, transitionErr.From)
	assert.Equal(t, domain.StatusReady, transitionErr.To)

	unchanged, err := f.service.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, unchanged.Status)

	preparing, err := f.service.AdvanceStatus(asRole(domain.RoleKitchen), order.ID, domain.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, preparing.Status)

	ready, err := f.service.AdvanceStatus(asRole(domain.RoleKitchen), order.ID, domain.StatusReady)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, ready.Status)
	assert.Equal(t, int64(3), ready.Version)
	require.Len(t, ready.History, 2)
	assert.Equal(t, "kitchen", ready.History[1].ChangedBy)
	assert.Equal(t, domain.StatusPreparing, ready.History[1].From)

	_, err = f.service.AdvanceStatus(asRole(domain.RoleCashier), order.ID, domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got := f.received()
	require.Len(t, got, 3)
	assert.Equal(t, events.OrderCreated, got[0].Type)
	assert.Equal(t, "preparing", got[1].Order.Status)
	assert.Equal(t, "ready", got[2].Order.Status)
}

func TestAdvanceStatus_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.AdvanceStatus(context.Background(), "missing", domain.StatusPreparing)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestAdvanceStatus_ConcurrentCallsExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	order, err := f.service.PlaceOrder(context.Background(), cart())
	require.NoError(t, err)

	const callers = 16
	results := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = f.service.AdvanceStatus(asRole(domain.RoleKitchen), order.ID, domain.StatusPreparing)
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, 1, wins)

	statusEvents := 0
	for _, e := range f.received() {
		if e.Type == events.OrderStatusChanged {
			statusEvents++
		}
	}
	assert.Equal(t, 1, statusEvents)
}

func TestAdvanceStatus_EventsLeaveInCommitOrder(t *testing.T) {
	f := newFixture(t)
	const orders = 20

	ids := make([]string, orders)
	for i := range ids {
		order, err := f.service.PlaceOrder(context.Background(), cart())
		require.NoError(t, err)
		ids[i] = order.ID
	}
	f.received()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for _, to := range []domain.Status{domain.StatusPreparing, domain.StatusReady, domain.StatusServed} {
				_, err := f.service.AdvanceStatus(context.Background(), id, to)
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	versions := map[string]int64{}
	for _, e := range f.received() {
		assert.Greater(t, e.Order.Version, versions[e.Order.ID], "order %s went backwards", e.Order.ID)
		versions[e.Order.ID] = e.Order.Version
	}
	assert.Len(t, versions, orders)
}

// racingStore starts a kitchen update as soon as an order is committed and
// gives it time to finish before Create returns.
type racingStore struct {
	*persistence.MemoryOrderRepository
	service domain.OrderService
	wg      sync.WaitGroup
}

func (s *racingStore) Create(ctx context.Context, order *domain.Order) error {
	if err := s.MemoryOrderRepository.Create(ctx, order); err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.service.AdvanceStatus(asRole(domain.RoleKitchen), order.ID, domain.StatusPreparing)
	}()
	time.Sleep(50 * time.Millisecond)
	return nil
}

func TestPlaceOrder_CreatedIsAnnouncedBeforeLaterChanges(t *testing.T) {
	logger := log.NewDiscardLogger()
	hub := notification.NewHub(logger)
	viewer := notification.NewChannelSession(16)
	require.NoError(t, hub.Subscribe(viewer))
	store := &racingStore{MemoryOrderRepository: persistence.NewMemoryOrderRepository()}
	store.service = domain.NewOrderService(logger, store, testCatalog(), hub)

	order, err := store.service.PlaceOrder(asRole(domain.RoleCashier), cart())
	require.NoError(t, err)
	store.wg.Wait()

	var types []string
	for len(types) < 2 {
		select {
		case e := <-viewer.Events():
			assert.Equal(t, order.ID, e.Order.ID)
			types = append(types, e.Type)
		case <-time.After(time.Second):
			require.FailNow(t, "expected two events", "got %v", types)
		}
	}
	assert.Equal(t, []string{events.OrderCreated, events.OrderStatusChanged}, types)
}

func TestSetPaymentStatus(t *testing.T) {
	f := newFixture(t)
	order, err := f.service.PlaceOrder(context.Background(), cart())
	require.NoError(t, err)

	paid, err := f.service.SetPaymentStatus(asRole(domain.RoleCashier), order.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, domain.StatusPending, paid.Status)

	// payment does not touch the kitchen lifecycle
	served := []domain.Status{domain.StatusPreparing, domain.StatusReady, domain.StatusServed}
	for _, to := range served {
		_, err := f.service.AdvanceStatus(context.Background(), order.ID, to)
		require.NoError(t, err)
	}
	unpaid, err := f.service.SetPaymentStatus(context.Background(), order.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUnpaid, unpaid.PaymentStatus)

	_, err = f.service.SetPaymentStatus(context.Background(), "missing", true)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	got := f.received()
	require.Len(t, got, 6)
	assert.Equal(t, events.OrderPaymentChanged, got[1].Type)
	assert.Equal(t, "paid", got[1].Order.PaymentStatus)
	assert.Equal(t, events.OrderPaymentChanged, got[5].Type)
}

func TestListOrders_Filters(t *testing.T) {
	f := newFixture(t, domain.WithClock(func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) }))
	first, err := f.service.PlaceOrder(context.Background(), cart())
	require.NoError(t, err)
	second, err := f.service.PlaceOrder(context.Background(), cart())
	require.NoError(t, err)
	_, err = f.service.AdvanceStatus(context.Background(), second.ID, domain.StatusPreparing)
	require.NoError(t, err)

	all, err := f.service.ListOrders(context.Background(), domain.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	pending, err := f.service.ListOrders(context.Background(), domain.OrderFilter{Statuses: []domain.Status{domain.StatusPending}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)
}

func TestHubFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	stuck := notification.NewChannelSession(1)
	require.NoError(t, f.hub.Subscribe(stuck))

	for i := 0; i < 3; i++ {
		_, err := f.service.PlaceOrder(context.Background(), cart())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.hub.SubscriberCount())
}
