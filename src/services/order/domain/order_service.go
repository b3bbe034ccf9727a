package domain

import (
	"context"
	"errors"
	"fmt"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/events"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, request PlaceOrderRequest) (*Order, error)
	AdvanceStatus(ctx context.Context, orderID string, to Status) (*Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, paid bool) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
}

type CartItem struct {
	MenuItemID string
	Quantity   int
}

// PlaceOrderRequest is a cashier's cart. TableNumber 0 means takeaway.
type PlaceOrderRequest struct {
	Items       []CartItem
	TableNumber int
}

type Option func(*orderService)

func WithOrderNumbers(numbers OrderNumberGenerator) Option {
	return func(s *orderService) { s.numbers = numbers }
}

func WithClock(now func() time.Time) Option {
	return func(s *orderService) { s.now = now }
}

type orderService struct {
	logger    log.Logger
	store     OrderStore
	menu      MenuLookup
	publisher EventPublisher
	numbers   OrderNumberGenerator
	now       func() time.Time
	locks     stripedLock
}

func NewOrderService(
	logger log.Logger,
	store OrderStore,
	menu MenuLookup,
	publisher EventPublisher,
	opts ...Option,
) OrderService {
	s := &orderService{
		logger:    logger,
		store:     store,
		menu:      menu,
		publisher: publisher,
		numbers:   NewOrderNumberGenerator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder prices the cart from the menu, commits a pending order and
// broadcasts OrderCreated. ErrDuplicateOrderNumber is returned as is; the
// caller decides whether to try again.
func (s *orderService) PlaceOrder(ctx context.Context, request PlaceOrderRequest) (*Order, error) {
	if len(request.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if request.TableNumber < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTableNumber, request.TableNumber)
	}

	items := make([]LineItem, 0, len(request.Items))
	for _, cartItem := range request.Items {
		item, err := s.resolveLine(ctx, cartItem)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	price := Price(items)
	now := s.now()
	order := &Order{
		ID:            uuid.NewString(),
		OrderNumber:   s.numbers.Next(),
		Items:         items,
		Subtotal:      price.Subtotal,
		TaxAmount:     price.TaxAmount,
		TotalAmount:   price.Total,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		TableNumber:   request.TableNumber,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Held through the publish so no change to the new order is announced
	// before its OrderCreated.
	unlock := s.locks.lock(order.ID)
	defer unlock()

	if err := s.store.Create(ctx, order); err != nil {
		s.logFailure(ctx, fmt.Sprintf("failed to create order %s", order.OrderNumber), err)
		return nil, err
	}

	s.logger.InfoWithExtra(ctx, "Order placed", map[string]any{
		"OrderId":     order.ID,
		"OrderNumber": order.OrderNumber,
		"TotalAmount": order.TotalAmount.StringFixed(currencyPlaces),
		"TableNumber": order.TableNumber,
	})
	s.publish(ctx, events.OrderCreated, order)
	return order.Clone(), nil
}

func (s *orderService) resolveLine(ctx context.Context, cartItem CartItem) (LineItem, error) {
	if cartItem.MenuItemID == "" {
		return LineItem{}, &MenuReferenceError{Reason: "menu item id is required"}
	}
	if cartItem.Quantity < 1 {
		return LineItem{}, fmt.Errorf("%w: %q has quantity %d", ErrInvalidQuantity, cartItem.MenuItemID, cartItem.Quantity)
	}

	entry, err := s.menu.Resolve(ctx, cartItem.MenuItemID)
	if err != nil {
		return LineItem{}, StorageFailure("resolve menu item "+cartItem.MenuItemID, err)
	}
	switch {
	case entry == nil:
		return LineItem{}, &MenuReferenceError{MenuItemID: cartItem.MenuItemID, Reason: "unknown menu item"}
	case !entry.Available:
		return LineItem{}, &MenuReferenceError{MenuItemID: cartItem.MenuItemID, Reason: "menu item is unavailable"}
	case entry.Price.IsNegative():
		return LineItem{}, &MenuReferenceError{MenuItemID: cartItem.MenuItemID, Reason: "menu item has a negative price"}
	}

	return LineItem{
		MenuItemID: entry.ID,
		Name:       entry.Name,
		Category:   entry.Category,
		Quantity:   cartItem.Quantity,
		Price:      entry.Price,
	}, nil
}

// AdvanceStatus moves an order along the lifecycle and broadcasts
// OrderStatusChanged. The order's stripe is held across the store write and
// the publish so a later transition is never announced before an earlier one.
func (s *orderService) AdvanceStatus(ctx context.Context, orderID string, to Status) (*Order, error) {
	unlock := s.locks.lock(orderID)
	defer unlock()

	order, err := s.store.UpdateStatus(ctx, orderID, to, actorName(ctx))
	if err != nil {
		s.logFailure(ctx, fmt.Sprintf("failed to move order %s to %s", orderID, to), err)
		return nil, err
	}

	s.logger.Info(ctx, fmt.Sprintf("Order %s moved to %s", order.OrderNumber, order.Status))
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

func (s *orderService) SetPaymentStatus(ctx context.Context, orderID string, paid bool) (*Order, error) {
	unlock := s.locks.lock(orderID)
	defer unlock()

	order, err := s.store.SetPaymentStatus(ctx, orderID, PaymentStatusOf(paid))
	if err != nil {
		s.logFailure(ctx, fmt.Sprintf("failed to set payment status of order %s", orderID), err)
		return nil, err
	}

	s.logger.Info(ctx, fmt.Sprintf("Order %s marked %s", order.OrderNumber, order.PaymentStatus))
	s.publish(ctx, events.OrderPaymentChanged, order)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.store.Get(ctx, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	return s.store.List(ctx, filter)
}

func (s *orderService) publish(ctx context.Context, eventType string, order *Order) {
	event := order.toEvent(eventType, s.now())
	if err := event.Validate(); err != nil {
		s.logger.Exception(ctx, "Refusing to publish invalid order event", err)
		return
	}
	s.publisher.Publish(ctx, event)
}

// logFailure keeps client mistakes at warn level and everything else at error.
func (s *orderService) logFailure(ctx context.Context, message string, err error) {
	if errors.Is(err, ErrStorageUnavailable) {
		s.logger.Exception(ctx, message, err)
		return
	}
	s.logger.Warn(ctx, message+": "+err.Error())
}

func actorName(ctx context.Context) string {
	if role, ok := ActorFromContext(ctx); ok {
		return role.String()
	}
	return ""
}

const lockStripes = 64

type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLock) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
