package domain

import (
	"context"
	"slices"
	"time"

	"go-restaurant-pos/src/services/events"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	TableNumber   int             `json:"tableNumber"`
	History       []StatusChange  `json:"history"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// LineItem holds the menu item as it was when the order was placed.
type LineItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Category   string          `json:"category,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type StatusChange struct {
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ChangedBy string    `json:"changedBy,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// Takeaway reports whether the order has no table.
func (o *Order) Takeaway() bool {
	return o.TableNumber == 0
}

// Clone returns a deep copy so stores never hand out shared slices.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	c.History = slices.Clone(o.History)
	return &c
}

// OrderFilter selects orders by status and payment status. An empty set
// matches everything.
type OrderFilter struct {
	Statuses        []Status
	PaymentStatuses []PaymentStatus
}

func (f OrderFilter) Matches(o *Order) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
		return false
	}
	if len(f.PaymentStatuses) > 0 && !slices.Contains(f.PaymentStatuses, o.PaymentStatus) {
		return false
	}
	return true
}

// OrderStore is the durable order ledger. UpdateStatus must perform the
// read-validate-write atomically per order id.
type OrderStore interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, to Status, changedBy string) (*Order, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error)
}

type MenuEntry struct {
	ID        string
	Name      string
	Category  string
	Price     decimal.Decimal
	Available bool
}

// MenuLookup resolves menu item ids. Resolve returns nil, nil for an unknown id.
type MenuLookup interface {
	Resolve(ctx context.Context, id string) (*MenuEntry, error)
}

// EventPublisher receives every committed order change. Publish must not block.
type EventPublisher interface {
	Publish(ctx context.Context, event events.OrderEvent)
}

func (o *Order) toEvent(eventType string, at time.Time) events.OrderEvent {
	items := make([]events.LineItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = events.LineItem{
			MenuItem: events.MenuItemRef{ID: item.MenuItemID, Name: item.Name, Category: item.Category},
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	return events.OrderEvent{
		Type: eventType,
		Order: events.Order{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			Items:         items,
			Subtotal:      o.Subtotal,
			TaxAmount:     o.TaxAmount,
			TotalAmount:   o.TotalAmount,
			Status:        o.Status.String(),
			PaymentStatus: o.PaymentStatus.String(),
			TableNumber:   o.TableNumber,
			Version:       o.Version,
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
		},
		TimeStamp: at,
	}
}
