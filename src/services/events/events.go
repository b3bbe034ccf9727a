package events

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Event types, also used as broker routing keys
	OrderCreated        = "order.created"
	OrderStatusChanged  = "order.status.changed"
	OrderPaymentChanged = "order.payment.changed"

	// Event status enums for order_events collection
	EventStatusPending   = "pending"   // Event is waiting to be published
	EventStatusFailed    = "failed"    // Publishing failed, needs replay
	EventStatusCompleted = "completed" // Event was published
	EventStatusReplaying = "replaying" // Event is currently being replayed
)

// Types lists every event type a viewer can receive.
var Types = []string{OrderCreated, OrderStatusChanged, OrderPaymentChanged}

// OrderEvent is a committed order change as seen by viewers. Order is the
// full order state after the change.
type OrderEvent struct {
	Type      string    `json:"type"`
	Sequence  uint64    `json:"sequence"`
	Order     Order     `json:"order"`
	TimeStamp time.Time `json:"timestamp"`
}

type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	TableNumber   int             `json:"tableNumber"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type LineItem struct {
	MenuItem MenuItemRef     `json:"menuItem"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type MenuItemRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

func (e *OrderEvent) Validate() error {
	switch e.Type {
	case OrderCreated, OrderStatusChanged, OrderPaymentChanged:
	default:
		return errors.New("unknown order event type: " + e.Type)
	}
	if e.Order.ID == "" || e.Order.OrderNumber == "" || e.Order.Status == "" {
		return errors.New("missing required fields in OrderEvent")
	}
	if len(e.Order.Items) == 0 {
		return errors.New("OrderEvent carries an order without items")
	}
	return nil
}
