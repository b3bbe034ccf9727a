package persistence

import (
	"go-restaurant-pos/src/services/order/domain"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderDocument_KeepsFullPrecision(t *testing.T) {
	order := newOrder("o-1", "ORD-1")
	order.Items = []domain.LineItem{{MenuItemID: "chai", Name: "Masala Chai", Quantity: 3, Price: decimal.RequireFromString("12.345")}}
	order.Subtotal = decimal.RequireFromString("37.035")
	order.TaxAmount = decimal.RequireFromString("3.70")
	order.TotalAmount = decimal.RequireFromString("40.735")

	doc, err := toDocument(order)
	require.NoError(t, err)
	got, err := decodeOrder(doc)
	require.NoError(t, err)

	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("12.345")), got.Items[0].Price.String())
	assert.True(t, got.Subtotal.Equal(order.Subtotal), got.Subtotal.String())
	assert.True(t, got.TotalAmount.Equal(order.TotalAmount), got.TotalAmount.String())
}

func TestDecodeOrder_CorruptDocumentIsStorageFailure(t *testing.T) {
	valid, err := toDocument(newOrder("o-2", "ORD-2"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		modify func(*OrderDocument)
	}{
		{"unknown status", func(d *OrderDocument) { d.Status = "burnt" }},
		{"unknown payment status", func(d *OrderDocument) { d.PaymentStatus = "maybe" }},
		{"bad history entry", func(d *OrderDocument) {
			d.History = append(d.History, StatusChangeDocument{From: "pending", To: "lost", ChangedAt: time.Now()})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid
			doc.History = append([]StatusChangeDocument(nil), valid.History...)
			tt.modify(&doc)

			_, err := decodeOrder(doc)
			assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
			assert.Contains(t, err.Error(), "o-2")
		})
	}
}
