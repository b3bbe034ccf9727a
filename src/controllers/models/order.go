package models

import (
	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	MenuItem string `json:"menuItem" example:"butter-chicken"`
	Quantity int    `json:"quantity" example:"2"`
}

// PlaceOrderRequest is the cashier's cart. Prices and totals are always taken
// from the menu; any amounts sent by the client are ignored.
type PlaceOrderRequest struct {
	Items       []OrderItemRequest `json:"items"`
	TableNumber int                `json:"tableNumber" example:"4"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" example:"preparing"`
}

type PaymentUpdateRequest struct {
	Paid *bool `json:"paid" example:"true"`
}

type StatsResponse struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue" swaggertype:"number"`
	Count        int             `json:"count"`
	ByStatus     map[string]int  `json:"byStatus"`
}

type ErrorResponse struct {
	Error      bool   `json:"error"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	OrderID    string `json:"orderId,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	MenuItemID string `json:"menuItemId,omitempty"`
}

type MessageResponse struct {
	Status string `json:"status"`
}
