package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidQuantity      = errors.New("item quantity must be at least 1")
	ErrInvalidTableNumber   = errors.New("table number cannot be negative")
	ErrInvalidMenuReference = errors.New("invalid menu reference")
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrStorageUnavailable   = errors.New("storage unavailable")
)

// TransitionError identifies a rejected status move.
type TransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	to := e.To.String()
	if !e.To.IsValid() {
		to = "<invalid>"
	}
	if e.OrderID == "" {
		return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, to)
	}
	return fmt.Sprintf("%s for order %s: %s -> %s", ErrInvalidTransition, e.OrderID, e.From, to)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// MenuReferenceError names the cart line whose menu item could not be used.
type MenuReferenceError struct {
	MenuItemID string
	Reason     string
}

func (e *MenuReferenceError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidMenuReference, e.MenuItemID, e.Reason)
}

func (e *MenuReferenceError) Unwrap() error { return ErrInvalidMenuReference }

// NotFound wraps ErrOrderNotFound with the missing id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

// StorageFailure wraps a driver error so callers can match ErrStorageUnavailable.
func StorageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
