package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidPrice       = errors.New("price must be positive for LIMIT orders")
	ErrInvalidSide        = errors.New("side must be BUY or SELL")
	ErrInvalidType        = errors.New("type must be LIMIT or MARKET")
	ErrDuplicateID        = errors.New("order id already resting")
	ErrNotFound           = errors.New("order not found")
	ErrShutdownInProgress = errors.New("engine is shutting down")
	ErrQueueFull          = errors.New("ingress queue is full")
)

// OrderError ties a rejection to the order that caused it.
type OrderError struct {
	OrderID string
	Err     error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order %s rejected: %v", e.OrderID, e.Err)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

func reject(orderID string, err error) error {
	return &OrderError{OrderID: orderID, Err: err}
}

func invariant(format string, args ...any) {
	panic(fmt.Sprintf("invariant violated: "+format, args...))
}
