package cart

import (
	"errors"
	"fmt"

	"github.com/adyen/cartcheck/internal/price"
	"github.com/adyen/cartcheck/internal/wait"
)

// Cart errors
var (
	ErrOutOfRange         = errors.New("line item position out of range")
	ErrNotFound           = errors.New("line item not found")
	ErrTimeout            = wait.ErrTimeout
	ErrInvariantViolation = errors.New("cart total does not match sum of line items")
)

// InvariantError describes a snapshot whose reported total differs from its line item sum
type InvariantError struct {
	Total price.Amount
	Sum   price.Amount
	Items int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: total %s, sum %s over %d items", ErrInvariantViolation, e.Total, e.Sum, e.Items)
}

// Unwrap lets errors.Is match ErrInvariantViolation
func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// Retryable reports whether err is an operational failure a caller may retry once.
// An invariant violation is the verification result itself and is never retryable.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, ErrInvariantViolation) {
		return false
	}
	return errors.Is(err, ErrOutOfRange) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrTimeout)
}
