package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrOutOfStock        = errors.New("out of stock")       // 409
	ErrInsufficientStock = errors.New("insufficient stock") // 409
	ErrStorage           = errors.New("storage")            // 500

	ErrBusy            = fmt.Errorf("%w: database busy, retry later", ErrStorage) // 503
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	ErrEmptyCart       = fmt.Errorf("%w: cart is empty", ErrValidation)
)

// StockError reports which product could not supply the requested quantity.
// Kind is ErrOutOfStock for cart writes and ErrInsufficientStock for commits
// and stock adjustments.
type StockError struct {
	Kind      error
	ProductID uint
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%v: %q (id %d) has %d, requested %d", e.Kind, e.Name, e.ProductID, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return e.Kind }

// Known reports whether err already carries one of the domain sentinels.
func Known(err error) bool {
	for _, s := range []error{ErrValidation, ErrUnauthorized, ErrNotFound, ErrConflict, ErrOutOfStock, ErrInsufficientStock, ErrStorage} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
