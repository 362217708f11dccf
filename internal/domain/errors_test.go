package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockError_Unwraps(t *testing.T) {
	err := fmt.Errorf("commit: %w", &StockError{Kind: ErrInsufficientStock, ProductID: 3, Name: "Halo", Available: 1, Requested: 2})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrOutOfStock)

	var se *StockError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Available)
	assert.Contains(t, err.Error(), `"Halo" (id 3) has 1, requested 2`)
}

func TestWrappedSentinels(t *testing.T) {
	assert.ErrorIs(t, ErrBusy, ErrStorage)
	assert.ErrorIs(t, ErrEmptyCart, ErrValidation)
	assert.ErrorIs(t, ErrInvalidQuantity, ErrValidation)

	assert.True(t, Known(fmt.Errorf("x: %w", ErrNotFound)))
	assert.True(t, Known(&StockError{Kind: ErrOutOfStock}))
	assert.False(t, Known(errors.New("boom")))
}
