package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/testutil"
)

func TestCartService_AddListClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := testutil.CreateProduct(t, f.repo.DB, "Sekiro", 39.99, 3)
	b := testutil.CreateProduct(t, f.repo.DB, "Bayonetta", 10.01, 3)

	_, err := f.cart.Add(ctx, 1, a.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.cart.Add(ctx, 1, a.ID, 1)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, 1, b.ID, 2)
	require.NoError(t, err)

	_, err = f.cart.Add(ctx, 1, b.ID, 2)
	require.ErrorIs(t, err, domain.ErrOutOfStock)

	cart, err := f.cart.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "Bayonetta", cart.Lines[0].Product.Name)
	assert.InDelta(t, 60.01, cart.Total, 0.001)

	require.NoError(t, f.cart.Clear(ctx, 1))
	cart, err = f.cart.List(ctx, 1)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestCartService_SetQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := testutil.CreateProduct(t, f.repo.DB, "Okami", 20, 4)
	_, err := f.cart.Add(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	line, err := f.cart.SetQuantity(ctx, 1, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	_, err = f.cart.SetQuantity(ctx, 1, p.ID, 5)
	require.ErrorIs(t, err, domain.ErrOutOfStock)

	_, err = f.cart.SetQuantity(ctx, 1, p.ID, -1)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.cart.SetQuantity(ctx, 1, p.ID, 0)
	require.NoError(t, err)
	cart, err := f.cart.List(ctx, 1)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}
