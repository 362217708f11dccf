package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		in   string
		want Callback
	}{
		{"main_menu", Callback{Action: CbMainMenu}},
		{"finalize_checkout", Callback{Action: CbFinalizeCheckout}},
		{"platform:PlayStation 5", Callback{Action: CbPlatform, Arg: "PlayStation 5"}},
		{"product:12", Callback{Action: CbProduct, Arg: "12", ID: 12}},
		{"add_to_cart:3", Callback{Action: CbAddToCart, Arg: "3", ID: 3}},
		{"cancel_order:9", Callback{Action: CbCancelOrder, Arg: "9", ID: 9}},
	}
	for _, c := range cases {
		got, err := ParseCallback(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	for _, bad := range []string{"", "product", "product:", "product:x", "product:0", "platform:", "main_menu:1", "nope"} {
		_, err := ParseCallback(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$0.00", FormatPrice(0))
	assert.Equal(t, "$59.99", FormatPrice(59.99))
	assert.Equal(t, "$1049.50", FormatPrice(1049.5))
}

func TestUserMessage(t *testing.T) {
	ctx := context.Background()

	err := &domain.StockError{Kind: domain.ErrInsufficientStock, Name: "Celeste", Available: 1, Requested: 3}
	assert.Equal(t, "Sorry, only 1 left of Celeste (you asked for 3). Please adjust your cart.", userMessage(ctx, err))

	assert.Equal(t, "The store is busy right now, please try again in a moment.", userMessage(ctx, domain.ErrBusy))
	assert.Equal(t, "Something went wrong, please try again later.", userMessage(ctx, domain.ErrStorage))
	assert.Contains(t, userMessage(ctx, domain.ErrEmptyCart), "cart is empty")
}

func TestProductCaption_ShowsDiscountedPrice(t *testing.T) {
	p := models.Product{Name: "Hades", Platforms: []string{"PC"}, Price: 40, Stock: 2}
	assert.Contains(t, productCaption(p), "Price: $40.00\n")

	p.DiscountPct = 25
	assert.Contains(t, productCaption(p), "Price: $30.00 (was $40.00, -25%)")
}
