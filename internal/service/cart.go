package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

type CartService struct {
	Repo *repo.GormRepo
}

type Cart struct {
	Lines []repo.CartLine `json:"lines"`
	Total float64         `json:"total"`
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

func (s *CartService) Add(ctx context.Context, userID int64, productID uint, qty int) (*repo.CartLine, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	line, err := s.Repo.AddToCart(ctx, userID, productID, qty)
	if err != nil {
		if !domain.Known(err) {
			logging.FromContext(ctx).Error("add_to_cart_error", "user_id", userID, "product_id", productID, "error", err)
		}
		return nil, err
	}
	return line, nil
}

// SetQuantity replaces the line quantity; zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID int64, productID uint, qty int) (*repo.CartLine, error) {
	if qty < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if qty == 0 {
		return nil, s.Repo.RemoveFromCart(ctx, userID, productID)
	}
	return s.Repo.SetCartQuantity(ctx, userID, productID, qty)
}

func (s *CartService) Remove(ctx context.Context, userID int64, productID uint) error {
	return s.Repo.RemoveFromCart(ctx, userID, productID)
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.Repo.ClearCart(ctx, userID)
}

func (s *CartService) List(ctx context.Context, userID int64) (*Cart, error) {
	lines, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Cart{Lines: lines, Total: cartTotal(lines)}, nil
}

// cartTotal uses the same discounted unit prices as the committer. A price
// or discount change before commit still wins at commit time.
func cartTotal(lines []repo.CartLine) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.Subtotal()))
	}
	return total.Round(2).InexactFloat64()
}
