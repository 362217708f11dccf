package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
)

// MerchService covers categories, discounts and stock alerts.
type MerchService struct {
	Repo              *repo.GormRepo
	LowStockThreshold int
}

func (s *MerchService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *MerchService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	c := &models.Category{Name: name, Description: strings.TrimSpace(description)}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory renames the category and the matching platform tag on
// every product.
func (s *MerchService) UpdateCategory(ctx context.Context, id uint, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrValidation)
	}
	return s.Repo.UpdateCategory(ctx, id, name, strings.TrimSpace(description))
}

func (s *MerchService) DeleteCategory(ctx context.Context, id uint) error {
	return s.Repo.DeleteCategory(ctx, id)
}

func (s *MerchService) Discounts(ctx context.Context) ([]models.Discount, error) {
	return s.Repo.ListDiscounts(ctx)
}

func (s *MerchService) CreateDiscount(ctx context.Context, productID uint, percentage float64, startsAt, endsAt time.Time) (*models.Discount, error) {
	if percentage <= 0 || percentage > 100 {
		return nil, fmt.Errorf("%w: percentage must be in (0, 100]", domain.ErrValidation)
	}
	if !startsAt.Before(endsAt) {
		return nil, fmt.Errorf("%w: starts_at must be before ends_at", domain.ErrValidation)
	}
	d := &models.Discount{
		ProductID:  productID,
		Percentage: percentage,
		StartsAt:   startsAt.UTC(),
		EndsAt:     endsAt.UTC(),
	}
	if err := s.Repo.CreateDiscount(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *MerchService) DeleteDiscount(ctx context.Context, id uint) error {
	return s.Repo.DeleteDiscount(ctx, id)
}

func (s *MerchService) StockLevels(ctx context.Context) ([]repo.StockLevel, error) {
	return s.Repo.StockLevels(ctx, s.LowStockThreshold)
}

func (s *MerchService) SetStockAlert(ctx context.Context, productID uint, threshold int) (*models.StockAlert, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold cannot be negative", domain.ErrValidation)
	}
	return s.Repo.SetStockAlert(ctx, productID, threshold)
}
