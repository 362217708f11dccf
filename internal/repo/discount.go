package repo

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

func (r *GormRepo) ListDiscounts(ctx context.Context) ([]models.Discount, error) {
	var ds []models.Discount
	if err := r.DB.WithContext(ctx).Order("starts_at DESC, id DESC").Find(&ds).Error; err != nil {
		return nil, mapErr(err)
	}
	return ds, nil
}

func (r *GormRepo) CreateDiscount(ctx context.Context, d *models.Discount) error {
	if _, err := r.GetProduct(ctx, d.ProductID); err != nil {
		return err
	}
	return mapErr(r.DB.WithContext(ctx).Omit("Product").Create(d).Error)
}

func (r *GormRepo) DeleteDiscount(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Discount{}, id)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("discount %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
