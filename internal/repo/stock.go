package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

// adjustStock is the only relative write to products.stock. The condition
// lives in the statement, so concurrent writers can never take stock below
// zero whatever they read earlier.
func adjustStock(tx *gorm.DB, productID uint, delta int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", productID, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var p models.Product
	if err := tx.Select("id", "name", "stock").Where("id = ?", productID).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}
		return err
	}
	return &domain.StockError{
		Kind:      domain.ErrInsufficientStock,
		ProductID: p.ID,
		Name:      p.Name,
		Available: p.Stock,
		Requested: -delta,
	}
}

func (r *GormRepo) AdjustStock(ctx context.Context, productID uint, delta int) (*models.Product, error) {
	var p models.Product
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		if err := adjustStock(tx, productID, delta); err != nil {
			return err
		}
		return tx.Where("id = ?", productID).Take(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetStock overwrites the stock count and reports the count it replaced. Both
// are read inside the transaction that writes.
func (r *GormRepo) SetStock(ctx context.Context, productID uint, stock int) (*models.Product, int, error) {
	if stock < 0 {
		return nil, 0, fmt.Errorf("%w: stock must be >= 0", domain.ErrValidation)
	}
	var (
		p      models.Product
		before int
	)
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		var cur models.Product
		if err := tx.Select("id", "stock").Where("id = ?", productID).Take(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
			}
			return err
		}
		before = cur.Stock
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).UpdateColumn("stock", stock).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", productID).Take(&p).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &p, before, nil
}
