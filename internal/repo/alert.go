package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/game_store/internal/models"
)

type StockLevel struct {
	Product   models.Product `json:"product"`
	Threshold int            `json:"threshold"`
	Low       bool           `json:"low"`
}

func (r *GormRepo) SetStockAlert(ctx context.Context, productID uint, threshold int) (*models.StockAlert, error) {
	if _, err := r.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	a := models.StockAlert{ProductID: productID, Threshold: threshold, UpdatedAt: r.now()}
	err := r.DB.WithContext(ctx).Omit("Product").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"threshold", "updated_at"}),
	}).Create(&a).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

// StockLevels lists every product with its alert threshold; products without
// an explicit alert use def.
func (r *GormRepo) StockLevels(ctx context.Context, def int) ([]StockLevel, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).Order("stock ASC, name ASC, id ASC").Find(&products).Error; err != nil {
		return nil, mapErr(err)
	}
	var alerts []models.StockAlert
	if err := r.DB.WithContext(ctx).Find(&alerts).Error; err != nil {
		return nil, mapErr(err)
	}
	thresholds := make(map[uint]int, len(alerts))
	for _, a := range alerts {
		thresholds[a.ProductID] = a.Threshold
	}

	out := make([]StockLevel, 0, len(products))
	for _, p := range products {
		th, ok := thresholds[p.ID]
		if !ok {
			th = def
		}
		out = append(out, StockLevel{Product: p, Threshold: th, Low: p.Stock < th})
	}
	return out, nil
}

func (r *GormRepo) LowStock(ctx context.Context, def int) ([]StockLevel, error) {
	levels, err := r.StockLevels(ctx, def)
	if err != nil {
		return nil, err
	}
	out := levels[:0]
	for _, l := range levels {
		if l.Low {
			out = append(out, l)
		}
	}
	return out, nil
}
