package repo

import (
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/models"
)

// activeDiscounts returns the largest percentage active at t per product.
func activeDiscounts(tx *gorm.DB, ids []uint, t time.Time) (map[uint]float64, error) {
	out := make(map[uint]float64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Discount
	if err := tx.Where("product_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, d := range rows {
		if d.ActiveAt(t) && d.Percentage > out[d.ProductID] {
			out[d.ProductID] = d.Percentage
		}
	}
	return out, nil
}

// withDiscounts fills DiscountPct so every reader prices products the way
// the committer does.
func (r *GormRepo) withDiscounts(tx *gorm.DB, products []models.Product) error {
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	pct, err := activeDiscounts(tx, ids, r.now())
	if err != nil {
		return err
	}
	for i := range products {
		products[i].DiscountPct = pct[products[i].ID]
	}
	return nil
}

func (r *GormRepo) withDiscount(tx *gorm.DB, p *models.Product) error {
	one := []models.Product{*p}
	if err := r.withDiscounts(tx, one); err != nil {
		return err
	}
	p.DiscountPct = one[0].DiscountPct
	return nil
}
