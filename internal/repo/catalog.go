package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

type ProductFilter struct {
	Query    string
	Platform string
	InStock  bool
	Offset   int
	Limit    int
}

// ProductPatch carries the editable catalog fields. Stock is changed only
// through AdjustStock/SetStock.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Platforms   *[]string
	Description *string
	ImageRef    *string
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	db := r.DB.WithContext(ctx)
	var p models.Product
	if err := db.Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, mapErr(err)
	}
	if err := r.withDiscount(db, &p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func platformPattern(tag string) string {
	b, _ := json.Marshal(tag)
	return "%" + escapeLike(string(b)) + "%"
}

func (r *GormRepo) ListByPlatform(ctx context.Context, tag string) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).
		Where("stock > 0").
		Where(`platform LIKE ? ESCAPE '\'`, platformPattern(tag)).
		Order("name ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, mapErr(err)
	}

	// LIKE is case-insensitive for ASCII in SQLite; tags are exact.
	out := items[:0]
	for _, p := range items {
		if p.HasPlatform(tag) {
			out = append(out, p)
		}
	}
	if err := r.withDiscounts(r.DB.WithContext(ctx), out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *GormRepo) SearchProducts(ctx context.Context, keyword string, limit int) ([]models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	q := r.DB.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("name ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []models.Product
	if err := q.Find(&items).Error; err != nil {
		return nil, mapErr(err)
	}
	if err := r.withDiscounts(r.DB.WithContext(ctx), items); err != nil {
		return nil, mapErr(err)
	}
	return items, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if f.Platform != "" {
		q = q.Where(`platform LIKE ? ESCAPE '\'`, platformPattern(f.Platform))
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, mapErr(err)
	}

	var items []models.Product
	q = q.Order("name ASC, id ASC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return 0, nil, mapErr(err)
	}
	if err := r.withDiscounts(r.DB.WithContext(ctx), items); err != nil {
		return 0, nil, mapErr(err)
	}
	return total, items, nil
}

func (r *GormRepo) AllProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, mapErr(err)
	}
	return items, nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.Platforms == nil {
		p.Platforms = []string{}
	}
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		return mapErr(err)
	}
	return nil
}

// CreateProductsIfEmpty inserts the batch only when the catalog has no rows.
// It reports how many rows were written.
func (r *GormRepo) CreateProductsIfEmpty(ctx context.Context, products []models.Product) (int, error) {
	written := 0
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 || len(products) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(products, 100).Error; err != nil {
			return err
		}
		written = len(products)
		return nil
	})
	return written, err
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	var cols []string
	var upd models.Product
	if patch.Name != nil {
		cols = append(cols, "name")
		upd.Name = *patch.Name
	}
	if patch.Price != nil {
		cols = append(cols, "price")
		upd.Price = *patch.Price
	}
	if patch.Platforms != nil {
		cols = append(cols, "platform")
		upd.Platforms = *patch.Platforms
	}
	if patch.Description != nil {
		cols = append(cols, "description")
		upd.Description = *patch.Description
	}
	if patch.ImageRef != nil {
		cols = append(cols, "image_url")
		upd.ImageRef = *patch.ImageRef
	}

	var p models.Product
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		if len(cols) > 0 {
			cols = append(cols, "updated_at")
			upd.UpdatedAt = r.now()
			res := tx.Model(&models.Product{}).Where("id = ?", id).Select(cols).Updates(&upd)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
			}
		}
		return tx.Where("id = ?", id).Take(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// PlatformCounts counts products per platform tag.
func (r *GormRepo) PlatformCounts(ctx context.Context) (map[string]int, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Select("id", "platform").Find(&items).Error; err != nil {
		return nil, mapErr(err)
	}
	out := map[string]int{}
	for _, p := range items {
		for _, tag := range p.Platforms {
			out[tag]++
		}
	}
	return out, nil
}

func sortProducts(items []models.Product) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
}
