package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, mapErr(err)
	}
	return cats, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return mapErr(r.DB.WithContext(ctx).Create(c).Error)
}

// EnsureCategories inserts missing category names, keeping existing rows.
func (r *GormRepo) EnsureCategories(ctx context.Context, names []string) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		for _, n := range names {
			c := models.Category{Name: n}
			if err := tx.Where("name = ?", n).FirstOrCreate(&c).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateCategory renames the category and rewrites the tag on every product
// carrying the old name.
func (r *GormRepo) UpdateCategory(ctx context.Context, id uint, name, description string) (*models.Category, error) {
	var cat models.Category
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
			}
			return err
		}
		old := cat.Name
		if err := tx.Model(&cat).Updates(map[string]any{"name": name, "description": description}).Error; err != nil {
			return err
		}
		cat.Name, cat.Description = name, description
		if old == name {
			return nil
		}

		products, err := productsWithPlatform(tx, old)
		if err != nil {
			return err
		}
		for _, p := range products {
			tags := make([]string, 0, len(p.Platforms))
			for _, t := range p.Platforms {
				if t == old {
					t = name
				}
				tags = append(tags, t)
			}
			upd := models.Product{Platforms: dedupe(tags)}
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Select("platform").Updates(&upd).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory refuses while any product still carries the tag.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.Where("id = ?", id).Take(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
			}
			return err
		}
		products, err := productsWithPlatform(tx, cat.Name)
		if err != nil {
			return err
		}
		if len(products) > 0 {
			return fmt.Errorf("category %q is used by %d products: %w", cat.Name, len(products), domain.ErrConflict)
		}
		return tx.Delete(&cat).Error
	})
}

func productsWithPlatform(tx *gorm.DB, tag string) ([]models.Product, error) {
	var items []models.Product
	if err := tx.Where(`platform LIKE ? ESCAPE '\'`, platformPattern(tag)).Find(&items).Error; err != nil {
		return nil, err
	}
	out := items[:0]
	for _, p := range items {
		if p.HasPlatform(tag) {
			out = append(out, p)
		}
	}
	return out, nil
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
