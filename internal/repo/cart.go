package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

type CartLine struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal prices the line with the discount active when it was read.
func (l CartLine) Subtotal() float64 {
	unit := models.DiscountedPrice(l.Product.Price, l.Product.DiscountPct)
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity))).InexactFloat64()
}

// AddToCart increments (or creates) the line and rolls back if the new
// cumulative quantity is above the product's stock.
func (r *GormRepo) AddToCart(ctx context.Context, userID int64, productID uint, qty int) (*CartLine, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var line CartLine
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}

		product, err := productForCart(tx, productID)
		if err != nil {
			return err
		}

		item := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
		if res.RowsAffected == 0 {
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return err
			}
		} else if err := tx.Where("user_id = ? AND product_id = ?", userID, productID).Take(&item).Error; err != nil {
			return err
		}

		if item.Quantity > product.Stock {
			return &domain.StockError{
				Kind:      domain.ErrOutOfStock,
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.Stock,
				Requested: item.Quantity,
			}
		}
		line = CartLine{Product: *product, Quantity: item.Quantity}
		return r.withDiscount(tx, &line.Product)
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// SetCartQuantity replaces the line quantity; zero removes the line.
func (r *GormRepo) SetCartQuantity(ctx context.Context, userID int64, productID uint, qty int) (*CartLine, error) {
	if qty < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if qty == 0 {
		return nil, r.RemoveFromCart(ctx, userID, productID)
	}
	var line CartLine
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			UpdateColumn("quantity", qty)
		if res.Error != nil {
			return res.Error
		}
		product, err := productForCart(tx, productID)
		if err != nil {
			return err
		}
		if qty > product.Stock {
			return &domain.StockError{
				Kind:      domain.ErrOutOfStock,
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.Stock,
				Requested: qty,
			}
		}
		if res.RowsAffected == 0 {
			item := models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return err
			}
		}
		line = CartLine{Product: *product, Quantity: qty}
		return r.withDiscount(tx, &line.Product)
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func productForCart(tx *gorm.DB, productID uint) (*models.Product, error) {
	var p models.Product
	if err := tx.Where("id = ?", productID).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID int64, productID uint) error {
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
	return mapErr(err)
}

func (r *GormRepo) ClearCart(ctx context.Context, userID int64) error {
	return mapErr(r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error)
}

// GetCart returns the lines joined with live product rows, ordered by product
// name then id.
func (r *GormRepo) GetCart(ctx context.Context, userID int64) ([]CartLine, error) {
	db := r.DB.WithContext(ctx)
	items, err := cartItems(db, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	lines := toLines(items)
	for i := range lines {
		if err := r.withDiscount(db, &lines[i].Product); err != nil {
			return nil, mapErr(err)
		}
	}
	return lines, nil
}

func cartItems(tx *gorm.DB, userID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := tx.Preload("Product").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func toLines(items []models.CartItem) []CartLine {
	products := make([]models.Product, 0, len(items))
	qty := make(map[uint]int, len(items))
	for _, it := range items {
		products = append(products, it.Product)
		qty[it.ProductID] = it.Quantity
	}
	sortProducts(products)

	lines := make([]CartLine, 0, len(products))
	for _, p := range products {
		lines = append(lines, CartLine{Product: p, Quantity: qty[p.ID]})
	}
	return lines
}

func (r *GormRepo) CartSize(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}
