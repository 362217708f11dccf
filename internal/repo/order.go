package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

type OrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type OrderFilter struct {
	Status models.OrderStatus
	UserID int64
	Offset int
	Limit  int
}

// CoalesceLines merges duplicate product lines by summing their quantities
// and returns them ordered by product id.
func CoalesceLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	sum := make(map[uint]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: %w", l.ProductID, domain.ErrInvalidQuantity)
		}
		sum[l.ProductID] += l.Quantity
	}
	out := make([]OrderLine, 0, len(sum))
	for id, q := range sum {
		out = append(out, OrderLine{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// CommitOrder turns lines into an order in one transaction: stock is
// decremented per product, prices are read at commit time, the order and its
// items are written and the user's cart is emptied. Any failure leaves every
// table untouched.
func (r *GormRepo) CommitOrder(ctx context.Context, userID int64, lines []OrderLine, buyer models.BuyerSnapshot) (*models.Order, error) {
	merged, err := CoalesceLines(lines)
	if err != nil {
		return nil, err
	}
	var order *models.Order
	err = r.transaction(ctx, func(tx *gorm.DB) error {
		o, err := r.commit(tx, userID, merged, buyer)
		order = o
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CheckoutCart commits the user's current cart. An empty cart is rejected
// before a transaction opens; the lines themselves are read inside the same
// transaction that clears them.
func (r *GormRepo) CheckoutCart(ctx context.Context, userID int64, buyer models.BuyerSnapshot) (*models.Order, error) {
	n, err := r.CartSize(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrEmptyCart
	}

	var order *models.Order
	err = r.transaction(ctx, func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return err
		}
		lines := make([]OrderLine, 0, len(items))
		for _, it := range items {
			lines = append(lines, OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		merged, err := CoalesceLines(lines)
		if err != nil {
			return err
		}
		o, err := r.commit(tx, userID, merged, buyer)
		order = o
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormRepo) commit(tx *gorm.DB, userID int64, lines []OrderLine, buyer models.BuyerSnapshot) (*models.Order, error) {
	now := r.now()
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))

	for _, l := range lines {
		if err := adjustStock(tx, l.ProductID, -l.Quantity); err != nil {
			return nil, err
		}

		var p models.Product
		if err := tx.Where("id = ?", l.ProductID).Take(&p).Error; err != nil {
			return nil, err
		}
		pct, err := activeDiscounts(tx, []uint{p.ID}, now)
		if err != nil {
			return nil, err
		}
		unit := models.DiscountedPrice(p.Price, pct[p.ID])

		total = total.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
		items = append(items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   unit.InexactFloat64(),
		})
	}

	order := &models.Order{
		UserID:    userID,
		Status:    models.StatusPending,
		Total:     total.Round(2).InexactFloat64(),
		Buyer:     buyer,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     items,
	}
	if err := tx.Create(order).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder marks the order cancelled. With restock set, ordered
// quantities go back through adjustStock in the same transaction. A non-zero
// userID restricts the cancel to that buyer's pending/processing orders.
func (r *GormRepo) CancelOrder(ctx context.Context, orderID uint, userID int64, restock bool) (*models.Order, error) {
	var order models.Order
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		q := tx.Model(&models.Order{}).Where("id = ? AND status <> ?", orderID, models.StatusCancelled)
		if userID != 0 {
			q = q.Where("user_id = ? AND status IN ?", userID, []models.OrderStatus{models.StatusPending, models.StatusProcessing})
		}
		res := q.Updates(map[string]any{"status": models.StatusCancelled, "updated_at": r.now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return explainNoUpdate(tx, orderID, userID)
		}

		if err := tx.Preload("Items").Where("id = ?", orderID).Take(&order).Error; err != nil {
			return err
		}
		if !restock {
			return nil
		}
		for _, it := range order.Items {
			err := adjustStock(tx, it.ProductID, it.Quantity)
			if errors.Is(err, domain.ErrNotFound) {
				// product deleted since the order was placed
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func explainNoUpdate(tx *gorm.DB, orderID uint, userID int64) error {
	var o models.Order
	if err := tx.Select("id", "user_id", "status").Where("id = ?", orderID).Take(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
		}
		return err
	}
	if userID != 0 && o.UserID != userID {
		return fmt.Errorf("order %d: %w", orderID, domain.ErrNotFound)
	}
	return fmt.Errorf("order %d is %s: %w", orderID, o.Status, domain.ErrConflict)
}

// UpdateOrderStatus moves a live order to a non-cancelled status.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if status == models.StatusCancelled {
		return nil, fmt.Errorf("%w: use CancelOrder for cancellation", domain.ErrValidation)
	}
	var order models.Order
	err := r.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status <> ?", orderID, models.StatusCancelled).
			Updates(map[string]any{"status": status, "updated_at": r.now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return explainNoUpdate(tx, orderID, 0)
		}
		return tx.Preload("Items").Where("id = ?", orderID).Take(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).Take(&o).Error; err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, mapErr(err)
	}

	q = q.Preload("Items").Order("created_at DESC, id DESC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return 0, nil, mapErr(err)
	}
	return total, orders, nil
}

func (r *GormRepo) ListUserOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	_, orders, err := r.ListOrders(ctx, OrderFilter{UserID: userID, Limit: limit})
	return orders, err
}
