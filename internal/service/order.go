package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

type OrderService struct {
	Repo            *repo.GormRepo
	Events          events.Publisher
	Index           ProductIndex
	RestockOnCancel bool
}

type StatusChange struct {
	OrderID uint               `json:"order_id"`
	UserID  int64              `json:"user_id"`
	Status  models.OrderStatus `json:"status"`
	Restock bool               `json:"restocked,omitempty"`
}

// Checkout validates the buyer, commits the user's cart and remembers the
// contact details for the next checkout.
func (s *OrderService) Checkout(ctx context.Context, userID int64, buyer models.BuyerSnapshot) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	buyer, err := ValidateBuyer(buyer)
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.CheckoutCart(ctx, userID, buyer)
	if err != nil {
		s.logCommitError(l, err)
		return nil, err
	}

	if err := s.Repo.SaveContact(ctx, userID, buyer); err != nil {
		l.Warn("save_contact_failed", "error", err)
	}
	l.Info("order_committed", "order_id", order.ID, "total", order.Total)
	s.reindex(ctx, order)
	events.Emit(ctx, s.Events, events.TopicOrders, orderKey(order.ID), events.New(events.OrderCreated, order))
	return order, nil
}

// Commit places an order from explicit lines instead of the stored cart.
func (s *OrderService) Commit(ctx context.Context, userID int64, lines []repo.OrderLine, buyer models.BuyerSnapshot) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.commit", "user_id", userID)

	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	buyer, err := ValidateBuyer(buyer)
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.CommitOrder(ctx, userID, lines, buyer)
	if err != nil {
		s.logCommitError(l, err)
		return nil, err
	}
	l.Info("order_committed", "order_id", order.ID, "total", order.Total)
	s.reindex(ctx, order)
	events.Emit(ctx, s.Events, events.TopicOrders, orderKey(order.ID), events.New(events.OrderCreated, order))
	return order, nil
}

func (s *OrderService) logCommitError(l *slog.Logger, err error) {
	switch {
	case errIsAny(err, domain.ErrValidation, domain.ErrNotFound, domain.ErrInsufficientStock, domain.ErrBusy):
		l.Warn("order_commit_rejected", "error", err)
	default:
		l.Error("order_commit_failed", "error", err)
	}
}

// reindex pushes the new stock of every product in the order to the index.
func (s *OrderService) reindex(ctx context.Context, order *models.Order) {
	if s.Index == nil {
		return
	}
	l := logging.FromContext(ctx)
	for _, it := range order.Items {
		p, err := s.Repo.GetProduct(ctx, it.ProductID)
		if err == nil {
			err = s.Index.IndexProduct(ctx, *p)
		}
		if err != nil {
			l.Warn("index_product_failed", "product_id", it.ProductID, "order_id", order.ID, "error", err)
		}
	}
}

// Cancel is the admin cancel: any non-cancelled order.
func (s *OrderService) Cancel(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.cancel(ctx, orderID, 0)
}

// CancelByUser lets a buyer cancel their own pending or processing order.
func (s *OrderService) CancelByUser(ctx context.Context, userID int64, orderID uint) (*models.Order, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.cancel(ctx, orderID, userID)
}

func (s *OrderService) cancel(ctx context.Context, orderID uint, userID int64) (*models.Order, error) {
	order, err := s.Repo.CancelOrder(ctx, orderID, userID, s.RestockOnCancel)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("order_cancelled", "order_id", order.ID, "by_user", userID != 0, "restock", s.RestockOnCancel)
	if s.RestockOnCancel {
		s.reindex(ctx, order)
	}
	events.Emit(ctx, s.Events, events.TopicOrders, orderKey(order.ID), events.New(events.OrderCancelled, StatusChange{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		Restock: s.RestockOnCancel,
	}))
	return order, nil
}

// UpdateStatus routes cancellation through Cancel so the restock policy
// applies.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, raw string) (*models.Order, error) {
	status, ok := models.ParseOrderStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, raw)
	}
	if status == models.StatusCancelled {
		return s.Cancel(ctx, orderID)
	}
	order, err := s.Repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.Events, events.TopicOrders, orderKey(order.ID), events.New(events.OrderStatusChanged, StatusChange{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
	}))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.Repo.GetOrder(ctx, id)
}

// GetUserOrder hides other buyers' orders behind NotFound.
func (s *OrderService) GetUserOrder(ctx context.Context, userID int64, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return o, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	return s.Repo.ListUserOrders(ctx, userID, limit)
}

func (s *OrderService) ListOrders(ctx context.Context, f repo.OrderFilter) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, f)
}

func orderKey(id uint) string {
	return fmt.Sprintf("order-%d", id)
}
