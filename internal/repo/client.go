package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/game_store/internal/models"
)

// Client is a bot user with the totals of their non-cancelled orders.
type Client struct {
	models.User
	OrderCount int64   `json:"order_count"`
	Spent      float64 `json:"total_spent"`
}

type ClientDetail struct {
	Client
	Orders []models.Order `json:"orders"`
}

func (r *GormRepo) ListClients(ctx context.Context, offset, limit int) (int64, []Client, error) {
	db := r.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, mapErr(err)
	}

	q := db.Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return 0, nil, mapErr(err)
	}
	if len(users) == 0 {
		return total, []Client{}, nil
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	var rows []UserOrderStats
	err := db.Model(&models.Order{}).
		Select("user_id, COUNT(*) AS order_count, COALESCE(SUM(total), 0) AS spent").
		Where("status <> ? AND user_id IN ?", models.StatusCancelled, ids).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, mapErr(err)
	}
	stats := make(map[int64]UserOrderStats, len(rows))
	for _, row := range rows {
		stats[row.UserID] = row
	}

	out := make([]Client, 0, len(users))
	for _, u := range users {
		st := stats[u.ID]
		out = append(out, Client{User: u, OrderCount: st.OrderCount, Spent: decimal.NewFromFloat(st.Spent).Round(2).InexactFloat64()})
	}
	return total, out, nil
}

// GetClient returns the user with every order they placed, newest first.
// Cancelled orders are listed but left out of the totals.
func (r *GormRepo) GetClient(ctx context.Context, userID int64) (*ClientDetail, error) {
	u, err := r.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, orders, err := r.ListOrders(ctx, OrderFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	d := &ClientDetail{Client: Client{User: *u}, Orders: orders}
	spent := decimal.Zero
	for _, o := range orders {
		if o.Status == models.StatusCancelled {
			continue
		}
		d.OrderCount++
		spent = spent.Add(decimal.NewFromFloat(o.Total))
	}
	d.Spent = spent.Round(2).InexactFloat64()
	return d, nil
}
