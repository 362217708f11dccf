package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

// EnsureUser inserts the Telegram user or refreshes its profile fields.
func (r *GormRepo) EnsureUser(ctx context.Context, u models.User) error {
	now := r.now()
	u.LastSeenAt = now
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "last_seen_at"}),
	}).Create(&u).Error
	return mapErr(err)
}

func (r *GormRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *GormRepo) SaveContact(ctx context.Context, userID int64, b models.BuyerSnapshot) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"phone":        b.Phone,
		"address":      b.Address,
		"email":        b.Email,
		"last_seen_at": r.now(),
	})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, mapErr(err)
	}
	return users, nil
}

func (r *GormRepo) UserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, mapErr(err)
	}
	return ids, nil
}

type UserOrderStats struct {
	UserID     int64
	OrderCount int64
	Spent      float64
}

// UserOrderStats sums non-cancelled orders per user.
func (r *GormRepo) UserOrderStats(ctx context.Context) (map[int64]UserOrderStats, error) {
	var rows []UserOrderStats
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("user_id, COUNT(*) AS order_count, COALESCE(SUM(total), 0) AS spent").
		Where("status <> ?", models.StatusCancelled).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, mapErr(err)
	}
	out := make(map[int64]UserOrderStats, len(rows))
	for _, row := range rows {
		out[row.UserID] = row
	}
	return out, nil
}
