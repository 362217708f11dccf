package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/game_store/internal/models"
)

const defaultLogLimit = 100

// UpsertAdmin creates the account or replaces its password hash.
func (r *GormRepo) UpsertAdmin(ctx context.Context, username, passwordHash string) (*models.AdminUser, error) {
	a := models.AdminUser{Username: username, PasswordHash: passwordHash}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(&a).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return r.GetAdminByUsername(ctx, username)
}

func (r *GormRepo) GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var a models.AdminUser
	if err := r.DB.WithContext(ctx).Where("username = ?", username).Take(&a).Error; err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *GormRepo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.AdminUser{}).Count(&n).Error; err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *GormRepo) TouchAdminLogin(ctx context.Context, id uint, at time.Time) error {
	return mapErr(r.DB.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", id).Update("last_login_at", at).Error)
}

func (r *GormRepo) AddAdminLog(ctx context.Context, entry *models.AdminLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	return mapErr(r.DB.WithContext(ctx).Create(entry).Error)
}

func (r *GormRepo) ListAdminLogs(ctx context.Context, limit int) ([]models.AdminLog, error) {
	if limit <= 0 || limit > defaultLogLimit {
		limit = defaultLogLimit
	}
	var logs []models.AdminLog
	if err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, mapErr(err)
	}
	return logs, nil
}

func (r *GormRepo) CreateBroadcast(ctx context.Context, b *models.Broadcast) error {
	return mapErr(r.DB.WithContext(ctx).Create(b).Error)
}

func (r *GormRepo) MarkBroadcastSent(ctx context.Context, id uint, recipients, delivered int, at time.Time) error {
	return mapErr(r.DB.WithContext(ctx).Model(&models.Broadcast{}).Where("id = ?", id).Updates(map[string]any{
		"recipients": recipients,
		"delivered":  delivered,
		"sent_at":    at,
	}).Error)
}

func (r *GormRepo) ListBroadcasts(ctx context.Context, limit int) ([]models.Broadcast, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []models.Broadcast
	if err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}
