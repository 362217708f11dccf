package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/pkg/hash"
	"github.com/Skotchmaster/game_store/pkg/logging"
	"github.com/Skotchmaster/game_store/pkg/tokens"
)

// Broadcaster delivers a text message to Telegram chats.
type Broadcaster interface {
	Broadcast(ctx context.Context, chatIDs []int64, text string) (delivered int, err error)
}

type AdminService struct {
	Repo        *repo.GormRepo
	JWTSecret   []byte
	TokenTTL    time.Duration
	Broadcaster Broadcaster
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     *models.AdminUser
}

// Actor identifies the admin behind an audited action.
type Actor struct {
	ID       uint
	Username string
}

func (s *AdminService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "admin.login", "username", username)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	admin, err := s.Repo.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("login_failed", "reason", "unknown username")
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(admin.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password")
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	now := time.Now()
	token, exp, err := tokens.NewAdminToken(s.JWTSecret, admin.ID, admin.Username, now, s.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %w", domain.ErrStorage, err)
	}
	if err := s.Repo.TouchAdminLogin(ctx, admin.ID, now.UTC()); err != nil {
		l.Warn("touch_login_failed", "error", err)
	}
	s.Audit(ctx, Actor{ID: admin.ID, Username: admin.Username}, "login", "")
	return &LoginResult{Token: token, ExpiresAt: exp, Admin: admin}, nil
}

// EnsureAdmin creates the account or resets its password.
func (s *AdminService) EnsureAdmin(ctx context.Context, username, password string) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	h, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.Repo.UpsertAdmin(ctx, username, h)
}

// Audit records an admin action. Failures are logged only.
func (s *AdminService) Audit(ctx context.Context, actor Actor, action, details string) {
	err := s.Repo.AddAdminLog(ctx, &models.AdminLog{
		AdminID:  actor.ID,
		Username: actor.Username,
		Action:   action,
		Details:  details,
	})
	if err != nil {
		logging.FromContext(ctx).Error("admin_log_failed", "action", action, "error", err)
	}
}

func (s *AdminService) Logs(ctx context.Context, limit int) ([]models.AdminLog, error) {
	return s.Repo.ListAdminLogs(ctx, limit)
}

// Broadcast stores the message and sends it to every known user when a
// broadcaster is configured.
func (s *AdminService) Broadcast(ctx context.Context, actor Actor, message string) (*models.Broadcast, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	b := &models.Broadcast{Message: message, AdminID: actor.ID}
	if err := s.Repo.CreateBroadcast(ctx, b); err != nil {
		return nil, err
	}
	s.Audit(ctx, actor, "broadcast", fmt.Sprintf("broadcast %d", b.ID))

	if s.Broadcaster == nil {
		return b, nil
	}

	ids, err := s.Repo.UserIDs(ctx)
	if err != nil {
		return nil, err
	}
	delivered, err := s.Broadcaster.Broadcast(ctx, ids, message)
	if err != nil {
		logging.FromContext(ctx).Warn("broadcast_incomplete", "broadcast_id", b.ID, "delivered", delivered, "error", err)
	}

	at := time.Now().UTC()
	if err := s.Repo.MarkBroadcastSent(ctx, b.ID, len(ids), delivered, at); err != nil {
		return nil, err
	}
	b.Recipients, b.Delivered, b.SentAt = len(ids), delivered, &at
	return b, nil
}

func (s *AdminService) Broadcasts(ctx context.Context, limit int) ([]models.Broadcast, error) {
	return s.Repo.ListBroadcasts(ctx, limit)
}
