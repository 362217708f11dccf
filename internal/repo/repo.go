package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

const DefaultTxTimeout = 10 * time.Second

type GormRepo struct {
	DB        *gorm.DB
	TxTimeout time.Duration
	Now       func() time.Time
}

func New(db *gorm.DB, txTimeout time.Duration) *GormRepo {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &GormRepo{DB: db, TxTimeout: txTimeout}
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// transaction runs fn in one database transaction bounded by TxTimeout.
// No network I/O may happen inside fn.
func (r *GormRepo) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	timeout := r.TxTimeout
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return mapErr(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := takeWriteLock(tx); err != nil {
			return err
		}
		return fn(tx)
	}))
}

// takeWriteLock makes the first statement of a SQLite transaction a write,
// so the write lock is taken (waiting up to busy_timeout) before any read
// snapshot exists. A deferred transaction that reads first fails with
// SQLITE_BUSY_SNAPSHOT when another process commits in between.
func takeWriteLock(tx *gorm.DB) error {
	if tx.Dialector.Name() != "sqlite" {
		return nil
	}
	return tx.Exec("UPDATE products SET stock = stock WHERE 1 = 0").Error
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case domain.Known(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case isBusy(err):
		return fmt.Errorf("%w: %w", domain.ErrBusy, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
}

func isBusy(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "55P03") ||
		strings.Contains(msg, "40001")
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "23505")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
