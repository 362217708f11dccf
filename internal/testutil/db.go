package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/pkg/db"
)

// NewDB opens a migrated SQLite database in a temp dir. The file is removed
// with the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.Options{
		DSN:      filepath.Join(t.TempDir(), "test.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// NewSharedDBs opens n independent handles (separate pools) on one migrated
// SQLite file, the way separate bot and admin processes see it.
func NewSharedDBs(t *testing.T, n int) []*gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shared.db")
	out := make([]*gorm.DB, 0, n)
	for i := 0; i < n; i++ {
		gdb, err := db.Open(context.Background(), db.Options{
			DSN:         path,
			BusyTimeout: 5 * time.Second,
			LogLevel:    logger.Silent,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close(gdb) })
		out = append(out, gdb)
	}
	require.NoError(t, out[0].AutoMigrate(models.All()...))
	return out
}

func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price float64, stock int, platforms ...string) models.Product {
	t.Helper()

	if platforms == nil {
		platforms = []string{"PC"}
	}
	p := models.Product{
		Name:        name,
		Price:       price,
		Stock:       stock,
		Platforms:   platforms,
		Description: name + " description",
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func CreateUser(t *testing.T, gdb *gorm.DB, id int64, username string) models.User {
	t.Helper()

	u := models.User{ID: id, Username: username, FirstName: username}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func Stock(t *testing.T, gdb *gorm.DB, productID uint) int {
	t.Helper()

	var p models.Product
	require.NoError(t, gdb.Where("id = ?", productID).Take(&p).Error)
	return p.Stock
}

func Count(t *testing.T, gdb *gorm.DB, model any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, gdb.Model(model).Count(&n).Error)
	return n
}
