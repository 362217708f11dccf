package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/config"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	seedFile := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(seedFile, []byte(`[
		{"id": 1, "name": "Elden Ring", "platform": ["PC", "PlayStation 5"], "price": 59.99, "stock": 10},
		{"id": 2, "name": "Tetris", "platform": "Nintendo Switch", "price": "$9.99", "stock": 3}
	]`), 0o644))

	return &config.Config{
		DatabaseURL:       filepath.Join(dir, "db", "data.db"),
		DBBusyTimeout:     time.Second,
		TxTimeout:         5 * time.Second,
		BotWorkers:        2,
		AdminAddr:         "127.0.0.1:0",
		JWTSecret:         []byte("app-test-secret"),
		AdminTokenTTL:     time.Hour,
		AdminUsername:     "root",
		AdminPassword:     "correct-horse",
		SeedFile:          seedFile,
		ImagesDir:         filepath.Join(dir, "images"),
		Platforms:         config.DefaultPlatforms,
		LowStockThreshold: 5,
	}
}

func openApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	a, err := Open(context.Background(), cfg, logging.NewWithWriter(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestPrepare_SeedsAndBootstraps(t *testing.T) {
	cfg := testConfig(t)
	a := openApp(t, cfg)
	ctx := context.Background()

	require.NoError(t, a.Prepare(ctx))
	// second run is a no-op for the seed
	require.NoError(t, a.Prepare(ctx))

	n, err := a.Repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	p, err := a.Catalog.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Tetris", p.Name)
	assert.InDelta(t, 9.99, p.Price, 0.001)

	platforms, err := a.Catalog.Platforms(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, config.DefaultPlatforms, platforms)

	res, err := a.Admin.Login(ctx, "root", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestNewEcho_ServesAdminAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.CSRFEnabled = true
	a := openApp(t, cfg)
	require.NoError(t, a.Prepare(context.Background()))

	e := a.NewEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"root","password":"correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeAdmin_StopsOnCancel(t *testing.T) {
	a := openApp(t, testConfig(t))
	require.NoError(t, a.Prepare(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.ServeAdmin(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("admin api did not stop")
	}
}
