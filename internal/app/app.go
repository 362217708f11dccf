package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/game_store/internal/bot"
	"github.com/Skotchmaster/game_store/internal/config"
	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/httpserver"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/search"
	"github.com/Skotchmaster/game_store/internal/seed"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/db"
	"github.com/Skotchmaster/game_store/pkg/logging"
	loggingmw "github.com/Skotchmaster/game_store/pkg/middleware/logging"
)

const (
	shutdownTimeout = 10 * time.Second
	broadcastRate   = 25
)

// App owns the storage handle and every service built on top of it.
type App struct {
	Cfg  *config.Config
	Log  *slog.Logger
	DB   *gorm.DB
	Repo *repo.GormRepo

	Events events.Publisher
	Index  *search.Index

	Catalog *service.CatalogService
	Cart    *service.CartService
	Orders  *service.OrderService
	Users   *service.UserService
	Merch   *service.MerchService
	Reports *service.ReportService
	Admin   *service.AdminService
}

// Open connects to the database and wires the services. It does not touch
// the schema; call Prepare for that.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	ctx = logging.IntoContext(ctx, log)

	if db.Driver(cfg.DatabaseURL) == db.DriverSQLite {
		if dir := filepath.Dir(cfg.DatabaseURL); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
	}

	gdb, err := db.Open(ctx, db.Options{DSN: cfg.DatabaseURL, BusyTimeout: cfg.DBBusyTimeout})
	if err != nil {
		return nil, err
	}
	r := repo.New(gdb, cfg.TxTimeout)

	a := &App{
		Cfg:    cfg,
		Log:    log,
		DB:     gdb,
		Repo:   r,
		Events: events.NewPublisher(cfg.KafkaBrokers),
	}

	if cfg.ESURL != "" {
		es, err := search.NewClient(ctx, search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			log.Warn("search_index_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			a.Index = search.NewIndex(es, cfg.ESIndex)
		}
	}

	a.Catalog = &service.CatalogService{Repo: r, Events: a.Events, DefaultPlatforms: cfg.Platforms}
	a.Cart = &service.CartService{Repo: r}
	a.Orders = &service.OrderService{Repo: r, Events: a.Events, RestockOnCancel: cfg.RestockOnCancel}
	if a.Index != nil {
		a.Catalog.Index = a.Index
		a.Orders.Index = a.Index
	}
	a.Users = &service.UserService{Repo: r}
	a.Merch = &service.MerchService{Repo: r, LowStockThreshold: cfg.LowStockThreshold}
	a.Reports = &service.ReportService{Repo: r, LowStockThreshold: cfg.LowStockThreshold}
	a.Admin = &service.AdminService{Repo: r, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.AdminTokenTTL}

	log.Info("app_opened", "driver", db.Driver(cfg.DatabaseURL), "kafka", len(cfg.KafkaBrokers) > 0, "search_index", a.Index != nil)
	return a, nil
}

// Prepare migrates the schema, creates the platform categories, seeds an
// empty catalog and ensures the bootstrap admin from the environment.
func (a *App) Prepare(ctx context.Context) error {
	ctx = logging.IntoContext(ctx, a.Log)

	if err := a.Repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := a.Repo.EnsureCategories(ctx, a.Cfg.Platforms); err != nil {
		return fmt.Errorf("ensure categories: %w", err)
	}
	n, err := seed.Load(ctx, a.Repo, a.Cfg.SeedFile, a.Cfg.ImagesDir)
	if err != nil {
		return err
	}
	if n > 0 {
		if _, err := a.Catalog.Reindex(ctx); err != nil {
			a.Log.Warn("reindex_after_seed_failed", "error", err)
		}
	}
	if a.Cfg.AdminUsername != "" && a.Cfg.AdminPassword != "" {
		if _, err := a.Admin.EnsureAdmin(ctx, a.Cfg.AdminUsername, a.Cfg.AdminPassword); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}
	return nil
}

// UseTelegram lets admin broadcasts reach bot users.
func (a *App) UseTelegram(api bot.Sender) {
	a.Admin.Broadcaster = bot.NewBroadcaster(api, broadcastRate)
}

func (a *App) NewBot(api bot.Sender) *bot.Bot {
	return bot.New(api, bot.Deps{
		Catalog: a.Catalog,
		Cart:    a.Cart,
		Orders:  a.Orders,
		Users:   a.Users,
	},
		bot.WithImagesDir(a.Cfg.ImagesDir),
		bot.WithWorkers(a.Cfg.BotWorkers),
		bot.WithLogger(a.Log.With("component", "bot")),
	)
}

func (a *App) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	for _, m := range httpserver.Common() {
		e.Use(m)
	}
	e.Use(loggingmw.RequestLogger(a.Log.With("component", "admin_api")))

	httpserver.Register(e, &httpserver.Deps{
		Repo:         a.Repo,
		Catalog:      a.Catalog,
		Orders:       a.Orders,
		Merch:        a.Merch,
		Reports:      a.Reports,
		Admin:        a.Admin,
		JWTSecret:    a.Cfg.JWTSecret,
		CSRF:         a.Cfg.CSRFEnabled,
		CookieSecure: a.Cfg.CookieSecure,
		LoginRate:    1,
		LoginBurst:   5,
	})
	return e
}

// ServeAdmin runs the admin API until ctx is cancelled.
func (a *App) ServeAdmin(ctx context.Context) error {
	e := a.NewEcho()

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("admin_api_listening", "addr", a.Cfg.AdminAddr)
		if err := e.Start(a.Cfg.AdminAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("admin api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin api shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	return errors.Join(a.Events.Close(), db.Close(a.DB))
}
