package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/middleware/csrf"
)

type Deps struct {
	Repo    *repo.GormRepo
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Merch   *service.MerchService
	Reports *service.ReportService
	Admin   *service.AdminService

	JWTSecret    []byte
	CSRF         bool
	CookieSecure bool

	// LoginRate is requests per second per IP on /api/login; zero disables the limiter.
	LoginRate  float64
	LoginBurst int
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := d.Repo.Ping(c.Request().Context()); err != nil {
			return fail(c, "ready_error", err)
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")
	if d.CSRF {
		cfg := csrf.DefaultConfig()
		cfg.Secure = d.CookieSecure
		cfg.SkipPaths = []string{"/api/login"}
		cfg.Skipper = csrf.SkipBearer
		api.Use(csrf.Middleware(cfg))
	}

	auth := &AuthHTTP{Svc: d.Admin, CookieSecure: d.CookieSecure}
	if d.LoginRate > 0 {
		api.POST("/login", auth.Login, LoginLimiter(d.LoginRate, d.LoginBurst))
	} else {
		api.POST("/login", auth.Login)
	}
	api.POST("/logout", auth.Logout)

	protected := api.Group("", AdminJWT(d.JWTSecret), RequireAdminRole)

	admin := &AdminHTTP{Svc: d.Admin}
	protected.GET("/me", admin.Me)
	protected.POST("/broadcasts", admin.Broadcast)
	protected.GET("/broadcasts", admin.Broadcasts)
	protected.GET("/logs", admin.Logs)

	products := &ProductHTTP{Catalog: d.Catalog, Admin: d.Admin}
	search := &SearchHTTP{Catalog: d.Catalog}
	protected.GET("/search", search.Search)
	protected.POST("/search/reindex", search.Reindex)
	protected.GET("/products", products.List)
	protected.GET("/products/:id", products.Get)
	protected.POST("/products", products.Create)
	protected.PATCH("/products/:id", products.Patch)
	protected.DELETE("/products/:id", products.Delete)
	protected.POST("/products/:id/stock", products.Stock)

	orders := &OrderHTTP{Svc: d.Orders, Admin: d.Admin}
	protected.GET("/orders", orders.List)
	protected.GET("/orders/:id", orders.Get)
	protected.PATCH("/orders/:id/status", orders.UpdateStatus)

	merch := &MerchHTTP{Svc: d.Merch, Admin: d.Admin}
	protected.GET("/categories", merch.Categories)
	protected.POST("/categories", merch.CreateCategory)
	protected.PATCH("/categories/:id", merch.UpdateCategory)
	protected.DELETE("/categories/:id", merch.DeleteCategory)
	protected.GET("/discounts", merch.Discounts)
	protected.POST("/discounts", merch.CreateDiscount)
	protected.DELETE("/discounts/:id", merch.DeleteDiscount)
	protected.GET("/stock", merch.StockLevels)
	protected.PUT("/stock/:id/alert", merch.SetStockAlert)

	clients := &ClientHTTP{Svc: d.Reports}
	protected.GET("/clients", clients.List)
	protected.GET("/clients/:id", clients.Get)

	reports := &ReportHTTP{Svc: d.Reports, Admin: d.Admin}
	protected.GET("/dashboard/stats", reports.Stats)
	protected.GET("/export/:kind", reports.Export)
}
