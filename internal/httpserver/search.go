package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/internal/transport"
	"github.com/Skotchmaster/game_store/internal/util"
)

type SearchHTTP struct {
	Catalog *service.CatalogService
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()

	q := c.QueryParam("q")
	if q == "" {
		return badRequest(c, "search_error", "q is required", nil)
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, items, err := h.Catalog.FullTextSearch(ctx, q, from, limit)
	if err != nil {
		return fail(c, "search_error", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Product]{
		Data: items,
		Meta: transport.NewMeta(page, from, limit, total),
	})
}

// Reindex pushes every product into the search index.
func (h *SearchHTTP) Reindex(c echo.Context) error {
	n, err := h.Catalog.Reindex(c.Request().Context())
	if err != nil {
		return fail(c, "reindex_error", err)
	}
	return c.JSON(http.StatusOK, map[string]int{"indexed": n})
}
