package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/internal/transport"
	"github.com/Skotchmaster/game_store/internal/util"
)

// ClientHTTP serves the bot users as shop clients.
type ClientHTTP struct {
	Svc *service.ReportService
}

func (h *ClientHTTP) List(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListClients(c.Request().Context(), offset, limit)
	if err != nil {
		return fail(c, "list_clients_error", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[repo.Client]{
		Data: items,
		Meta: transport.NewMeta(page, offset, limit, total),
	})
}

func (h *ClientHTTP) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return badRequest(c, "get_client_error", "id must be a non-zero integer", err)
	}
	d, err := h.Svc.GetClient(c.Request().Context(), id)
	if err != nil {
		return fail(c, "get_client_error", err)
	}
	return c.JSON(http.StatusOK, d)
}
