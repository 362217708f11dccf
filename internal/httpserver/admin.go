package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/internal/transport"
	"github.com/Skotchmaster/game_store/internal/util"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

const defaultLogLimit = 100

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) Broadcast(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.broadcast")

	var req transport.BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "broadcast_error", "invalid body", err)
	}

	b, err := h.Svc.Broadcast(ctx, actor(c), req.Message)
	if err != nil {
		return fail(c, "broadcast_error", err)
	}

	l.Info("broadcast_success", "broadcast_id", b.ID, "recipients", b.Recipients, "delivered", b.Delivered)
	return c.JSON(http.StatusCreated, b)
}

func (h *AdminHTTP) Broadcasts(c echo.Context) error {
	limit := util.ParseIntDefault(c.QueryParam("limit"), defaultLogLimit)
	items, err := h.Svc.Broadcasts(c.Request().Context(), limit)
	if err != nil {
		return fail(c, "list_broadcasts_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AdminHTTP) Logs(c echo.Context) error {
	limit := util.ParseIntDefault(c.QueryParam("limit"), defaultLogLimit)
	items, err := h.Svc.Logs(c.Request().Context(), limit)
	if err != nil {
		return fail(c, "list_logs_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

// Me echoes the identity behind the current token.
func (h *AdminHTTP) Me(c echo.Context) error {
	a := actor(c)
	return c.JSON(http.StatusOK, map[string]any{"id": a.ID, "username": a.Username})
}
