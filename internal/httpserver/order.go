package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/internal/transport"
	"github.com/Skotchmaster/game_store/internal/util"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

type OrderHTTP struct {
	Svc   *service.OrderService
	Admin *service.AdminService
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	f := repo.OrderFilter{Offset: offset, Limit: limit}
	if raw := c.QueryParam("status"); raw != "" {
		st, ok := models.ParseOrderStatus(raw)
		if !ok {
			return badRequest(c, "list_orders_error", "unknown status", nil)
		}
		f.Status = st
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		uid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "list_orders_error", "user_id must be an integer", err)
		}
		f.UserID = uid
	}

	total, items, err := h.Svc.ListOrders(ctx, f)
	if err != nil {
		return fail(c, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Order]{
		Data: items,
		Meta: transport.NewMeta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) Get(c echo.Context) error {
	id, err := parseID(c, "get_order_error")
	if err != nil {
		return err
	}
	o, err := h.Svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return fail(c, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c, "order_status_error")
	if err != nil {
		return err
	}
	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "order_status_error", "invalid body", err)
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(c, "order_status_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "order_status", fmt.Sprintf("order %d -> %s", id, o.Status))
	l.Info("order_status_success", "order_id", id, "status", o.Status)
	return c.JSON(http.StatusOK, o)
}
