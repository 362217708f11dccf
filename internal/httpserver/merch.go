package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/internal/transport"
)

type MerchHTTP struct {
	Svc   *service.MerchService
	Admin *service.AdminService
}

func (h *MerchHTTP) Categories(c echo.Context) error {
	items, err := h.Svc.Categories(c.Request().Context())
	if err != nil {
		return fail(c, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MerchHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "category_create_error", "invalid body", err)
	}
	cat, err := h.Svc.CreateCategory(ctx, req.Name, req.Description)
	if err != nil {
		return fail(c, "category_create_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "create_category", cat.Name)
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory renames a category; products tagged with the old name follow.
func (h *MerchHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "category_update_error")
	if err != nil {
		return err
	}
	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "category_update_error", "invalid body", err)
	}
	cat, err := h.Svc.UpdateCategory(ctx, id, req.Name, req.Description)
	if err != nil {
		return fail(c, "category_update_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "update_category", fmt.Sprintf("category %d %q", id, cat.Name))
	return c.JSON(http.StatusOK, cat)
}

func (h *MerchHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "category_delete_error")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(c, "category_delete_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "delete_category", fmt.Sprintf("category %d", id))
	return c.NoContent(http.StatusNoContent)
}

func (h *MerchHTTP) Discounts(c echo.Context) error {
	items, err := h.Svc.Discounts(c.Request().Context())
	if err != nil {
		return fail(c, "list_discounts_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MerchHTTP) CreateDiscount(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.DiscountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "discount_create_error", "invalid body", err)
	}
	d, err := h.Svc.CreateDiscount(ctx, req.ProductID, req.Percentage, req.StartsAt, req.EndsAt)
	if err != nil {
		return fail(c, "discount_create_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "create_discount", fmt.Sprintf("product %d %.2f%%", d.ProductID, d.Percentage))
	return c.JSON(http.StatusCreated, d)
}

func (h *MerchHTTP) DeleteDiscount(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "discount_delete_error")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteDiscount(ctx, id); err != nil {
		return fail(c, "discount_delete_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "delete_discount", fmt.Sprintf("discount %d", id))
	return c.NoContent(http.StatusNoContent)
}

func (h *MerchHTTP) StockLevels(c echo.Context) error {
	items, err := h.Svc.StockLevels(c.Request().Context())
	if err != nil {
		return fail(c, "stock_levels_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *MerchHTTP) SetStockAlert(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "stock_alert_error")
	if err != nil {
		return err
	}
	var req transport.AlertRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "stock_alert_error", "invalid body", err)
	}
	a, err := h.Svc.SetStockAlert(ctx, id, req.Threshold)
	if err != nil {
		return fail(c, "stock_alert_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "stock_alert", fmt.Sprintf("product %d threshold %d", id, a.Threshold))
	return c.JSON(http.StatusOK, a)
}
