package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/internal/transport"
	"github.com/Skotchmaster/game_store/internal/util"
	"github.com/Skotchmaster/game_store/pkg/logging"
)

type ProductHTTP struct {
	Catalog *service.CatalogService
	Admin   *service.AdminService
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Catalog.ListProducts(ctx, repo.ProductFilter{
		Query:    c.QueryParam("q"),
		Platform: c.QueryParam("platform"),
		InStock:  c.QueryParam("in_stock") == "true",
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return fail(c, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Product]{
		Data: items,
		Meta: transport.NewMeta(page, offset, limit, total),
	})
}

func (h *ProductHTTP) Get(c echo.Context) error {
	id, err := parseID(c, "get_product_error")
	if err != nil {
		return err
	}
	p, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "product_create_error", "invalid body", err)
	}

	p := &models.Product{
		Name:        req.Name,
		Platforms:   req.Platforms,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		ImageRef:    req.ImageURL,
	}
	if err := h.Catalog.CreateProduct(ctx, p); err != nil {
		return fail(c, "product_create_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "create_product", fmt.Sprintf("product %d %q", p.ID, p.Name))
	l.Info("product_create_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "product_patch_error")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "product_patch_error", "invalid body", err)
	}

	p, err := h.Catalog.UpdateProduct(ctx, id, repo.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Platforms:   req.Platforms,
		Description: req.Description,
		ImageRef:    req.ImageURL,
	})
	if err != nil {
		return fail(c, "product_patch_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "update_product", fmt.Sprintf("product %d", id))
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "product_delete_error")
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteProduct(ctx, id); err != nil {
		return fail(c, "product_delete_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "delete_product", fmt.Sprintf("product %d", id))
	return c.NoContent(http.StatusNoContent)
}

// Stock applies {"delta": n} or sets {"stock": n}.
func (h *ProductHTTP) Stock(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "product_stock_error")
	if err != nil {
		return err
	}
	var req transport.StockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "product_stock_error", "invalid body", err)
	}
	if (req.Delta == nil) == (req.Stock == nil) {
		return badRequest(c, "product_stock_error", "exactly one of delta or stock is required", nil)
	}

	var p *models.Product
	var details string
	if req.Delta != nil {
		p, err = h.Catalog.AdjustStock(ctx, id, *req.Delta)
		details = fmt.Sprintf("product %d delta %+d", id, *req.Delta)
	} else {
		p, err = h.Catalog.SetStock(ctx, id, *req.Stock)
		details = fmt.Sprintf("product %d set %d", id, *req.Stock)
	}
	if err != nil {
		return fail(c, "product_stock_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "stock", details)
	return c.JSON(http.StatusOK, p)
}
