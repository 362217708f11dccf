package httpserver

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/service"
)

type ReportHTTP struct {
	Svc   *service.ReportService
	Admin *service.AdminService
}

func (h *ReportHTTP) Stats(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return fail(c, "dashboard_stats_error", err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *ReportHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()
	kind := c.Param("kind")

	var buf bytes.Buffer
	var err error
	switch kind {
	case "orders":
		err = h.Svc.ExportOrders(ctx, &buf)
	case "clients":
		err = h.Svc.ExportClients(ctx, &buf)
	case "products":
		err = h.Svc.ExportProducts(ctx, &buf)
	default:
		return echo.NewHTTPError(http.StatusNotFound, "unknown export")
	}
	if err != nil {
		return fail(c, "export_error", err)
	}

	h.Admin.Audit(ctx, actor(c), "export", kind)

	name := fmt.Sprintf("%s_%s.csv", kind, time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
