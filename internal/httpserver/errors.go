package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/service"
	"github.com/Skotchmaster/game_store/pkg/logging"
	"github.com/Skotchmaster/game_store/pkg/tokens"
)

// fail logs err under event and converts it into an echo.HTTPError.
// Storage details never reach the client.
func fail(c echo.Context, event string, err error) error {
	l := logging.FromContext(c.Request().Context())

	var se *domain.StockError
	code, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.As(err, &se):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrValidation):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		code, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrOutOfStock), errors.Is(err, domain.ErrInsufficientStock):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrBusy):
		code, msg = http.StatusServiceUnavailable, "database busy, retry later"
	}

	if code >= 500 {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func badRequest(c echo.Context, event, reason string, err error) error {
	logging.FromContext(c.Request().Context()).Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func parseID(c echo.Context, event string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest(c, event, "id must be a positive integer", err)
	}
	return uint(id), nil
}

// actor reads the admin identity that echojwt stored on the context.
func actor(c echo.Context) service.Actor {
	tok, ok := c.Get(contextKeyUser).(*jwt.Token)
	if !ok {
		return service.Actor{}
	}
	claims, ok := tok.Claims.(*tokens.AdminClaims)
	if !ok {
		return service.Actor{}
	}
	return service.Actor{ID: claims.AdminID(), Username: claims.Username}
}
