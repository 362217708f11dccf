package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{SkipPaths: []string{"/api/login"}, Skipper: SkipBearer}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/api/products", ok)
	e.POST("/api/products", ok)
	e.POST("/api/login", ok)
	return e
}

func TestMiddleware_IssuesTokenOnSafeMethods(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			found = true
			assert.Equal(t, token, ck.Value)
		}
	}
	assert.True(t, found)
}

func TestMiddleware_UnsafeMethods(t *testing.T) {
	e := newEcho()

	cases := []struct {
		name   string
		header string
		bearer bool
		path   string
		want   int
	}{
		{name: "matching token", header: "tok", path: "/api/products", want: http.StatusNoContent},
		{name: "missing token", path: "/api/products", want: http.StatusForbidden},
		{name: "wrong token", header: "other", path: "/api/products", want: http.StatusForbidden},
		{name: "bearer skips", bearer: true, path: "/api/products", want: http.StatusNoContent},
		{name: "skip path", path: "/api/login", want: http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			req.Host = "admin.local"
			req.Header.Set("Origin", "http://admin.local")
			req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
			if tc.header != "" {
				req.Header.Set("X-CSRF-Token", tc.header)
			}
			if tc.bearer {
				req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestMiddleware_RejectsForeignOrigin(t *testing.T) {
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req.Host = "admin.local"
	req.Header.Set("Origin", "http://evil.example")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
