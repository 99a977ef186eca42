package internalhttp

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Register mounts operational endpoints that sit outside the public API
// base path.
func Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
