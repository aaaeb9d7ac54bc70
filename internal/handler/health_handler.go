package handler

import (
	"net/http"

	"chefconnect/internal/metrics"

	"github.com/labstack/echo/v4"
)

func RegisterHealthRoutes(e *echo.Echo, m *metrics.Metrics) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
}
