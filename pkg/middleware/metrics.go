package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"service-crm/pkg/metrics"
)

// Metrics считает запросы и задержку. Метка path - шаблон маршрута, а не сырой URL.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
			metrics.HTTPLatency.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
