// pkg/middleware/logger.go

package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const correlationHeader = "X-Correlation-Id"

// InjectLogger кладёт в контекст запроса логгер с correlationId.
func InjectLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logger
			if id := c.Request().Header.Get(correlationHeader); id != "" {
				l = logger.With(zap.String("correlationId", id))
			}
			c.Set("logger", l)
			return next(c)
		}
	}
}

// RequestLogger пишет в лог метод, путь, статус и время обработки.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			logger.Debug("Запрос обработан",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("correlationId", req.Header.Get(correlationHeader)),
			)
			return nil
		}
	}
}

// FromContext возвращает логгер, положенный InjectLogger, или Nop.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
