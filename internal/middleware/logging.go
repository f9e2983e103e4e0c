package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            req := c.Request()
            entry := logger.WithContext(req.Context()).WithFields(logrus.Fields{
                "method":     req.Method,
                "route":      c.Path(),
                "status":     c.Response().Status,
                "latency_ms": time.Since(start).Milliseconds(),
                "remote_ip":  c.RealIP(),
                "caller":     userID(c),
            })
            if c.Response().Status >= 500 {
                entry.Error("request")
            } else {
                entry.Info("request")
            }
            return nil
        }
    }
}
