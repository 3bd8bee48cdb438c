package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/gadgetph/phone-catalog/internal/metrics"
)

// Recovery returns Echo middleware that turns a panic into a 500 response.
// The log line carries the request ID assigned by RequestLog so a panic can
// be matched to its access log entry, and each recovery bumps the panic
// counter.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				metrics.HTTPPanicsTotal.Inc()

				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)

				attrs := []any{
					"error", fmt.Sprint(r),
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"stack", string(buf[:n]),
				}
				if reqID, ok := c.Get("request_id").(string); ok && reqID != "" {
					attrs = append(attrs, "request_id", reqID)
				}
				log.Error("panic recovered", attrs...)

				err = c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}()
			return next(c)
		}
	}
}
