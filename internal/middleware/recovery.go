package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/store"
)

// Recovery returns a gin middleware that recovers from panics, logs the error
// with stack trace using slog, and responds with a 500 envelope:
//
//	{"success": false, "statusCode": 500, "message": "Internal server error", "data": null}
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				abortWith(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}

// abortWith stops the chain and writes a failed envelope.
func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, store.Envelope[any]{
		Success:    false,
		StatusCode: status,
		Message:    message,
	})
}
