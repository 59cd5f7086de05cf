package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/AshwinGadhvi/BoloForm/pkg/logger"
)

// Recovery converts a panicking handler into a 500 response carrying
// the request ID, so a failed burn or save can be matched to its
// stack trace in the log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(c.Request.Context()).Error("panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal error",
					"request_id": GetRequestID(c),
				})
			}
		}()

		c.Next()
	}
}
