package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AshwinGadhvi/BoloForm/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an identifier so a single
// upload/save/burn flow can be traced across the access log, the
// service layer and panic reports. A caller-supplied ID is honored so
// traces span reverse proxies.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Header(requestIDHeader, id)
		c.Set("request_id", id)

		// Mirror into the request context so logger.WithContext picks
		// it up below the handler layer.
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request's identifier, or "" outside the
// RequestID middleware.
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get("request_id"); ok {
		return id.(string)
	}
	return ""
}
