package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pcshop-storefront/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an ID, reusing one sent by a proxy.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
