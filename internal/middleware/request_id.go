package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"order-support-mcp/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestID respeta el id entrante o genera uno, y lo deja en el contexto del request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
