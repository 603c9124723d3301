package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation id so webhook
// deliveries can be traced across the hub and the workflow engine.
// An id supplied by the caller is kept as-is.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		ctx.Set("request_id", id)
		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Next()
	}
}
