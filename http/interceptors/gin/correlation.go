package gin

import (
	"github.com/gin-gonic/gin"

	"github.com/rainbow-me/myapp/common/correlation"
	"github.com/rainbow-me/myapp/common/headers"
)

// CorrelationMiddleware extracts correlation data from http headers if found and propagates it as Go context.
// If no header is found, it will create a new correlation id.
// It also assigns the request id, reusing x-request-id when the caller sent one, and echoes it
// back on the response.
func CorrelationMiddleware(c *gin.Context) {
	ctx := correlation.ContextWithCorrelation(c.Request.Context(), c.GetHeader(correlation.ContextCorrelationHeader))
	ctx = correlation.ContextWithRequestID(ctx, c.GetHeader(headers.HeaderXRequestID))

	c.Header(headers.HeaderXRequestID, correlation.RequestIDFromContext(ctx))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
