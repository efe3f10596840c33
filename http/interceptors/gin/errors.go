package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rainbow-me/myapp/common/correlation"
)

// ErrorRenderer writes the response for a failed request. err is nil when the failure is not
// backed by a Go error, such as an unknown route.
type ErrorRenderer func(c *gin.Context, status int, err error)

// JSONErrorRenderer answers with a generic message that never leaks err, plus the request id so
// the caller can quote it.
func JSONErrorRenderer(c *gin.Context, status int, _ error) {
	body := gin.H{"message": http.StatusText(status)}
	if id := correlation.RequestIDFromContext(c.Request.Context()); id != "" {
		body["requestId"] = id
	}
	c.AbortWithStatusJSON(status, body)
}

// NotFoundHandler renders unknown routes through the renderer, for use with gin's NoRoute.
func NotFoundHandler(renderer ErrorRenderer) gin.HandlerFunc {
	if renderer == nil {
		renderer = JSONErrorRenderer
	}
	return func(c *gin.Context) {
		renderer(c, http.StatusNotFound, nil)
	}
}
