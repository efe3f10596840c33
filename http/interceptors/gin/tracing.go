package gin

import (
	"fmt"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/ext"
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"github.com/gin-gonic/gin"

	"github.com/rainbow-me/myapp/common/headers"
	"github.com/rainbow-me/myapp/common/logger"
)

// TracingMiddleware takes the trace id from http headers, or creates a new one if none found.
// It then creates a new span and tags it appropriately with http route, method, url, response code, error, etc.
// Finally, it stores the span in the request context and injects the trace/span ids in the context log fields.
func TracingMiddleware(c *gin.Context) {
	// We could have just used "github.com/DataDog/dd-trace-go/contrib/gin-gonic/gin/v2",
	// but this middleware adds some extra useful tags
	route := c.FullPath()
	spanOpts := []tracer.StartSpanOption{
		tracer.Tag(ext.Component, componentName),
		tracer.Tag(ext.SpanType, ext.SpanTypeWeb),
		tracer.Tag(ext.SpanKind, ext.SpanKindServer),
		tracer.Tag(ext.HTTPMethod, c.Request.Method),
		tracer.Tag(ext.HTTPURL, c.Request.URL.String()),
		tracer.Tag(ext.ResourceName, fmt.Sprintf("%s %s", c.Request.Method, route)),
		tracer.Tag(ext.HTTPRoute, route),
	}

	// Try to continue a trace started by the caller
	if sCtx, err := tracer.Extract(tracer.HTTPHeadersCarrier(c.Request.Header)); err == nil && sCtx != nil {
		spanOpts = append(spanOpts, tracer.ChildOf(sCtx))
	}

	span := tracer.StartSpan(httpHandlerOp, spanOpts...)
	defer span.Finish()

	ctx := tracer.ContextWithSpan(c.Request.Context(), span)
	ctx = logger.ContextWithFields(ctx, logger.WithTrace(span.Context()))
	c.Request = c.Request.WithContext(ctx)

	if sc := span.Context(); sc != nil && sc.TraceID() != "" {
		c.Header(headers.HeaderXTraceID, sc.TraceID())
	}

	c.Next()

	span.SetTag(ext.HTTPCode, c.Writer.Status())
	if c.Writer.Status() >= 500 {
		span.SetTag(ext.Error, true)
	}
}
