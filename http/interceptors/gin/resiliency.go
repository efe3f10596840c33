package gin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/ext"
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/rainbow-me/myapp/common/logger"
)

// ErrorHandlingMiddleware handles errors attached with c.Error, logs them with our logging framework,
// tags the span with the error and renders the error response if the handler wrote nothing.
// A non-nil console also gets the error with its stack trace.
func ErrorHandlingMiddleware(renderer ErrorRenderer, console io.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		ctx := c.Request.Context()
		logger.FromContext(ctx).Error("Error in gin http handler",
			logger.String("path", c.FullPath()),
			logger.Error(err),
		)
		if console != nil {
			// pretty print the error to make it human-readable in case it has a stack trace
			_, _ = fmt.Fprintf(console, "Error in gin http handler: %+v\n", err)
		}
		tagSpanAsError(ctx, "internal", err.Error())
		if !c.Writer.Written() {
			renderer(c, http.StatusInternalServerError, err)
		}
	}
}

// PanicRecoveryMiddleware handles panics, logs them with our logging framework,
// tags the span with the error and renders the error response.
// A non-nil console also gets the panic stack trace.
func PanicRecoveryMiddleware(renderer ErrorRenderer, console io.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler { //nolint:errorlint,goerr113
				panic(r)
			}
			ctx := c.Request.Context()
			logger.FromContext(ctx).Error("Recovered from panic in gin http handler", logger.WithPanic(r)...)
			if console != nil {
				// pretty print the stack trace to make it human-readable
				_, _ = fmt.Fprintf(console, "%s\n", debug.Stack())
			}
			tagSpanAsError(ctx, "panic", fmt.Sprintf("%v", r))
			if !c.Writer.Written() {
				renderer(c, http.StatusInternalServerError, errors.Newf("panic: %v", r))
			}
			c.Abort()
		}()
		c.Next()
	}
}

func tagSpanAsError(ctx context.Context, errorType string, errorMsg string) {
	span, ok := tracer.SpanFromContext(ctx)
	if ok {
		span.SetTag(ext.Error, true)
		span.SetTag(ext.ErrorType, errorType)
		span.SetTag(ext.ErrorMsg, errorMsg)
	}
}

// TimeoutMiddleware sets a timeout on the request context
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
