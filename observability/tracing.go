package observability

import (
	"context"
	"fmt"
	"strings"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"

	"github.com/rainbow-me/myapp/common/logger"
)

const zeroTraceID = "00000000000000000000000000000000"

// StartSpan is a helper function that we should always use instead of tracer.StartSpanFromContext to ensure that our
// context logger gets updated with trace and span ID.
func StartSpan(ctx context.Context, opName string, opts ...tracer.StartSpanOption) (*tracer.Span, context.Context) {
	span, ctx := tracer.StartSpanFromContext(ctx, opName, opts...)
	ctx = logger.ContextWithFields(ctx, logger.WithTrace(span.Context()))
	return span, ctx
}

// ActiveTraceID returns the W3C trace context id (version-traceid-spanid-flags) of the span active
// in ctx, or an empty string when no span is active.
func ActiveTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	span, ok := tracer.SpanFromContext(ctx)
	if !ok || span == nil {
		return ""
	}
	return FormatTraceParent(span.Context())
}

// FormatTraceParent renders a span context in the W3C traceparent layout. Spans we hold are
// recorded, hence the sampled flag.
func FormatTraceParent(sc *tracer.SpanContext) string {
	if sc == nil {
		return ""
	}
	traceID := strings.ToLower(sc.TraceID())
	if traceID == "" || traceID == zeroTraceID || sc.SpanID() == 0 {
		return ""
	}
	return fmt.Sprintf("00-%s-%016x-01", traceID, sc.SpanID())
}
