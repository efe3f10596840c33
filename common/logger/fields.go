package logger

import (
	"fmt"
	"strconv"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
)

// Log field keys
const (
	TraceIDKey    = "dd.trace_id"
	SpanIDKey     = "dd.span_id"
	PanicValueKey = "panic_value"
	PanicTypeKey  = "panic_type"
	StackTraceKey = "stack_trace"
)

// WithTrace returns the fields DataDog uses to connect a log line to its trace.
func WithTrace(sc *tracer.SpanContext) []Field {
	if sc == nil {
		return nil
	}
	return []Field{
		String(TraceIDKey, sc.TraceID()),
		String(SpanIDKey, strconv.FormatUint(sc.SpanID(), 10)),
	}
}

// WithPanic describes a recovered panic value, including the current goroutine stack.
func WithPanic(r any) []Field {
	return []Field{
		String(PanicValueKey, fmt.Sprintf("%v", r)),
		String(PanicTypeKey, fmt.Sprintf("%T", r)),
		Stack(StackTraceKey),
	}
}
