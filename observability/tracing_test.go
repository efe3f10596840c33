package observability_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/mocktracer"
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"github.com/stretchr/testify/require"

	"github.com/rainbow-me/myapp/observability"
)

var traceParentPattern = regexp.MustCompile(`^00-[0-9a-f]{32}-[0-9a-f]{16}-01$`)

func TestActiveTraceID(t *testing.T) {
	mt := mocktracer.Start()
	defer mt.Stop()

	t.Run("no span", func(t *testing.T) {
		require.Empty(t, observability.ActiveTraceID(context.Background()))
		require.Empty(t, observability.ActiveTraceID(nil)) //nolint:staticcheck
	})

	t.Run("active span", func(t *testing.T) {
		span, ctx := observability.StartSpan(context.Background(), "test.op")
		defer span.Finish()

		got := observability.ActiveTraceID(ctx)
		require.Regexp(t, traceParentPattern, got)
		require.Contains(t, got, span.Context().TraceID())
		require.Contains(t, got, fmt.Sprintf("%016x", span.Context().SpanID()))
	})

	t.Run("child span keeps trace id", func(t *testing.T) {
		parent, ctx := observability.StartSpan(context.Background(), "parent")
		defer parent.Finish()
		child, childCtx := observability.StartSpan(ctx, "child")
		defer child.Finish()

		require.NotEqual(t, observability.ActiveTraceID(ctx), observability.ActiveTraceID(childCtx))
		require.Equal(t, parent.Context().TraceID(), child.Context().TraceID())
	})
}

func TestFormatTraceParent(t *testing.T) {
	mt := mocktracer.Start()
	defer mt.Stop()

	require.Empty(t, observability.FormatTraceParent(nil))

	span := tracer.StartSpan("test")
	defer span.Finish()
	require.Regexp(t, traceParentPattern, observability.FormatTraceParent(span.Context()))
}
