package correlation_test

import (
	"context"
	"testing"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/mocktracer"
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	corr "github.com/rainbow-me/myapp/common/correlation"
)

func TestSet(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]string
		wantData corr.Data
	}{
		{
			name:     "empty values",
			values:   map[string]string{},
			wantData: corr.Data{},
		},
		{
			name:     "valid values",
			values:   map[string]string{"key1": "val1", "key2": "val2"},
			wantData: corr.Data{"key1": "val1", "key2": "val2"},
		},
		{
			name:     "skip empty keys and values",
			values:   map[string]string{"": "val", "key": "", "valid": "val"},
			wantData: corr.Data{"valid": "val"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := corr.Get(corr.Set(context.Background(), tt.values))
			require.Equal(t, tt.wantData, got)
		})
	}
}

func TestSetPropagatesBaggage(t *testing.T) {
	mt := mocktracer.Start()
	defer mt.Stop()

	span := tracer.StartSpan("test")
	defer span.Finish()
	ctx := tracer.ContextWithSpan(context.Background(), span)

	corr.Set(ctx, map[string]string{"tenant": "rainbow"})
	require.Equal(t, "rainbow", span.BaggageItem("tenant"))
}

func TestSetKey(t *testing.T) {
	ctx := corr.SetKey(context.Background(), "key1", "old")
	ctx = corr.SetKey(ctx, "key1", "new")
	require.Equal(t, corr.Data{"key1": "new"}, corr.Get(ctx))

	ctx = corr.SetKey(ctx, "key1", "")
	require.Equal(t, corr.Data{}, corr.Get(ctx))

	require.Equal(t, ctx, corr.SetKey(ctx, "", "ignored"))
}

func TestContextWithCorrelation(t *testing.T) {
	t.Run("keeps received id", func(t *testing.T) {
		ctx := corr.ContextWithCorrelation(context.Background(), `{"correlation_id":"custom-id","user":"42"}`)
		require.Equal(t, "custom-id", corr.ID(ctx))
		require.Equal(t, "42", corr.GetValue(ctx, "user"))
	})

	t.Run("generates id when missing", func(t *testing.T) {
		ctx := corr.ContextWithCorrelation(context.Background(), "")
		_, err := uuid.Parse(corr.ID(ctx))
		require.NoError(t, err)
	})

	t.Run("invalid header still gets an id", func(t *testing.T) {
		ctx := corr.ContextWithCorrelation(context.Background(), "{not json")
		require.NotEmpty(t, corr.ID(ctx))
		require.Len(t, corr.Get(ctx), 1)
	})
}

func TestContextWithRequestID(t *testing.T) {
	tests := []struct {
		name     string
		inbound  string
		generate bool
	}{
		{name: "inbound id is reused", inbound: "test-trace-id"},
		{name: "generated when absent", inbound: "", generate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := corr.RequestIDFromContext(corr.ContextWithRequestID(context.Background(), tt.inbound))
			if tt.generate {
				_, err := uuid.Parse(got)
				require.NoError(t, err)
				return
			}
			require.Equal(t, tt.inbound, got)
		})
	}

	require.Empty(t, corr.RequestIDFromContext(context.Background()))
}

func TestGenerateRoundTrip(t *testing.T) {
	require.Empty(t, corr.Generate(context.Background()))

	ctx := corr.SetID(context.Background(), "abc")
	data, err := corr.ParseCorrelationHeader(corr.Generate(ctx))
	require.NoError(t, err)
	require.Equal(t, "abc", data[corr.IDKey])
}
