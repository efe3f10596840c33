package probe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/mocktracer"
	"github.com/stretchr/testify/require"

	"github.com/rainbow-me/myapp/common/correlation"
	"github.com/rainbow-me/myapp/common/headers"
	"github.com/rainbow-me/myapp/common/test"
	"github.com/rainbow-me/myapp/probe"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status":"ok"}`},
		{name: "unhealthy body", status: http.StatusOK, body: `{"status":"draining"}`, wantErr: true},
		{name: "server error", status: http.StatusServiceUnavailable, body: `{"status":"ok"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != probe.HealthPath {
					http.NotFound(w, r)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(headers.HeaderXRequestID, r.Header.Get(headers.HeaderXRequestID))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			ctx := correlation.ContextWithRequestID(context.Background(), "probe-1")
			res, err := probe.New(srv.URL+"/", test.NewLogger(t)).Health(ctx)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, probe.StatusOK, res.Status)
			require.Equal(t, "probe-1", res.RequestID)
		})
	}
}

func TestHealthPropagatesTrace(t *testing.T) {
	mt := mocktracer.Start()
	defer mt.Stop()

	var gotTraceID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceID = r.Header.Get(headers.HeaderXTraceID)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	_, err := probe.New(srv.URL, test.NewLogger(t)).Health(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, gotTraceID)

	spans := mt.FinishedSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "http.request", spans[0].OperationName())
}

func TestHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := probe.New(url, test.NewLogger(t)).Health(context.Background())
	require.Error(t, err)
}
