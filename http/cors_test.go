package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rainbow-me/myapp/common/headers"
	myhttp "github.com/rainbow-me/myapp/http"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.RemoteAddr))
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        func() myhttp.CORSConfig
		wantStatus int
		wantOrigin string
	}{
		{
			name:       "disabled passes preflight through",
			cfg:        myhttp.DefaultCORSConfig,
			wantStatus: http.StatusOK,
		},
		{
			name: "enabled answers preflight",
			cfg: func() myhttp.CORSConfig {
				cfg := myhttp.DefaultCORSConfig()
				cfg.Enabled = true
				return cfg
			},
			wantStatus: http.StatusNoContent,
			wantOrigin: "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/", nil)
			req.Header.Set("Origin", "https://rainbow.me")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()

			tt.cfg().Apply(okHandler()).ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
			require.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSExposesRequestID(t *testing.T) {
	cfg := myhttp.DefaultCORSConfig()
	cfg.Enabled = true

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://rainbow.me")
	w := httptest.NewRecorder()
	cfg.Apply(okHandler()).ServeHTTP(w, req)

	require.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-Id")
	require.NotEmpty(t, headers.GetHeadersToExpose())
}

func TestWithProxyHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := httptest.NewRecorder()

	myhttp.WithProxyHeaders(okHandler()).ServeHTTP(w, req)
	require.Equal(t, "203.0.113.7", w.Body.String())
}
