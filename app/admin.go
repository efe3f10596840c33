package app

import (
	"encoding/json"
	"net/http"

	httptrace "github.com/DataDog/dd-trace-go/contrib/net/http/v2"

	"github.com/rainbow-me/myapp/probe"
)

const (
	ReadyPath          = "/readyz"
	statusNotReady     = "not ready"
	adminServiceSuffix = "-admin"
)

// AdminHandler serves liveness on /healthz and readiness on /readyz. Readiness turns to 503 as
// soon as shutdown starts so load balancers stop routing traffic.
func (a *App) AdminHandler() http.Handler {
	mux := httptrace.NewServeMux(httptrace.WithService(a.cfg.Service.Name + adminServiceSuffix))
	mux.HandleFunc(probe.HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, probe.StatusOK)
	})
	mux.HandleFunc(ReadyPath, func(w http.ResponseWriter, _ *http.Request) {
		if !a.Ready() {
			writeHealth(w, http.StatusServiceUnavailable, statusNotReady)
			return
		}
		writeHealth(w, http.StatusOK, probe.StatusOK)
	})
	return mux
}

func writeHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(probe.Health{Status: value})
}
