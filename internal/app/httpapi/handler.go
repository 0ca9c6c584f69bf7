// Package httpapi exposes the ambient operator-facing surface: health and
// metrics. The business REST surface that normally sits in front of the
// domain services is an external collaborator, not part of this module.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/divingclub/opscore/internal/app/metrics"
	"github.com/divingclub/opscore/internal/httputil"
)

// NewRouter builds the HTTP router exposing /healthz and /metrics.
func NewRouter() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", health).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return metrics.InstrumentHandler(router)
}

func health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
