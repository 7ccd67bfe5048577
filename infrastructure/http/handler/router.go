package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hotellisting/hotellisting-api/infrastructure/http/middleware"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/response"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/metrics"
)

// NewRouter wires the account routes, /health and, when gatherer is set,
// /metrics.
func NewRouter(account *AccountHandler, auth *middleware.AuthMiddleware, gatherer prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()

	account.RegisterRoutes(router, auth)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "healthy", nil)
	}).Methods(http.MethodGet)

	if gatherer != nil {
		router.Handle("/metrics", metrics.Handler(gatherer)).Methods(http.MethodGet)
	}

	return router
}
