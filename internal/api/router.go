package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
)

// NewRouter wires the order resource, health and metrics endpoints, and the
// static ordering page when staticDir is non-empty.
func NewRouter(h *Handler, staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogging)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sodaorders", h.ListOrdersHandler).Methods("GET")
	api.HandleFunc("/sodaorders", h.CreateOrderHandler).Methods("POST")
	api.HandleFunc("/sodaorders/{id}", h.GetOrderHandler).Methods("GET")
	api.HandleFunc("/sodaorders/{id}", h.UpdateOrderHandler).Methods("PUT")
	api.HandleFunc("/sodaorders/{id}", h.DeleteOrderHandler).Methods("DELETE")

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return r
}

// requestLogging tags every request with an id and logs it, and stores the
// request-scoped logger in the context for the handlers.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		logger := zlog.With().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		logger.Info().Msg("request received")

		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}
