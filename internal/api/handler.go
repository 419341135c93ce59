package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sodavend/internal/domain"
	"sodavend/internal/reservation"
	"sodavend/internal/store"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sodavend_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sodavend_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})

	reservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sodavend_reservations_total",
		Help: "Reservations created, labeled by soda",
	}, []string{"soda"})
)

type Handler struct {
	orders       store.OrderStore
	reservations *reservation.Service
}

func NewHandler(orders store.OrderStore, reservations *reservation.Service) *Handler {
	return &Handler{orders: orders, reservations: reservations}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ListOrdersHandler returns every reservation order, completed ones included.
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.Orders(r.Context())
	if err != nil {
		respondWithError(w, r, http.StatusServiceUnavailable, "Order storage unavailable")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondWithJSON(w, r, http.StatusOK, orders)
}

func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid order id")
		return
	}
	order, err := h.orders.Get(r.Context(), id)
	if errors.Is(err, store.ErrOrderNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusServiceUnavailable, "Order storage unavailable")
		return
	}
	respondWithJSON(w, r, http.StatusOK, order)
}

// CreateOrderHandler reserves a soda and returns the order with its pin.
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/api/sodaorders"))
	defer timer.ObserveDuration()

	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Soda == "" {
		respondWithError(w, r, http.StatusUnprocessableEntity, "Missing soda name")
		return
	}

	order, err := h.reservations.CreateOrder(r.Context(), req.Soda)
	switch {
	case errors.Is(err, store.ErrSodaNotFound):
		respondWithError(w, r, http.StatusNotFound, "No such soda")
		return
	case errors.Is(err, store.ErrPinsExhausted):
		respondWithError(w, r, http.StatusConflict, "No retrieval pins left")
		return
	case err != nil:
		respondWithError(w, r, http.StatusServiceUnavailable, "Order storage unavailable")
		return
	}

	reservationsTotal.WithLabelValues(order.Soda).Inc()
	respondWithJSON(w, r, http.StatusCreated, order)
}

func (h *Handler) UpdateOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid order id")
		return
	}
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if order.ID != id {
		respondWithError(w, r, http.StatusBadRequest, "Order id mismatch")
		return
	}

	err = h.orders.Update(r.Context(), order)
	if errors.Is(err, store.ErrOrderNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusServiceUnavailable, "Order storage unavailable")
		return
	}
	respondStatus(w, r, http.StatusNoContent)
}

func (h *Handler) DeleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		respondWithError(w, r, http.StatusBadRequest, "Invalid order id")
		return
	}
	err = h.orders.Delete(r.Context(), id)
	if errors.Is(err, store.ErrOrderNotFound) {
		respondWithError(w, r, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		respondWithError(w, r, http.StatusServiceUnavailable, "Order storage unavailable")
		return
	}
	respondStatus(w, r, http.StatusNoContent)
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func respondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	httpRequestsTotal.WithLabelValues(r.Method, endpointLabel(r), strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondStatus(w http.ResponseWriter, r *http.Request, code int) {
	httpRequestsTotal.WithLabelValues(r.Method, endpointLabel(r), strconv.Itoa(code)).Inc()
	w.WriteHeader(code)
}

func respondWithError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	respondWithJSON(w, r, code, map[string]string{"error": msg})
}

// endpointLabel keeps the metric cardinality bounded by using the route
// template rather than the concrete path.
func endpointLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}
