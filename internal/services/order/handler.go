package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pizzeria-system/internal/logger"
	"pizzeria-system/internal/menu"
	"pizzeria-system/internal/models"
	"pizzeria-system/internal/storage"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	catalog *menu.Catalog
	pricing *models.Pricing
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, catalog *menu.Catalog, pricing *models.Pricing, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		catalog: catalog,
		pricing: pricing,
		logger:  log,
	}
}

// GetMenu handles GET /menu
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.List())
}

// GetConfig handles GET /config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{
		"delivery_fee":     h.pricing.DeliveryFee,
		"service_fee_rate": h.pricing.ServiceFeeRate,
	})
}

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON format")
		return
	}

	h.logger.Debug("order_received", "Received order creation request", requestID, map[string]interface{}{
		"items":       len(req.Items),
		"remote_addr": r.RemoteAddr,
	})

	snapshot, err := h.service.CreateOrder(r.Context(), &req, requestID)
	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			writeError(w, http.StatusBadRequest, "invalid_menu_item", err.Error())
			return
		}
		h.logger.Error("order_creation_failed", "Failed to create order", requestID, err, nil)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	snapshots, err := h.service.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("order_list_failed", "Failed to list orders", requestID, err, nil)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, err, requestID, id)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// UpdateStatus handles PATCH /orders/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON format")
		return
	}

	snapshot, err := h.service.UpdateStatus(r.Context(), id, req.Status, requestID)
	if err != nil {
		var invalidStatus *models.ErrInvalidStatus
		if errors.As(err, &invalidStatus) {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
		h.writeLookupError(w, err, requestID, id)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// PayOrder handles POST /orders/{id}/pay
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	response, err := h.service.PayOrder(ctx, id, req.Method, requestID)
	if err != nil {
		h.writeLookupError(w, err, requestID, id)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "order-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// orderID parses the {id} path parameter
func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "Order id must be an integer")
		return 0, false
	}
	return id, true
}

// writeLookupError maps store lookup failures to HTTP responses
func (h *Handler) writeLookupError(w http.ResponseWriter, err error, requestID string, id int) {
	if errors.Is(err, storage.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}
	h.logger.Error("order_lookup_failed", "Failed to load order", requestID, err, map[string]interface{}{
		"order_id": id,
	})
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the JSON error envelope {error, message}
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
