package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pizzeria-system/internal/logger"
	"pizzeria-system/internal/menu"
	"pizzeria-system/internal/messaging"
	"pizzeria-system/internal/models"
	"pizzeria-system/internal/notify"
	"pizzeria-system/internal/payment"
	"pizzeria-system/internal/storage"
)

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	Items    []ItemRequest        `json:"items"`
	Discount *models.DiscountSpec `json:"discount,omitempty"`
}

// ItemRequest references a menu item by id. A missing quantity
// defaults to 1; zero and negative quantities are accepted as-is.
type ItemRequest struct {
	MenuID   string `json:"menu_id"`
	Quantity *int   `json:"quantity,omitempty"`
}

// PaymentRequest is the body of POST /orders/{id}/pay
type PaymentRequest struct {
	Method string `json:"method"`
}

// StatusRequest is the body of PATCH /orders/{id}/status
type StatusRequest struct {
	Status string `json:"status"`
}

// PaymentResponse confirms a dispatched payment
type PaymentResponse struct {
	Message string               `json:"message"`
	Method  string               `json:"method"`
	Order   models.OrderSnapshot `json:"order"`
}

// Service orchestrates orders: it builds aggregates from menu data,
// wires their observers, stores them, and drives status transitions
// and payment dispatch.
type Service struct {
	catalog   *menu.Catalog
	store     storage.OrderStore
	pricing   *models.Pricing
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewService creates the order service. publisher may be nil when no
// broker is configured; status updates are then only handled locally.
func NewService(catalog *menu.Catalog, store storage.OrderStore, pricing *models.Pricing,
	publisher *messaging.Publisher, log *logger.Logger) *Service {
	return &Service{
		catalog:   catalog,
		store:     store,
		pricing:   pricing,
		publisher: publisher,
		logger:    log,
	}
}

// CreateOrder builds a new order from menu references, attaches the
// standard observers, applies the requested discount and stores it.
// An unknown menu id aborts the whole order.
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest, requestID string) (models.OrderSnapshot, error) {
	id, err := s.store.NextID(ctx)
	if err != nil {
		return models.OrderSnapshot{}, fmt.Errorf("failed to allocate order id: %w", err)
	}

	order := models.NewOrder(id, s.pricing)
	s.attachObservers(order)

	for _, item := range req.Items {
		menuItem, err := s.catalog.Get(item.MenuID)
		if err != nil {
			return models.OrderSnapshot{}, err
		}
		quantity := 1
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		order.AddLine(menuItem, quantity)
	}

	order.SetDiscountPolicy(models.PolicyFromSpec(req.Discount))

	if err := s.store.Save(ctx, order); err != nil {
		return models.OrderSnapshot{}, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("order_created", fmt.Sprintf("Order #%d created", id), requestID, map[string]interface{}{
		"order_id":    id,
		"lines":       len(order.Lines()),
		"subtotal":    order.Subtotal(),
		"total_final": order.TotalFinal(),
	})

	return order.Snapshot(), nil
}

// GetOrder returns the snapshot of one order
func (s *Service) GetOrder(ctx context.Context, id int) (models.OrderSnapshot, error) {
	order, err := s.store.Get(ctx, id)
	if err != nil {
		return models.OrderSnapshot{}, err
	}
	return order.Snapshot(), nil
}

// ListOrders returns snapshots of all stored orders
func (s *Service) ListOrders(ctx context.Context) ([]models.OrderSnapshot, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]models.OrderSnapshot, 0, len(orders))
	for _, order := range orders {
		snapshots = append(snapshots, order.Snapshot())
	}
	return snapshots, nil
}

// UpdateStatus sets an order's status by name and persists the result.
// An unknown status name leaves the order untouched.
func (s *Service) UpdateStatus(ctx context.Context, id int, statusName, requestID string) (models.OrderSnapshot, error) {
	status, err := models.ParseStatus(statusName)
	if err != nil {
		return models.OrderSnapshot{}, err
	}

	order, err := s.store.Get(ctx, id)
	if err != nil {
		return models.OrderSnapshot{}, err
	}
	s.attachObserversOnce(order)

	order.SetStatus(status)

	if err := s.store.Save(ctx, order); err != nil {
		return models.OrderSnapshot{}, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("status_updated", fmt.Sprintf("Order #%d set to %s", id, status), requestID, map[string]interface{}{
		"order_id": id,
		"status":   string(status),
	})

	return order.Snapshot(), nil
}

// PayOrder resolves a payment processor by method name and dispatches
// the payment. Unrecognized methods fall back to cash, never an error.
func (s *Service) PayOrder(ctx context.Context, id int, method, requestID string) (PaymentResponse, error) {
	order, err := s.store.Get(ctx, id)
	if err != nil {
		return PaymentResponse{}, err
	}
	s.attachObserversOnce(order)

	if method == "" {
		method = payment.MethodCash
	}

	processor := payment.Resolve(method, s.logger)
	processor.Pay(order)

	if s.publisher != nil {
		receipt := messaging.PaymentReceiptMessage{
			OrderID:   order.ID(),
			Method:    method,
			Amount:    order.TotalFinal(),
			Timestamp: time.Now().UTC(),
		}
		if err := s.publisher.PublishPaymentReceipt(ctx, receipt); err != nil {
			s.logger.Error("receipt_publish_failed", "Failed to publish payment receipt", requestID, err,
				map[string]interface{}{"order_id": order.ID()})
		}
	}

	return PaymentResponse{
		Message: fmt.Sprintf("Payment processed via %s", normalizeMethod(method)),
		Method:  normalizeMethod(method),
		Order:   order.Snapshot(),
	}, nil
}

// normalizeMethod echoes the requested method back uppercased, the
// way the confirmation message reports it.
func normalizeMethod(method string) string {
	return strings.ToUpper(method)
}

// attachObservers wires the standard observer set to a new order
func (s *Service) attachObservers(order *models.Order) {
	order.Attach(notify.NewKitchenDisplay(s.logger))
	order.Attach(notify.NewCustomerNotifier(s.logger))
	order.Attach(notify.NewStatusLogger(s.logger))
	if s.publisher != nil {
		order.Attach(notify.NewBroadcaster(s.publisher, s.logger))
	}
}

// attachObserversOnce attaches the standard set only when the order
// has none, which happens after rehydration from the database.
func (s *Service) attachObserversOnce(order *models.Order) {
	if order.ObserverCount() == 0 {
		s.attachObservers(order)
	}
}
