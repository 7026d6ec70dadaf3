// Package notify holds the status observers attached to every order.
// Each one reacts to a status transition with an external side effect:
// updating the kitchen display, notifying the customer, logging, or
// broadcasting to the message broker.
package notify

import (
	"context"
	"fmt"
	"time"

	"pizzeria-system/internal/logger"
	"pizzeria-system/internal/messaging"
	"pizzeria-system/internal/models"
)

// KitchenDisplay represents the kitchen panel
type KitchenDisplay struct {
	logger *logger.Logger
}

// NewKitchenDisplay creates a kitchen display observer
func NewKitchenDisplay(log *logger.Logger) *KitchenDisplay {
	return &KitchenDisplay{logger: log}
}

func (k *KitchenDisplay) Update(order *models.Order) {
	k.logger.Info("kitchen_display_updated",
		fmt.Sprintf("Order #%d changed to: %s", order.ID(), order.Status()), "",
		map[string]interface{}{
			"order_id": order.ID(),
			"status":   string(order.Status()),
		})
}

// CustomerNotifier represents a notification to the customer
type CustomerNotifier struct {
	logger *logger.Logger
}

// NewCustomerNotifier creates a customer notification observer
func NewCustomerNotifier(log *logger.Logger) *CustomerNotifier {
	return &CustomerNotifier{logger: log}
}

func (c *CustomerNotifier) Update(order *models.Order) {
	c.logger.Info("customer_notified",
		fmt.Sprintf("Your order #%d is now: %s", order.ID(), order.Status()), "",
		map[string]interface{}{
			"order_id": order.ID(),
			"status":   string(order.Status()),
		})
}

// StatusLogger records every status transition
type StatusLogger struct {
	logger *logger.Logger
}

// NewStatusLogger creates a logging observer
func NewStatusLogger(log *logger.Logger) *StatusLogger {
	return &StatusLogger{logger: log}
}

func (s *StatusLogger) Update(order *models.Order) {
	s.logger.Debug("status_changed",
		fmt.Sprintf("Order #%d status updated: %s", order.ID(), order.Status()), "",
		map[string]interface{}{
			"order_id":    order.ID(),
			"status":      string(order.Status()),
			"subtotal":    order.Subtotal(),
			"total_final": order.TotalFinal(),
		})
}

// Broadcaster publishes status transitions to the message broker.
// Publish failures are logged and swallowed: observer side effects are
// external to the order and must not break the transition.
type Broadcaster struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewBroadcaster creates an observer that publishes status updates
func NewBroadcaster(pub *messaging.Publisher, log *logger.Logger) *Broadcaster {
	return &Broadcaster{publisher: pub, logger: log}
}

func (b *Broadcaster) Update(order *models.Order) {
	msg := messaging.StatusUpdateMessage{
		OrderID:    order.ID(),
		Status:     string(order.Status()),
		Subtotal:   order.Subtotal(),
		TotalFinal: order.TotalFinal(),
		Timestamp:  time.Now().UTC(),
	}
	if err := b.publisher.PublishStatusUpdate(context.Background(), msg); err != nil {
		b.logger.Error("status_broadcast_failed",
			fmt.Sprintf("Failed to broadcast status of order #%d", order.ID()), "",
			err, map[string]interface{}{
				"order_id": order.ID(),
				"status":   string(order.Status()),
			})
	}
}
