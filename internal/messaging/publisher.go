package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"pizzeria-system/internal/logger"
)

// StatusUpdateMessage is broadcast on every order status transition
type StatusUpdateMessage struct {
	OrderID    int       `json:"order_id"`
	Status     string    `json:"status"`
	Subtotal   float64   `json:"subtotal"`
	TotalFinal float64   `json:"total_final"`
	Timestamp  time.Time `json:"timestamp"`
}

// PaymentReceiptMessage is published when a payment is dispatched
type PaymentReceiptMessage struct {
	OrderID   int       `json:"order_id"`
	Method    string    `json:"method"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher handles message publishing to RabbitMQ
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a new message publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishStatusUpdate broadcasts a status update on the fanout exchange
func (p *Publisher) PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error {
	return p.publishMessage(ctx, StatusExchange, "", msg, false)
}

// PublishPaymentReceipt publishes a payment receipt, routed by method
func (p *Publisher) PublishPaymentReceipt(ctx context.Context, msg PaymentReceiptMessage) error {
	routingKey := "payment." + strings.ToLower(msg.Method)
	return p.publishMessage(ctx, PaymentsExchange, routingKey, msg, true)
}

// publishMessage is the generic message publishing function
func (p *Publisher) publishMessage(ctx context.Context, exchange, routingKey string, message interface{}, persistent bool) error {
	if p.conn.IsClosed() {
		if err := p.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	deliveryMode := amqp091.Transient
	if persistent {
		deliveryMode = amqp091.Persistent
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: deliveryMode,
		Timestamp:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(
		ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		publishing,
	)
	if err != nil {
		p.logger.Error("message_publish_failed",
			fmt.Sprintf("Failed to publish message to exchange %s", exchange),
			"", err, map[string]interface{}{
				"exchange":    exchange,
				"routing_key": routingKey,
			})
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", exchange),
		"", map[string]interface{}{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_size": len(body),
		})

	return nil
}

// Close closes the publisher's connection
func (p *Publisher) Close() error {
	return p.conn.Close()
}
