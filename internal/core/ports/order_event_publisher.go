package ports

import (
	"context"
	"time"
)

type OrderEventType string

const (
	OrderCreated              OrderEventType = "order.created"
	OrderUpdated              OrderEventType = "order.updated"
	OrderStatusChanged        OrderEventType = "order.status.changed"
	OrderPaymentStatusChanged OrderEventType = "order.payment_status.changed"
)

// OrderEvent is published after a unit of work commits.
type OrderEvent struct {
	Type          OrderEventType `json:"type"`
	OrderID       string         `json:"orderId"`
	OrderNumber   string         `json:"orderNumber"`
	AccountID     string         `json:"accountId"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"paymentStatus"`
	Currency      string         `json:"currency"`
	Total         string         `json:"total"`
	OccurredAt    time.Time      `json:"occurredAt"`
}

// OrderEventPublisher delivers order events to downstream consumers.
// Delivery is best effort; callers log failures.
type OrderEventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}
