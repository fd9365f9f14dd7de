package commands

import (
	"context"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"

	"go.uber.org/zap"
)

// eventNotifier publishes after commit. A failed publish never fails the
// command; the order is already durable.
type eventNotifier struct {
	publisher ports.OrderEventPublisher
	logger    *zap.Logger
}

func newEventNotifier(publisher ports.OrderEventPublisher, logger *zap.Logger) eventNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return eventNotifier{publisher: publisher, logger: logger}
}

func (n eventNotifier) notify(ctx context.Context, eventType ports.OrderEventType, o *order.Order) {
	if n.publisher == nil {
		return
	}

	event := ports.OrderEvent{
		Type:          eventType,
		OrderID:       o.ID().String(),
		OrderNumber:   o.Number().String(),
		AccountID:     o.AccountID().String(),
		Status:        o.Status().String(),
		PaymentStatus: o.PaymentStatus().String(),
		Currency:      o.Currency().String(),
		Total:         o.Total().StringFixed(2),
		OccurredAt:    o.UpdatedAt(),
	}
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.logger.Warn("order event not published",
			zap.String("event", string(eventType)),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}
