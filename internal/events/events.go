// Package events publishes order lifecycle events for downstream consumers
// such as kitchen displays and reporting.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
)

const (
	TypeOrderCompleted     = "order.completed"
	TypeOrderStatusChanged = "order.status_changed"
)

// Publisher delivers one event. key groups related events, e.g. by order.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type OrderCompleted struct {
	Type          string               `json:"type"`
	OrderID       string               `json:"orderId"`
	DisplayID     string               `json:"displayId"`
	ExternalID    string               `json:"externalId,omitempty"`
	OrderType     domain.OrderType     `json:"orderType"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Total         decimal.Decimal      `json:"total"`
	Items         int                  `json:"items"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

// NewOrderCompleted summarises a recorded order.
func NewOrderCompleted(o domain.Order) OrderCompleted {
	items := 0
	for _, l := range o.Lines {
		items += l.Quantity
	}
	return OrderCompleted{
		Type:          TypeOrderCompleted,
		OrderID:       o.ID,
		DisplayID:     o.DisplayID,
		ExternalID:    o.ExternalID,
		OrderType:     o.OrderType,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		Items:         items,
		OccurredAt:    o.CreatedAt,
	}
}

// OrderStatusChanged is emitted when the POS reports progress on an order.
type OrderStatusChanged struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	DisplayID  string    `json:"displayId,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	Logger *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, key string, event any) error {
	if p.Logger != nil {
		p.Logger.Info("event", zap.String("key", key), zap.Any("event", event))
	}
	return nil
}
