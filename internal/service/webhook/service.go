// Package webhook handles order status callbacks from the POS.
package webhook

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/events"
)

type EventType string

const (
	EventConfirmed EventType = "CONFIRMED"
	EventConcluded EventType = "CONCLUDED"
	EventCancelled EventType = "CANCELLED"
)

func (t EventType) Valid() bool {
	switch t {
	case EventConfirmed, EventConcluded, EventCancelled:
		return true
	}
	return false
}

// OrderEvent is the callback body.
type OrderEvent struct {
	EventType  EventType  `json:"event_type"`
	OrderID    string     `json:"order_id"`
	DisplayID  string     `json:"display_id,omitempty"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

// Validate checks the payload shape only.
func (e OrderEvent) Validate() error {
	if !e.EventType.Valid() {
		return domain.NewValidationError("event_type", "unknown event type")
	}
	if strings.TrimSpace(e.OrderID) == "" {
		return domain.NewValidationError("order_id", "order id required")
	}
	return nil
}

type Service struct {
	events events.Publisher
	logger *zap.Logger
	now    func() time.Time
}

func New(publisher events.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Service{events: publisher, logger: logger.Named("webhook"), now: time.Now}
}

// Handle processes a validated event. Failures are logged and never returned;
// the POS only needs to know the callback arrived.
func (s *Service) Handle(ctx context.Context, e OrderEvent) {
	at := s.now()
	if e.OccurredAt != nil {
		at = *e.OccurredAt
	}
	s.logger.Info("order status received",
		zap.String("event_type", string(e.EventType)),
		zap.String("order_id", e.OrderID),
		zap.String("display_id", e.DisplayID))

	err := s.events.Publish(ctx, e.OrderID, events.OrderStatusChanged{
		Type:       events.TypeOrderStatusChanged,
		OrderID:    e.OrderID,
		DisplayID:  e.DisplayID,
		Status:     string(e.EventType),
		OccurredAt: at,
	})
	if err != nil {
		s.logger.Error("publish order status", zap.String("order_id", e.OrderID), zap.Error(err))
	}
}
