// Package checkout submits a cart to the POS and records the result.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/events"
	"totem-kiosk/internal/gateway"
	orderrepo "totem-kiosk/internal/repository/order"
)

// Attempt is a snapshot of a session at the moment the customer paid.
type Attempt struct {
	OrderType domain.OrderType
	Lines     []domain.CartLine
	Payment   domain.PaymentMethod
	Note      string
	Customer  domain.Customer
	// Current reports whether the session still matches this attempt once the
	// gateway answers. Nil means it always does.
	Current func() bool
}

type Result struct {
	// OrderID is what the customer is shown: the POS display id when the POS
	// assigned one, otherwise the local id.
	OrderID string       `json:"orderId"`
	Order   domain.Order `json:"order"`
}

type Dispatcher struct {
	gateway gateway.OrderGateway
	history orderrepo.Repository
	events  events.Publisher
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

func New(gw gateway.OrderGateway, history orderrepo.Repository, publisher events.Publisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Dispatcher{
		gateway: gw,
		history: history,
		events:  publisher,
		logger:  logger.Named("checkout"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Validate rejects attempts that must never reach the POS.
func Validate(a Attempt) error {
	switch {
	case len(a.Lines) == 0:
		return domain.NewValidationError("cart", "cart is empty")
	case !a.OrderType.Valid():
		return domain.NewValidationError("orderType", "order type not selected")
	case a.Payment == "":
		return domain.NewValidationError("paymentMethod", "payment method required")
	case !a.Payment.Valid():
		return domain.NewValidationError("paymentMethod", "unknown payment method")
	}
	return nil
}

// Complete submits the attempt. History is written only after the POS
// acknowledged the order, and only if the session did not move on meanwhile.
func (d *Dispatcher) Complete(ctx context.Context, a Attempt) (Result, error) {
	if err := Validate(a); err != nil {
		return Result{}, err
	}

	localID := d.newID()
	createdAt := d.now()
	total := decimal.Zero
	lines := make([]gateway.OrderLine, 0, len(a.Lines))
	for _, l := range a.Lines {
		total = total.Add(l.TotalPrice)
		lines = append(lines, orderLine(l))
	}

	receipt, err := d.gateway.CreateOrder(ctx, gateway.OrderRequest{
		LocalID:   localID,
		OrderType: a.OrderType,
		Lines:     lines,
		Payment:   gateway.Payment{Method: a.Payment, Amount: total},
		Customer:  a.Customer,
		Note:      a.Note,
		CreatedAt: createdAt,
	})
	if err != nil {
		d.logger.Warn("order submission failed", zap.String("order_id", localID), zap.Error(err))
		return Result{}, classify(err)
	}

	if a.Current != nil && !a.Current() {
		d.logger.Warn("discarding checkout for changed session",
			zap.String("order_id", localID),
			zap.String("pos_order_id", receipt.OrderID),
			zap.String("display_id", receipt.DisplayID))
		return Result{}, domain.ErrStaleCheckout
	}

	order := domain.Order{
		ID:            localID,
		DisplayID:     receipt.DisplayID,
		ExternalID:    receipt.OrderID,
		OrderType:     a.OrderType,
		Lines:         cloneLines(a.Lines),
		Total:         total,
		PaymentMethod: a.Payment,
		Note:          a.Note,
		CreatedAt:     createdAt,
	}
	if order.DisplayID == "" {
		order.DisplayID = localID
	}

	if err := d.history.Append(ctx, order); err != nil {
		perr := &domain.PersistenceError{Op: "append order", Err: err}
		d.logger.Error("order acknowledged but not recorded", zap.String("order_id", localID), zap.Error(perr))
	}
	if err := d.events.Publish(ctx, localID, events.NewOrderCompleted(order)); err != nil {
		d.logger.Warn("publish order completed", zap.String("order_id", localID), zap.Error(err))
	}

	d.logger.Info("order completed",
		zap.String("order_id", localID),
		zap.String("display_id", order.DisplayID),
		zap.String("total", total.StringFixed(2)))
	return Result{OrderID: order.DisplayID, Order: order}, nil
}

func orderLine(l domain.CartLine) gateway.OrderLine {
	opts := make([]gateway.OrderOption, 0, len(l.Modifiers))
	for _, m := range l.Modifiers {
		opts = append(opts, gateway.OrderOption{IntegrationCode: m.IntegrationCode, Name: m.Name, Price: m.Price})
	}
	code := l.IntegrationCode
	if code == "" {
		code = l.ProductID
	}
	return gateway.OrderLine{
		ProductID:       l.ProductID,
		IntegrationCode: code,
		Description:     l.ProductName,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice(),
		Notes:           l.Observations,
		Options:         opts,
	}
}

// classify keeps typed gateway failures and wraps anything else.
func classify(err error) error {
	var (
		gwErr  *domain.GatewayError
		cfgErr *domain.ConfigError
	)
	if errors.As(err, &gwErr) || errors.As(err, &cfgErr) {
		return err
	}
	return &domain.GatewayError{Op: "create order", Err: err}
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Clone())
	}
	return out
}
