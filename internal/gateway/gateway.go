// Package gateway defines the contracts the kiosk uses to reach the external
// POS platforms, independent of which platform is configured.
package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"totem-kiosk/internal/domain"
)

// MenuSource returns the current menu.
type MenuSource interface {
	GetMenu(ctx context.Context) (domain.Menu, error)
}

// OrderGateway submits an order to the POS.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (OrderReceipt, error)
}

// Gateway is a POS platform serving both the menu and order submission.
type Gateway interface {
	MenuSource
	OrderGateway
}

// OrderRequest is the platform-neutral order payload.
type OrderRequest struct {
	LocalID   string
	OrderType domain.OrderType
	Lines     []OrderLine
	Payment   Payment
	Customer  domain.Customer
	Note      string
	CreatedAt time.Time
}

// OrderLine is one item as the POS sees it.
type OrderLine struct {
	ProductID       string
	IntegrationCode string
	Description     string
	Quantity        int
	UnitPrice       decimal.Decimal
	Notes           string
	Options         []OrderOption
}

// Total is UnitPrice times Quantity.
func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type OrderOption struct {
	IntegrationCode string
	Name            string
	Price           decimal.Decimal
}

type Payment struct {
	Method domain.PaymentMethod
	Amount decimal.Decimal
}

// OrderReceipt is the normalised acknowledgment from the POS.
type OrderReceipt struct {
	OrderID   string
	DisplayID string
	Status    string
}

// Unconfigured fails every call with the configuration error that prevented
// building a real gateway, so the process keeps serving other routes.
type Unconfigured struct {
	Err error
}

func (u Unconfigured) GetMenu(context.Context) (domain.Menu, error) {
	return domain.Menu{}, u.Err
}

func (u Unconfigured) CreateOrder(context.Context, OrderRequest) (OrderReceipt, error) {
	return OrderReceipt{}, u.Err
}
