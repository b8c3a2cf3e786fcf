package domain

import "github.com/shopspring/decimal"

// CartLine is one confirmed add-to-cart action.
type CartLine struct {
	ID              string             `json:"id"`
	ProductID       string             `json:"productId"`
	ProductName     string             `json:"productName"`
	IntegrationCode string             `json:"integrationCode,omitempty"`
	BasePrice       decimal.Decimal    `json:"basePrice"`
	Quantity        int                `json:"quantity"`
	Modifiers       []SelectedModifier `json:"modifiers,omitempty"`
	Observations    string             `json:"observations,omitempty"`
	TotalPrice      decimal.Decimal    `json:"totalPrice"`
}

// UnitPrice is the base price plus every selected modifier price.
func (l CartLine) UnitPrice() decimal.Decimal {
	unit := l.BasePrice
	for _, m := range l.Modifiers {
		unit = unit.Add(m.Price)
	}
	return unit
}

// Recompute sets TotalPrice from the snapshotted unit economics.
func (l *CartLine) Recompute() {
	l.TotalPrice = l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Clone returns a copy that shares no slices with l.
func (l CartLine) Clone() CartLine {
	out := l
	if l.Modifiers != nil {
		out.Modifiers = append([]SelectedModifier(nil), l.Modifiers...)
	}
	return out
}
