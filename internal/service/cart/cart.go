package cart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"totem-kiosk/internal/domain"
)

// Cart aggregates the lines of one kiosk session. It is not safe for
// concurrent use; the owning session serialises access.
type Cart struct {
	lines []domain.CartLine
	newID func() string
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{newID: uuid.NewString}
}

// Add appends a new line. Lines are never merged, even for the same product.
func (c *Cart) Add(product domain.Product, quantity int, modifiers []domain.SelectedModifier, observations string) (domain.CartLine, error) {
	if quantity < 1 {
		return domain.CartLine{}, domain.NewValidationError("quantity", "quantity must be positive")
	}
	if strings.TrimSpace(product.ID) == "" {
		return domain.CartLine{}, domain.NewValidationError("productId", "product required")
	}
	for _, m := range modifiers {
		if m.Price.IsNegative() {
			return domain.CartLine{}, domain.NewValidationError("modifiers", "modifier price must not be negative")
		}
	}

	line := domain.CartLine{
		ID:              c.newID(),
		ProductID:       product.ID,
		ProductName:     product.Name,
		IntegrationCode: product.Code(),
		BasePrice:       product.Price,
		Quantity:        quantity,
		Modifiers:       append([]domain.SelectedModifier(nil), modifiers...),
		Observations:    strings.TrimSpace(observations),
	}
	line.Recompute()
	c.lines = append(c.lines, line)
	return line.Clone(), nil
}

// Remove drops the line; unknown ids are ignored.
func (c *Cart) Remove(lineID string) {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity adds delta to the line quantity. A result of zero or less
// removes the line.
func (c *Cart) UpdateQuantity(lineID string, delta int) {
	for i := range c.lines {
		if c.lines[i].ID != lineID {
			continue
		}
		qty := c.lines[i].Quantity + delta
		if qty <= 0 {
			c.Remove(lineID)
			return
		}
		c.lines[i].Quantity = qty
		c.lines[i].Recompute()
		return
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Total sums line totals on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.TotalPrice)
	}
	return total
}

// Lines returns snapshots of the current lines.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, l.Clone())
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}
