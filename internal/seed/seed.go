// Package seed writes starter data for manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/repository/kv"
	orderrepo "totem-kiosk/internal/repository/order"
	"totem-kiosk/internal/service/cart"
	"totem-kiosk/internal/service/storeconfig"
)

// StoreConfig saves the default store configuration unless one exists. It
// reports whether anything was written.
func StoreConfig(ctx context.Context, repo kv.Repository, logger *zap.Logger) (bool, error) {
	_, err := repo.Get(ctx, storeconfig.Key)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, fmt.Errorf("read store config: %w", err)
	}
	if _, err := storeconfig.New(repo, logger).Save(ctx, storeconfig.Defaults()); err != nil {
		return false, err
	}
	return true, nil
}

type orderSeed struct {
	daysAgo   int
	orderType domain.OrderType
	payment   domain.PaymentMethod
	items     map[string]int
}

var demoOrders = []orderSeed{
	{0, domain.OrderTypeDineIn, domain.PaymentCredit, map[string]int{"x-burger": 2, "cola": 2}},
	{0, domain.OrderTypeTakeOut, domain.PaymentPix, map[string]int{"combo-classic": 1}},
	{3, domain.OrderTypeDineIn, domain.PaymentDebit, map[string]int{"x-burger": 1, "water": 1}},
	{12, domain.OrderTypeTakeOut, domain.PaymentMealVoucher, map[string]int{"combo-classic": 2, "cola": 1}},
}

// DemoOrders builds a small order history against menu, placed relative to
// now so every stats window has data. Products missing from menu are skipped.
func DemoOrders(menu domain.Menu, now time.Time) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(demoOrders))
	for i, s := range demoOrders {
		c := cart.New()
		for _, id := range sortedKeys(s.items) {
			p, ok := menu.Product(id)
			if !ok {
				continue
			}
			if _, err := c.Add(p, s.items[id], defaultModifiers(p), ""); err != nil {
				return nil, fmt.Errorf("demo order %d: %w", i, err)
			}
		}
		if c.Empty() {
			continue
		}
		out = append(out, domain.Order{
			ID:            uuid.NewString(),
			DisplayID:     fmt.Sprintf("D%02d", i+1),
			OrderType:     s.orderType,
			Lines:         c.Lines(),
			Total:         c.Total(),
			PaymentMethod: s.payment,
			CreatedAt:     now.AddDate(0, 0, -s.daysAgo).Add(-time.Duration(i) * time.Minute),
		})
	}
	return out, nil
}

// Orders appends DemoOrders to repo when it holds no history yet, so running
// the seeder twice leaves one demo set.
func Orders(ctx context.Context, repo orderrepo.Repository, menu domain.Menu, now time.Time) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list orders: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	orders, err := DemoOrders(menu, now)
	if err != nil {
		return 0, err
	}
	for _, o := range orders {
		if err := repo.Append(ctx, o); err != nil {
			return 0, fmt.Errorf("append order %s: %w", o.DisplayID, err)
		}
	}
	return len(orders), nil
}

// defaultModifiers picks the first options needed to satisfy every group's
// minimum selection.
func defaultModifiers(p domain.Product) []domain.SelectedModifier {
	var out []domain.SelectedModifier
	for _, g := range p.ModifierGroups {
		for i := 0; i < g.MinSelection && i < len(g.Options); i++ {
			o := g.Options[i]
			out = append(out, domain.SelectedModifier{
				GroupID:         g.ID,
				OptionID:        o.ID,
				Name:            o.Name,
				Price:           o.Price,
				IntegrationCode: o.IntegrationCode,
			})
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
