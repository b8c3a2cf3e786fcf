package order

import (
	"context"
	"sync"

	"totem-kiosk/internal/domain"
)

// MemoryRepo keeps history in process memory. It is used when no database is
// configured and in tests.
type MemoryRepo struct {
	mu     sync.RWMutex
	orders []domain.Order
	ids    map[string]struct{}
}

func NewMemory() *MemoryRepo {
	return &MemoryRepo{ids: make(map[string]struct{})}
}

func (r *MemoryRepo) Append(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[order.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.ids[order.ID] = struct{}{}
	r.orders = append(r.orders, cloneOrder(order))
	return nil
}

// List returns orders oldest first.
func (r *MemoryRepo) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func cloneOrder(o domain.Order) domain.Order {
	lines := make([]domain.CartLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, l.Clone())
	}
	o.Lines = lines
	return o
}
