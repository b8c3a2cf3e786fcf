package order

import (
	"context"

	"totem-kiosk/internal/domain"
)

// Repository is the append-only order history. Records are never updated or
// deleted once appended.
type Repository interface {
	Append(ctx context.Context, order domain.Order) error
	List(ctx context.Context) ([]domain.Order, error)
}
