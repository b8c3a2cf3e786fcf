package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"totem-kiosk/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Append(ctx context.Context, order domain.Order) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("encode lines: %w", err)
	}
	const q = `
INSERT INTO orders (id, display_id, external_id, order_type, payment_method, note, total, lines, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::jsonb, $9)
`
	_, err = r.pool.Exec(ctx, q,
		order.ID,
		order.DisplayID,
		order.ExternalID,
		string(order.OrderType),
		string(order.PaymentMethod),
		order.Note,
		order.Total.String(),
		lines,
		order.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Order, error) {
	const q = `
SELECT id::text, display_id, external_id, order_type, payment_method, note, total::text, lines, created_at
FROM orders
ORDER BY seq
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var (
			o         domain.Order
			orderType string
			method    string
			total     string
			lines     []byte
		)
		if err := rows.Scan(&o.ID, &o.DisplayID, &o.ExternalID, &orderType, &method, &o.Note, &total, &lines, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.OrderType = domain.OrderType(orderType)
		o.PaymentMethod = domain.PaymentMethod(method)
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("order %s total: %w", o.ID, err)
		}
		if err := json.Unmarshal(lines, &o.Lines); err != nil {
			return nil, fmt.Errorf("order %s lines: %w", o.ID, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
