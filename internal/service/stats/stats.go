// Package stats derives dashboard figures from order history. Nothing is
// cached; every call recomputes from the full list.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"totem-kiosk/internal/domain"
)

type Stats struct {
	OrdersToday   int             `json:"ordersToday"`
	OrdersWeek    int             `json:"ordersWeek"`
	OrdersMonth   int             `json:"ordersMonth"`
	RevenueToday  decimal.Decimal `json:"revenueToday"`
	RevenueWeek   decimal.Decimal `json:"revenueWeek"`
	RevenueMonth  decimal.Decimal `json:"revenueMonth"`
	BestSeller    string          `json:"bestSeller,omitempty"`
	BestSellerQty int             `json:"bestSellerQuantity"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// Compute builds Stats as of now. Windows start at midnight of now's day in
// now's location, moved back 0, 7 and 30 days; the lower bound is inclusive.
func Compute(orders []domain.Order, now time.Time) Stats {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	week := today.AddDate(0, 0, -7)
	month := today.AddDate(0, 0, -30)

	s := Stats{
		RevenueToday:  decimal.Zero,
		RevenueWeek:   decimal.Zero,
		RevenueMonth:  decimal.Zero,
		AverageTicket: decimal.Zero,
		TotalRevenue:  decimal.Zero,
	}

	qty := map[string]int{}
	var names []string

	for _, o := range orders {
		s.TotalOrders++
		s.TotalRevenue = s.TotalRevenue.Add(o.Total)
		if !o.CreatedAt.Before(today) {
			s.OrdersToday++
			s.RevenueToday = s.RevenueToday.Add(o.Total)
		}
		if !o.CreatedAt.Before(week) {
			s.OrdersWeek++
			s.RevenueWeek = s.RevenueWeek.Add(o.Total)
		}
		if !o.CreatedAt.Before(month) {
			s.OrdersMonth++
			s.RevenueMonth = s.RevenueMonth.Add(o.Total)
		}
		for _, l := range o.Lines {
			if _, seen := qty[l.ProductName]; !seen {
				names = append(names, l.ProductName)
			}
			qty[l.ProductName] += l.Quantity
		}
	}

	// Ties keep the first name encountered.
	for _, name := range names {
		if qty[name] > s.BestSellerQty {
			s.BestSeller = name
			s.BestSellerQty = qty[name]
		}
	}

	if s.TotalOrders > 0 {
		s.AverageTicket = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.TotalOrders)))
	}
	return s
}
