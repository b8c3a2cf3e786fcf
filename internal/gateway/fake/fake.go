// Package fake is an in-process POS used for demos, kiosk development and
// tests. It accepts every order unless a failure has been injected.
package fake

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/gateway"
	"totem-kiosk/internal/importer"
)

// Gateway implements gateway.Gateway in memory.
type Gateway struct {
	mu      sync.Mutex
	menu    domain.Menu
	seq     int
	orders  []gateway.OrderRequest
	failErr error
	failN   int
	logger  *zap.Logger
}

// New serves menu. A zero menu is replaced by SeedMenu.
func New(menu domain.Menu, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(menu.Products) == 0 {
		menu = SeedMenu()
	}
	return &Gateway{menu: menu, logger: logger.Named("fake-pos")}
}

// FromCSV builds a Gateway whose menu is imported from path, or the seed
// menu when path is empty.
func FromCSV(ctx context.Context, path string, logger *zap.Logger) (*Gateway, error) {
	if path == "" {
		return New(domain.Menu{}, logger), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open menu csv: %w", err)
	}
	defer f.Close()

	menu, err := importer.NewCSVImporter(f).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("import menu csv: %w", err)
	}
	return New(menu, logger), nil
}

func (g *Gateway) GetMenu(ctx context.Context) (domain.Menu, error) {
	if err := ctx.Err(); err != nil {
		return domain.Menu{}, &domain.FetchError{Err: err}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.menu, nil
}

func (g *Gateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderReceipt, error) {
	if err := ctx.Err(); err != nil {
		return gateway.OrderReceipt{}, &domain.GatewayError{Op: "create order", Err: err}
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failN > 0 {
		g.failN--
		g.logger.Warn("rejecting order (injected)", zap.String("order_id", req.LocalID))
		return gateway.OrderReceipt{}, g.failErr
	}

	g.seq++
	g.orders = append(g.orders, req)
	display := fmt.Sprintf("%03d", g.seq)
	g.logger.Info("order accepted", zap.String("order_id", req.LocalID), zap.String("display_id", display))
	return gateway.OrderReceipt{OrderID: "fake-" + req.LocalID, DisplayID: display, Status: "RECEIVED"}, nil
}

// FailNext makes the next n orders fail with err. A nil err fails with a
// generic GatewayError.
func (g *Gateway) FailNext(n int, err error) {
	if err == nil {
		err = &domain.GatewayError{Op: "create order", Status: http.StatusServiceUnavailable, Body: "injected failure"}
	}
	g.mu.Lock()
	g.failN = n
	g.failErr = err
	g.mu.Unlock()
}

// Orders returns every accepted order request.
func (g *Gateway) Orders() []gateway.OrderRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.OrderRequest(nil), g.orders...)
}

// SeedMenu is a small fast-food menu covering single-choice, capped
// multi-choice and unconstrained products.
func SeedMenu() domain.Menu {
	money := decimal.RequireFromString
	return domain.Menu{
		Categories: []domain.Category{
			{ID: "burgers", Name: "Burgers", Position: 1},
			{ID: "combos", Name: "Combos", Position: 2},
			{ID: "drinks", Name: "Drinks", Position: 3},
		},
		Products: []domain.Product{
			{
				ID:              "x-burger",
				Name:            "X-Burger",
				Description:     "Beef patty, cheese and house sauce",
				Price:           money("12.00"),
				CategoryID:      "burgers",
				IntegrationCode: "PDV-100",
				ModifierGroups: []domain.ModifierGroup{
					{
						ID: "point", Title: "Doneness", MinSelection: 1, MaxSelection: 1,
						Options: []domain.ModifierOption{
							{ID: "medium", Name: "Medium", Price: decimal.Zero},
							{ID: "well-done", Name: "Well done", Price: decimal.Zero},
						},
					},
					{
						ID: "extras", Title: "Extras", MaxSelection: 2,
						Options: []domain.ModifierOption{
							{ID: "bacon", Name: "Bacon", Price: money("2.00"), IntegrationCode: "PDV-901"},
							{ID: "egg", Name: "Egg", Price: money("1.50"), IntegrationCode: "PDV-902"},
							{ID: "cheddar", Name: "Cheddar", Price: money("2.50"), IntegrationCode: "PDV-903"},
						},
					},
				},
			},
			{
				ID:              "combo-classic",
				Name:            "Classic Combo",
				Description:     "X-Burger, fries and a drink",
				Price:           money("24.90"),
				CategoryID:      "combos",
				IntegrationCode: "PDV-200",
				ModifierGroups: []domain.ModifierGroup{
					{
						ID: "drink", Title: "Drink", MinSelection: 1, MaxSelection: 1,
						Options: []domain.ModifierOption{
							{ID: "cola", Name: "Cola", Price: decimal.Zero, IntegrationCode: "PDV-301"},
							{ID: "juice", Name: "Orange juice", Price: money("3.00"), IntegrationCode: "PDV-302"},
						},
					},
					{
						ID: "fries", Title: "Fries size", MaxSelection: 1,
						Options: []domain.ModifierOption{
							{ID: "large", Name: "Large fries", Price: money("4.00"), IntegrationCode: "PDV-401"},
						},
					},
				},
			},
			{ID: "cola", Name: "Cola", Price: money("6.50"), CategoryID: "drinks", IntegrationCode: "PDV-301"},
			{ID: "water", Name: "Water", Price: money("4.00"), CategoryID: "drinks"},
		},
	}
}
