// Package hub talks to the menu/order hub, which authenticates partners with
// a token exchange and takes orders at POST /order.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/gateway"
)

const defaultTokenMargin = time.Minute

type Config struct {
	BaseURL     string
	PartnerID   string
	Secret      string
	StoreCode   string
	Timeout     time.Duration
	TokenMargin time.Duration
}

// Client implements gateway.Gateway for the hub.
type Client struct {
	api       gateway.JSONClient
	tokens    *tokenCache
	storeCode string
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	switch {
	case strings.TrimSpace(cfg.BaseURL) == "":
		return nil, &domain.ConfigError{Key: "HUB_BASE_URL"}
	case strings.TrimSpace(cfg.PartnerID) == "":
		return nil, &domain.ConfigError{Key: "HUB_PARTNER_ID"}
	case strings.TrimSpace(cfg.Secret) == "":
		return nil, &domain.ConfigError{Key: "HUB_SECRET"}
	case strings.TrimSpace(cfg.StoreCode) == "":
		return nil, &domain.ConfigError{Key: "HUB_STORE_CODE"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("hub")
	margin := cfg.TokenMargin
	if margin <= 0 {
		margin = defaultTokenMargin
	}
	api := gateway.NewJSONClient(cfg.BaseURL, cfg.Timeout)
	return &Client{
		api: api,
		tokens: &tokenCache{
			api:       api,
			partnerID: cfg.PartnerID,
			secret:    cfg.Secret,
			margin:    margin,
			now:       time.Now,
			logger:    logger,
		},
		storeCode: cfg.StoreCode,
		logger:    logger,
	}, nil
}

type orderEnvelope struct {
	OrderID   string       `json:"order_id"`
	DisplayID string       `json:"display_id"`
	CodStore  string       `json:"cod_store"`
	OrderType string       `json:"order_type"`
	CreatedAt time.Time    `json:"created_at"`
	Total     json.Number  `json:"total"`
	Items     []hubItem    `json:"items"`
	Payments  []hubPayment `json:"payments"`
	Customer  *hubCustomer `json:"customer,omitempty"`
	Notes     string       `json:"notes,omitempty"`
}

type hubItem struct {
	IntegrationCode string      `json:"integration_code"`
	Name            string      `json:"name"`
	Quantity        int         `json:"quantity"`
	UnitPrice       json.Number `json:"unit_price"`
	TotalPrice      json.Number `json:"total_price"`
	Observations    string      `json:"observations,omitempty"`
	Options         []hubOption `json:"options,omitempty"`
}

type hubOption struct {
	IntegrationCode string      `json:"integration_code,omitempty"`
	Name            string      `json:"name"`
	Quantity        int         `json:"quantity"`
	UnitPrice       json.Number `json:"unit_price"`
}

type hubPayment struct {
	Method string      `json:"method"`
	Value  json.Number `json:"value"`
}

type hubCustomer struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
}

type orderResponse struct {
	OrderID   string `json:"order_id"`
	DisplayID string `json:"display_id"`
	Status    string `json:"status"`
}

func (c *Client) GetMenu(ctx context.Context) (domain.Menu, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return domain.Menu{}, &domain.FetchError{Err: err}
	}
	var menu domain.Menu
	resp, err := c.api.Do(ctx, http.MethodGet, "/menu?"+url.Values{"cod_store": {c.storeCode}}.Encode(), token, nil, &menu)
	if err != nil {
		return domain.Menu{}, &domain.FetchError{Err: err}
	}
	if !resp.OK() {
		if resp.Status == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}
		c.logger.Warn("menu fetch rejected", zap.Int("status", resp.Status))
		return domain.Menu{}, &domain.FetchError{Status: resp.Status, Body: resp.Body}
	}
	return menu, nil
}

func (c *Client) CreateOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderReceipt, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return gateway.OrderReceipt{}, err
	}

	var out orderResponse
	resp, err := c.api.Do(ctx, http.MethodPost, "/order", token, c.envelope(req), &out)
	if err != nil {
		return gateway.OrderReceipt{}, &domain.GatewayError{Op: "create order", Err: err}
	}
	if !resp.OK() {
		if resp.Status == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}
		c.logger.Warn("order rejected", zap.String("order_id", req.LocalID), zap.Int("status", resp.Status), zap.String("body", resp.Body))
		return gateway.OrderReceipt{}, &domain.GatewayError{Op: "create order", Status: resp.Status, Body: resp.Body}
	}

	orderID := out.OrderID
	if orderID == "" {
		orderID = req.LocalID
	}
	return gateway.OrderReceipt{OrderID: orderID, DisplayID: out.DisplayID, Status: out.Status}, nil
}

func (c *Client) envelope(req gateway.OrderRequest) orderEnvelope {
	items := make([]hubItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		opts := make([]hubOption, 0, len(l.Options))
		for _, o := range l.Options {
			opts = append(opts, hubOption{
				IntegrationCode: o.IntegrationCode,
				Name:            o.Name,
				Quantity:        1,
				UnitPrice:       money(o.Price.StringFixed(2)),
			})
		}
		items = append(items, hubItem{
			IntegrationCode: l.IntegrationCode,
			Name:            l.Description,
			Quantity:        l.Quantity,
			UnitPrice:       money(l.UnitPrice.StringFixed(2)),
			TotalPrice:      money(l.Total().StringFixed(2)),
			Observations:    l.Notes,
			Options:         opts,
		})
	}

	var customer *hubCustomer
	if req.Customer != (domain.Customer{}) {
		customer = &hubCustomer{Name: req.Customer.Name, Phone: req.Customer.Phone, Document: req.Customer.Document}
	}

	return orderEnvelope{
		OrderID:   req.LocalID,
		DisplayID: shortID(req.LocalID),
		CodStore:  c.storeCode,
		OrderType: orderType(req.OrderType),
		CreatedAt: req.CreatedAt.UTC(),
		Total:     money(req.Payment.Amount.StringFixed(2)),
		Items:     items,
		Payments:  []hubPayment{{Method: strings.ToUpper(string(req.Payment.Method)), Value: money(req.Payment.Amount.StringFixed(2))}},
		Customer:  customer,
		Notes:     req.Note,
	}
}

func money(s string) json.Number {
	return json.Number(s)
}

func orderType(t domain.OrderType) string {
	if t == domain.OrderTypeTakeOut {
		return "TAKEOUT"
	}
	return "INDOOR"
}

// shortID proposes a display id the hub may replace with its own.
func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 6 {
		id = id[:6]
	}
	return strings.ToUpper(id)
}
