// Package pos talks to the POS integration that takes orders at POST /orders
// with a static bearer token.
package pos

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/gateway"
)

type Config struct {
	BaseURL string
	Token   string
	StoreID string
	Timeout time.Duration
}

// Client implements gateway.Gateway for the POS integration.
type Client struct {
	api     gateway.JSONClient
	token   string
	storeID string
	logger  *zap.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	switch {
	case strings.TrimSpace(cfg.BaseURL) == "":
		return nil, &domain.ConfigError{Key: "POS_BASE_URL"}
	case strings.TrimSpace(cfg.Token) == "":
		return nil, &domain.ConfigError{Key: "POS_TOKEN"}
	case strings.TrimSpace(cfg.StoreID) == "":
		return nil, &domain.ConfigError{Key: "STORE_ID"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:     gateway.NewJSONClient(cfg.BaseURL, cfg.Timeout),
		token:   cfg.Token,
		storeID: cfg.StoreID,
		logger:  logger.Named("pos"),
	}, nil
}

type orderRequest struct {
	StoreID   string           `json:"storeId"`
	Reference string           `json:"reference"`
	OrderType string           `json:"orderType"`
	Items     []orderItem      `json:"items"`
	Payment   orderPayment     `json:"payment"`
	Customer  *domain.Customer `json:"customer,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type orderItem struct {
	ProductID    string      `json:"productId"`
	Description  string      `json:"description"`
	Quantity     int         `json:"quantity"`
	UnitPrice    json.Number `json:"unitPrice"`
	Observations string      `json:"observations,omitempty"`
}

type orderPayment struct {
	Method string      `json:"method"`
	Amount json.Number `json:"amount"`
}

type orderResponse struct {
	Success    bool   `json:"success"`
	OrderID    string `json:"orderId"`
	ExternalID string `json:"externalId,omitempty"`
	Status     string `json:"status"`
}

func (c *Client) GetMenu(ctx context.Context) (domain.Menu, error) {
	var menu domain.Menu
	resp, err := c.api.Do(ctx, http.MethodGet, "/menu", c.token, nil, &menu)
	if err != nil {
		c.logger.Warn("menu fetch failed", zap.Error(err))
		return domain.Menu{}, &domain.FetchError{Err: err}
	}
	if !resp.OK() {
		c.logger.Warn("menu fetch rejected", zap.Int("status", resp.Status))
		return domain.Menu{}, &domain.FetchError{Status: resp.Status, Body: resp.Body}
	}
	return menu, nil
}

func (c *Client) CreateOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderReceipt, error) {
	payload := c.buildRequest(req)

	var out orderResponse
	resp, err := c.api.Do(ctx, http.MethodPost, "/orders", c.token, payload, &out)
	if err != nil {
		return gateway.OrderReceipt{}, &domain.GatewayError{Op: "create order", Status: resp.Status, Err: err}
	}
	if !resp.OK() {
		c.logger.Warn("order rejected", zap.String("reference", req.LocalID), zap.Int("status", resp.Status), zap.String("body", resp.Body))
		return gateway.OrderReceipt{}, &domain.GatewayError{Op: "create order", Status: resp.Status, Body: resp.Body}
	}
	if !out.Success {
		c.logger.Warn("order not accepted", zap.String("reference", req.LocalID), zap.String("status", out.Status))
		return gateway.OrderReceipt{}, &domain.GatewayError{Op: "create order", Status: resp.Status, Body: out.Status}
	}

	c.logger.Info("order accepted", zap.String("reference", req.LocalID), zap.String("order_id", out.OrderID))
	return gateway.OrderReceipt{
		OrderID:   out.OrderID,
		DisplayID: out.ExternalID,
		Status:    out.Status,
	}, nil
}

func (c *Client) buildRequest(req gateway.OrderRequest) orderRequest {
	items := make([]orderItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		items = append(items, orderItem{
			ProductID:    l.IntegrationCode,
			Description:  l.Description,
			Quantity:     l.Quantity,
			UnitPrice:    json.Number(l.UnitPrice.StringFixed(2)),
			Observations: observations(l),
		})
	}
	var customer *domain.Customer
	if req.Customer != (domain.Customer{}) {
		cust := req.Customer
		customer = &cust
	}
	return orderRequest{
		StoreID:   c.storeID,
		Reference: req.LocalID,
		OrderType: string(req.OrderType),
		Items:     items,
		Payment: orderPayment{
			Method: string(req.Payment.Method),
			Amount: json.Number(req.Payment.Amount.StringFixed(2)),
		},
		Customer:  customer,
		Notes:     req.Note,
		CreatedAt: req.CreatedAt.UTC(),
	}
}

// observations folds the chosen options into the free-text field, since this
// POS has no structured option list.
func observations(l gateway.OrderLine) string {
	parts := make([]string, 0, len(l.Options)+1)
	for _, o := range l.Options {
		parts = append(parts, "+ "+o.Name)
	}
	if l.Notes != "" {
		parts = append(parts, l.Notes)
	}
	return strings.Join(parts, "; ")
}
