package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/service/checkout"
	"totem-kiosk/internal/service/session"
	"totem-kiosk/internal/service/storeconfig"
	"totem-kiosk/internal/service/webhook"
)

// SessionService drives the per-kiosk ordering flow.
type SessionService interface {
	Create() session.View
	Get(id string) (session.View, error)
	Delete(id string) error
	SelectOrderType(id string, t domain.OrderType) (session.View, error)
	Navigate(id string, e session.Event) (session.View, error)
	OpenDraft(ctx context.Context, id, productID string) (session.View, error)
	ToggleModifier(id, groupID, optionID string) (session.View, error)
	ConfirmDraft(id string, quantity int, observations string) (domain.CartLine, session.View, error)
	DiscardDraft(id string) (session.View, error)
	ClearCart(id string) (session.View, error)
	RemoveLine(id, lineID string) (session.View, error)
	UpdateLine(id, lineID string, delta int) (session.View, error)
	Checkout(ctx context.Context, id string, req session.CheckoutRequest) (checkout.Result, session.View, error)
	AdminTap(id string) (session.View, error)
	UnlockAdmin(ctx context.Context, id, pin string) (session.View, error)
	RequireAdmin(id string) error
}

type MenuService interface {
	Get(ctx context.Context) (domain.Menu, error)
}

type ConfigService interface {
	Public(ctx context.Context) domain.StoreConfig
	Update(ctx context.Context, p storeconfig.Patch) (domain.StoreConfig, error)
}

type OrderHistory interface {
	List(ctx context.Context) ([]domain.Order, error)
}

type WebhookHandler interface {
	Handle(ctx context.Context, e webhook.OrderEvent)
}

// Deps groups the services the router exposes.
type Deps struct {
	Sessions SessionService
	Menu     MenuService
	Config   ConfigService
	Orders   OrderHistory
	Webhooks WebhookHandler
	Now      func() time.Time
}

func (d Deps) validate() error {
	switch {
	case d.Sessions == nil:
		return errors.New("httpserver: session service required")
	case d.Menu == nil:
		return errors.New("httpserver: menu service required")
	case d.Config == nil:
		return errors.New("httpserver: config service required")
	case d.Orders == nil:
		return errors.New("httpserver: order history required")
	case d.Webhooks == nil:
		return errors.New("httpserver: webhook handler required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger), cors.New(corsConfig(corsOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps}

	router.GET("/menu", h.getMenu)
	router.GET("/config", h.getConfig)
	router.GET("/orders", h.listOrders)
	router.GET("/stats", h.getStats)
	router.POST("/webhooks/orders", h.orderWebhook)

	router.POST("/sessions", h.createSession)
	s := router.Group("/sessions/:sessionId")
	s.GET("", h.getSession)
	s.DELETE("", h.deleteSession)
	s.POST("/order-type", h.selectOrderType)
	s.POST("/navigate", h.navigate)

	s.PUT("/draft", h.openDraft)
	s.POST("/draft/toggle", h.toggleModifier)
	s.POST("/draft/confirm", h.confirmDraft)
	s.DELETE("/draft", h.discardDraft)

	s.DELETE("/cart", h.clearCart)
	s.DELETE("/cart/lines/:lineId", h.removeLine)
	s.PATCH("/cart/lines/:lineId", h.updateLine)

	s.POST("/checkout", h.checkout)

	s.POST("/admin/tap", h.adminTap)
	s.POST("/admin/unlock", h.adminUnlock)
	s.PUT("/admin/config", h.saveConfig)

	router.NoRoute(func(c *gin.Context) {
		writeError(c, domain.ErrNotFound)
	})

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
