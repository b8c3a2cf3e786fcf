package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/service/session"
	"totem-kiosk/internal/service/stats"
	"totem-kiosk/internal/service/storeconfig"
	"totem-kiosk/internal/service/webhook"
)

type handlers struct {
	deps Deps
}

type orderTypeRequest struct {
	OrderType domain.OrderType `json:"orderType"`
}

type navigateRequest struct {
	Event session.Event `json:"event"`
}

type draftRequest struct {
	ProductID string `json:"productId"`
}

type toggleRequest struct {
	GroupID  string `json:"groupId"`
	OptionID string `json:"optionId"`
}

type confirmRequest struct {
	Quantity     int    `json:"quantity"`
	Observations string `json:"observations"`
}

type updateLineRequest struct {
	Delta int `json:"delta"`
}

type unlockRequest struct {
	PIN string `json:"pin"`
}

type confirmResponse struct {
	Line    domain.CartLine `json:"line"`
	Session session.View    `json:"session"`
}

type checkoutResponse struct {
	OrderID string       `json:"orderId"`
	Order   domain.Order `json:"order"`
	Session session.View `json:"session"`
}

func (h *handlers) getMenu(c *gin.Context) {
	menu, err := h.deps.Menu.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (h *handlers) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Config.Public(c.Request.Context()))
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.deps.Orders.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) getStats(c *gin.Context) {
	orders, err := h.deps.Orders.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats.Compute(orders, h.deps.Now()))
}

// orderWebhook acknowledges every well-formed callback; processing failures
// never reach the POS.
func (h *handlers) orderWebhook(c *gin.Context) {
	var event webhook.OrderEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		writeError(c, domain.NewValidationError("body", "invalid JSON payload"))
		return
	}
	if err := event.Validate(); err != nil {
		writeError(c, err)
		return
	}
	h.deps.Webhooks.Handle(c.Request.Context(), event)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (h *handlers) createSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.deps.Sessions.Create())
}

func (h *handlers) getSession(c *gin.Context) {
	h.respond(c)(h.deps.Sessions.Get(c.Param("sessionId")))
}

func (h *handlers) deleteSession(c *gin.Context) {
	if err := h.deps.Sessions.Delete(c.Param("sessionId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) selectOrderType(c *gin.Context) {
	var req orderTypeRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.deps.Sessions.SelectOrderType(c.Param("sessionId"), req.OrderType))
}

func (h *handlers) navigate(c *gin.Context) {
	var req navigateRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.deps.Sessions.Navigate(c.Param("sessionId"), req.Event))
}

func (h *handlers) openDraft(c *gin.Context) {
	var req draftRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.deps.Sessions.OpenDraft(c.Request.Context(), c.Param("sessionId"), req.ProductID))
}

func (h *handlers) toggleModifier(c *gin.Context) {
	var req toggleRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.deps.Sessions.ToggleModifier(c.Param("sessionId"), req.GroupID, req.OptionID))
}

func (h *handlers) confirmDraft(c *gin.Context) {
	var req confirmRequest
	if !bind(c, &req) {
		return
	}
	line, view, err := h.deps.Sessions.ConfirmDraft(c.Param("sessionId"), req.Quantity, req.Observations)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, confirmResponse{Line: line, Session: view})
}

func (h *handlers) discardDraft(c *gin.Context) {
	h.respond(c)(h.deps.Sessions.DiscardDraft(c.Param("sessionId")))
}

func (h *handlers) clearCart(c *gin.Context) {
	h.respond(c)(h.deps.Sessions.ClearCart(c.Param("sessionId")))
}

func (h *handlers) removeLine(c *gin.Context) {
	h.respond(c)(h.deps.Sessions.RemoveLine(c.Param("sessionId"), c.Param("lineId")))
}

func (h *handlers) updateLine(c *gin.Context) {
	var req updateLineRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.deps.Sessions.UpdateLine(c.Param("sessionId"), c.Param("lineId"), req.Delta))
}

func (h *handlers) checkout(c *gin.Context) {
	var req session.CheckoutRequest
	if !bind(c, &req) {
		return
	}
	res, view, err := h.deps.Sessions.Checkout(c.Request.Context(), c.Param("sessionId"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkoutResponse{OrderID: res.OrderID, Order: res.Order, Session: view})
}

func (h *handlers) adminTap(c *gin.Context) {
	h.respond(c)(h.deps.Sessions.AdminTap(c.Param("sessionId")))
}

func (h *handlers) adminUnlock(c *gin.Context) {
	var req unlockRequest
	if !bind(c, &req) {
		return
	}
	h.respond(c)(h.deps.Sessions.UnlockAdmin(c.Request.Context(), c.Param("sessionId"), req.PIN))
}

func (h *handlers) saveConfig(c *gin.Context) {
	if err := h.deps.Sessions.RequireAdmin(c.Param("sessionId")); err != nil {
		writeError(c, err)
		return
	}
	var req storeconfig.Patch
	if !bind(c, &req) {
		return
	}
	saved, err := h.deps.Config.Update(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved.Public())
}

// respond writes a session view or the mapped error.
func (h *handlers) respond(c *gin.Context) func(session.View, error) {
	return func(view session.View, err error) {
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, domain.NewValidationError("body", "invalid JSON payload"))
		return false
	}
	return true
}
