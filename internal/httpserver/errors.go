package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"totem-kiosk/internal/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps err to a status code and writes the error envelope. The
// error is also attached to the context for the request log.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := mapError(err)
	c.AbortWithStatusJSON(status, body)
}

func mapError(err error) (int, errorResponse) {
	var (
		validation *domain.ValidationError
		config     *domain.ConfigError
		gw         *domain.GatewayError
		fetch      *domain.FetchError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: validation.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: "resource not found"}
	case errors.Is(err, domain.ErrCheckoutInFlight):
		return http.StatusConflict, errorResponse{Error: "checkout_in_flight", Message: err.Error()}
	case errors.Is(err, domain.ErrStaleCheckout):
		return http.StatusConflict, errorResponse{Error: "stale_checkout", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, errorResponse{Error: "invalid_transition", Message: err.Error()}
	case errors.Is(err, domain.ErrAdminLocked):
		return http.StatusForbidden, errorResponse{Error: "admin_locked", Message: err.Error()}
	case errors.As(err, &config):
		return http.StatusServiceUnavailable, errorResponse{Error: "gateway_not_configured", Message: "the store integration is not configured"}
	case errors.As(err, &gw):
		return http.StatusBadGateway, errorResponse{Error: "gateway_error", Message: gw.UserMessage()}
	case errors.As(err, &fetch):
		return http.StatusBadGateway, errorResponse{Error: "menu_unavailable", Message: "the menu could not be loaded"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal server error"}
	}
}
