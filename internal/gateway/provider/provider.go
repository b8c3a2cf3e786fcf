// Package provider builds the gateway selected by configuration.
package provider

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"totem-kiosk/internal/config"
	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/gateway"
	"totem-kiosk/internal/gateway/fake"
	"totem-kiosk/internal/gateway/hub"
	"totem-kiosk/internal/gateway/pos"
)

// New returns the configured gateway. Missing credentials yield a
// gateway.Unconfigured that fails every call with the ConfigError, so the
// service still starts; other errors are returned.
func New(ctx context.Context, cfg config.GatewayConfig, menuCSV string, logger *zap.Logger) (gateway.Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		gw  gateway.Gateway
		err error
	)
	switch cfg.Mode {
	case config.GatewayFake, "":
		g, err := fake.FromCSV(ctx, menuCSV, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("gateway ready", zap.String("mode", config.GatewayFake))
		return g, nil
	case config.GatewayPOS:
		gw, err = pos.New(pos.Config{
			BaseURL: cfg.POSBaseURL,
			Token:   cfg.POSToken,
			StoreID: cfg.StoreID,
			Timeout: cfg.Timeout,
		}, logger)
	case config.GatewayHub:
		gw, err = hub.New(hub.Config{
			BaseURL:     cfg.HubBaseURL,
			PartnerID:   cfg.HubPartnerID,
			Secret:      cfg.HubSecret,
			StoreCode:   cfg.HubStoreCode,
			Timeout:     cfg.Timeout,
			TokenMargin: cfg.HubTokenMargin,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown gateway mode %q", cfg.Mode)
	}

	var cfgErr *domain.ConfigError
	if errors.As(err, &cfgErr) {
		logger.Error("gateway not configured", zap.String("mode", cfg.Mode), zap.String("missing", cfgErr.Key))
		return gateway.Unconfigured{Err: cfgErr}, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("gateway ready", zap.String("mode", cfg.Mode))
	return gw, nil
}
