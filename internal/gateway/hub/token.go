package hub

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/gateway"
)

// tokenCache holds the hub bearer token for the life of the process. There is
// no persistence and no teardown; a restart simply authenticates again.
type tokenCache struct {
	api       gateway.JSONClient
	partnerID string
	secret    string
	margin    time.Duration
	now       func() time.Time
	logger    *zap.Logger

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

type authRequest struct {
	PartnerID string `json:"partner_id"`
	Secret    string `json:"secret"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

const renewTimeout = 15 * time.Second

var errEmptyToken = errors.New("auth response carried no token")

// Token returns a cached token, renewing it once it is within margin of expiry.
// Concurrent renewals share one upstream call.
func (t *tokenCache) Token(ctx context.Context) (string, error) {
	if tok, ok := t.cached(); ok {
		return tok, nil
	}
	v, err, _ := t.group.Do("token", func() (any, error) {
		if tok, ok := t.cached(); ok {
			return tok, nil
		}
		// Waiters share this renewal; it outlives any one caller.
		renewCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), renewTimeout)
		defer cancel()
		return t.renew(renewCtx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token, e.g. after the hub answered 401.
func (t *tokenCache) Invalidate() {
	t.mu.Lock()
	t.token = ""
	t.expiresAt = time.Time{}
	t.mu.Unlock()
}

func (t *tokenCache) cached() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.token == "" {
		return "", false
	}
	if !t.now().Before(t.expiresAt.Add(-t.margin)) {
		return "", false
	}
	return t.token, true
}

func (t *tokenCache) renew(ctx context.Context) (string, error) {
	var out authResponse
	resp, err := t.api.Do(ctx, http.MethodPost, "/auth", "", authRequest{PartnerID: t.partnerID, Secret: t.secret}, &out)
	if err != nil {
		return "", &domain.GatewayError{Op: "auth", Err: err}
	}
	if !resp.OK() {
		t.logger.Warn("hub auth rejected", zap.Int("status", resp.Status))
		return "", &domain.GatewayError{Op: "auth", Status: resp.Status, Body: resp.Body}
	}
	if out.AccessToken == "" {
		return "", &domain.GatewayError{Op: "auth", Status: resp.Status, Err: errEmptyToken}
	}

	expiresAt := t.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	t.mu.Lock()
	t.token = out.AccessToken
	t.expiresAt = expiresAt
	t.mu.Unlock()
	t.logger.Info("hub token renewed", zap.Time("expires_at", expiresAt))
	return out.AccessToken, nil
}
