package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/events"
	"totem-kiosk/internal/gateway"
	"totem-kiosk/internal/gateway/fake"
	"totem-kiosk/internal/repository/kv"
	orderrepo "totem-kiosk/internal/repository/order"
	"totem-kiosk/internal/service/checkout"
	"totem-kiosk/internal/service/menu"
	"totem-kiosk/internal/service/session"
	"totem-kiosk/internal/service/stats"
	"totem-kiosk/internal/service/storeconfig"
	"totem-kiosk/internal/service/webhook"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error {
	return errors.New("broker down")
}

type testEnv struct {
	router  *gin.Engine
	gateway *fake.Gateway
	history *orderrepo.MemoryRepo
}

func newTestEnv(t *testing.T, gw gateway.Gateway, publisher events.Publisher) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fakeGW, _ := gw.(*fake.Gateway)
	history := orderrepo.NewMemory()
	menuSvc := menu.New(gw, time.Minute, nil)
	configSvc := storeconfig.New(kv.NewMemory(), nil)
	dispatcher := checkout.New(gw, history, publisher, nil)
	store := session.NewStore(time.Hour, session.AdminGate{Taps: 3, Window: time.Minute})

	router, err := buildRouter(zap.NewNop(), nil, Deps{
		Sessions: session.NewService(store, menuSvc, dispatcher, configSvc, nil),
		Menu:     menuSvc,
		Config:   configSvc,
		Orders:   history,
		Webhooks: webhook.New(publisher, nil),
	}, []string{"*"})
	require.NoError(t, err)

	return &testEnv{router: router, gateway: fakeGW, history: history}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decode[session.View](t, rec)
	require.NotEmpty(t, view.ID)
	assert.Equal(t, session.ScreenStart, view.Screen)
	return view.ID
}

func TestHealthAndReadyWithoutDB(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "memory")
}

func TestOrderFlow(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)
	id := env.newSession(t)
	base := "/sessions/" + id

	rec := env.do(t, http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[domain.Menu](t, rec).Products, 4)

	rec = env.do(t, http.MethodPost, base+"/order-type", orderTypeRequest{OrderType: domain.OrderTypeDineIn})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.ScreenMenu, decode[session.View](t, rec).Screen)

	rec = env.do(t, http.MethodPut, base+"/draft", draftRequest{ProductID: "x-burger"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Doneness is required.
	rec = env.do(t, http.MethodPost, base+"/draft/confirm", confirmRequest{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, opt := range []toggleRequest{{GroupID: "point", OptionID: "medium"}, {GroupID: "extras", OptionID: "bacon"}} {
		rec = env.do(t, http.MethodPost, base+"/draft/toggle", opt)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	view := decode[session.View](t, rec)
	require.NotNil(t, view.Draft)
	assert.True(t, view.Draft.UnitPrice.Equal(decimal.NewFromInt(14)))
	assert.True(t, view.Draft.Complete)

	rec = env.do(t, http.MethodPost, base+"/draft/confirm", confirmRequest{Quantity: 1, Observations: "no onion"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	confirmed := decode[confirmResponse](t, rec)
	assert.True(t, confirmed.Line.TotalPrice.Equal(decimal.NewFromInt(14)))
	assert.Nil(t, confirmed.Session.Draft)

	rec = env.do(t, http.MethodPost, base+"/navigate", navigateRequest{Event: session.EventGoToPayment})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.ScreenPayment, decode[session.View](t, rec).Screen)

	rec = env.do(t, http.MethodPost, base+"/checkout", session.CheckoutRequest{PaymentMethod: domain.PaymentCredit})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	done := decode[checkoutResponse](t, rec)
	assert.Equal(t, "001", done.OrderID)
	assert.Equal(t, session.ScreenSuccess, done.Session.Screen)
	assert.Empty(t, done.Session.Lines)
	assert.Equal(t, domain.OrderTypeUnset, done.Session.OrderType)
	assert.Len(t, env.gateway.Orders(), 1)

	rec = env.do(t, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[struct{ Orders []domain.Order }](t, rec)
	require.Len(t, history.Orders, 1)
	assert.True(t, history.Orders[0].Total.Equal(decimal.NewFromInt(14)))

	rec = env.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[stats.Stats](t, rec)
	assert.Equal(t, 1, s.TotalOrders)
	assert.Equal(t, 1, s.OrdersToday)
	assert.Equal(t, "X-Burger", s.BestSeller)
	assert.True(t, s.AverageTicket.Equal(decimal.NewFromInt(14)))
}

func TestCheckoutGatewayFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)
	id := env.newSession(t)
	base := "/sessions/" + id

	env.do(t, http.MethodPost, base+"/order-type", orderTypeRequest{OrderType: domain.OrderTypeTakeOut})
	env.do(t, http.MethodPut, base+"/draft", draftRequest{ProductID: "cola"})
	rec := env.do(t, http.MethodPost, base+"/draft/confirm", confirmRequest{Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	env.do(t, http.MethodPost, base+"/navigate", navigateRequest{Event: session.EventGoToPayment})

	env.gateway.FailNext(1, nil)
	rec = env.do(t, http.MethodPost, base+"/checkout", session.CheckoutRequest{PaymentMethod: domain.PaymentPix})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "gateway_error", decode[errorResponse](t, rec).Error)

	rec = env.do(t, http.MethodGet, base, nil)
	view := decode[session.View](t, rec)
	assert.Equal(t, session.ScreenPayment, view.Screen)
	assert.Equal(t, 2, view.ItemCount)
	assert.False(t, view.CheckoutInFlight)

	orders, err := env.history.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)

	rec = env.do(t, http.MethodPost, base+"/checkout", session.CheckoutRequest{PaymentMethod: domain.PaymentPix})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSessionErrors(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)

	rec := env.do(t, http.MethodGet, "/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorResponse](t, rec).Error)

	id := env.newSession(t)
	base := "/sessions/" + id

	rec = env.do(t, http.MethodPost, base+"/navigate", navigateRequest{Event: session.EventGoToPayment})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/order-type", orderTypeRequest{OrderType: "DELIVERY"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/order-type", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.do(t, http.MethodPost, base+"/order-type", orderTypeRequest{OrderType: domain.OrderTypeDineIn})
	rec = env.do(t, http.MethodPut, base+"/draft", draftRequest{ProductID: "pizza"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartLineEndpoints(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)
	base := "/sessions/" + env.newSession(t)

	env.do(t, http.MethodPost, base+"/order-type", orderTypeRequest{OrderType: domain.OrderTypeTakeOut})
	env.do(t, http.MethodPut, base+"/draft", draftRequest{ProductID: "water"})
	rec := env.do(t, http.MethodPost, base+"/draft/confirm", confirmRequest{Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	lineID := decode[confirmResponse](t, rec).Line.ID

	rec = env.do(t, http.MethodPatch, base+"/cart/lines/"+lineID, updateLineRequest{Delta: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[session.View](t, rec)
	assert.Equal(t, 3, view.ItemCount)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(12)))

	rec = env.do(t, http.MethodPatch, base+"/cart/lines/"+lineID, updateLineRequest{Delta: -3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[session.View](t, rec).Lines)

	env.do(t, http.MethodPut, base+"/draft", draftRequest{ProductID: "water"})
	rec = env.do(t, http.MethodDelete, base+"/draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[session.View](t, rec).Draft)

	rec = env.do(t, http.MethodDelete, base+"/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[session.View](t, rec)
	assert.Equal(t, session.ScreenStart, view.Screen)
	assert.Equal(t, domain.OrderTypeUnset, view.OrderType)
}

func TestAdminConfig(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)
	base := "/sessions/" + env.newSession(t)
	cfg := storeconfig.Defaults()
	cfg.StoreName = "Corner Burger"
	cfg.AdminPIN = ""

	rec := env.do(t, http.MethodPut, base+"/admin/config", cfg)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/admin/unlock", unlockRequest{PIN: "1234"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	tap := func() session.View {
		var view session.View
		for i := 0; i < 3; i++ {
			rec := env.do(t, http.MethodPost, base+"/admin/tap", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			view = decode[session.View](t, rec)
		}
		return view
	}
	require.True(t, tap().AdminArmed)

	rec = env.do(t, http.MethodPost, base+"/admin/unlock", unlockRequest{PIN: "0000"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	require.True(t, tap().AdminArmed)
	rec = env.do(t, http.MethodPost, base+"/admin/unlock", unlockRequest{PIN: "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.ScreenAdmin, decode[session.View](t, rec).Screen)

	rec = env.do(t, http.MethodPut, base+"/admin/config", cfg)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[domain.StoreConfig](t, rec)
	assert.Equal(t, "Corner Burger", saved.StoreName)
	assert.Empty(t, saved.AdminPIN)

	rec = env.do(t, http.MethodGet, "/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	public := decode[domain.StoreConfig](t, rec)
	assert.Equal(t, "Corner Burger", public.StoreName)
	assert.Empty(t, public.AdminPIN)

	cfg.AdminPIN = "12ab"
	rec = env.do(t, http.MethodPut, base+"/admin/config", cfg)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/navigate", navigateRequest{Event: session.EventCloseAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPut, base+"/admin/config", cfg)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderWebhook(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), failingPublisher{})

	rec := env.do(t, http.MethodPost, "/webhooks/orders", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/webhooks/orders", map[string]string{"event_type": "SHIPPED", "order_id": "o-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/webhooks/orders", map[string]string{"event_type": "CONFIRMED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Publishing fails; the callback is still acknowledged.
	rec = env.do(t, http.MethodPost, "/webhooks/orders", map[string]string{"event_type": "CONCLUDED", "order_id": "o-1", "display_id": "042"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnconfiguredGateway(t *testing.T) {
	gw := gateway.Unconfigured{Err: &domain.ConfigError{Key: "POS_TOKEN"}}
	env := newTestEnv(t, gw, nil)

	rec := env.do(t, http.MethodGet, "/menu", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "gateway_not_configured", decode[errorResponse](t, rec).Error)

	// Routes that do not need the gateway keep working.
	rec = env.do(t, http.MethodGet, "/config", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "http://kiosk.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "kiosk-7")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "kiosk-7", rec.Header().Get(requestIDHeader))

	rec = env.do(t, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestBuildRouterRequiresDeps(t *testing.T) {
	_, err := buildRouter(zap.NewNop(), nil, Deps{}, nil)
	assert.Error(t, err)
}

func TestAdminConfigPartialUpdate(t *testing.T) {
	env := newTestEnv(t, fake.New(fake.SeedMenu(), nil), nil)
	base := "/sessions/" + env.newSession(t)
	for i := 0; i < 3; i++ {
		env.do(t, http.MethodPost, base+"/admin/tap", nil)
	}
	rec := env.do(t, http.MethodPost, base+"/admin/unlock", unlockRequest{PIN: "1234"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, base+"/admin/config", `{"storeName":"Only Name"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/config", nil)
	got := decode[domain.StoreConfig](t, rec)
	defaults := storeconfig.Defaults()
	assert.Equal(t, "Only Name", got.StoreName)
	assert.Equal(t, defaults.Slogan, got.Slogan)
	assert.Equal(t, defaults.PrimaryColor, got.PrimaryColor)
	assert.Equal(t, defaults.WelcomeMessage, got.WelcomeMessage)

	// The PIN was not part of the body and still unlocks.
	env.do(t, http.MethodPost, base+"/navigate", navigateRequest{Event: session.EventCloseAdmin})
	for i := 0; i < 3; i++ {
		env.do(t, http.MethodPost, base+"/admin/tap", nil)
	}
	rec = env.do(t, http.MethodPost, base+"/admin/unlock", unlockRequest{PIN: "1234"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
