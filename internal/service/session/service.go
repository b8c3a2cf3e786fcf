package session

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/service/checkout"
)

// ProductSource resolves menu products.
type ProductSource interface {
	Product(ctx context.Context, id string) (domain.Product, error)
}

// Checkouter submits a checkout attempt.
type Checkouter interface {
	Complete(ctx context.Context, a checkout.Attempt) (checkout.Result, error)
}

// ConfigSource provides the current store configuration.
type ConfigSource interface {
	Load(ctx context.Context) domain.StoreConfig
}

// CheckoutRequest is what the payment screen submits.
type CheckoutRequest struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Note          string               `json:"note"`
	Customer      domain.Customer      `json:"customer"`
}

// Service routes kiosk actions to sessions.
type Service struct {
	store    *Store
	products ProductSource
	checkout Checkouter
	config   ConfigSource
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(store *Store, products ProductSource, co Checkouter, config ConfigSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		products: products,
		checkout: co,
		config:   config,
		now:      time.Now,
		logger:   logger.Named("session"),
	}
}

func (s *Service) Create() View {
	sess := s.store.Create()
	s.logger.Debug("session created", zap.String("session_id", sess.ID))
	return sess.View()
}

func (s *Service) Get(id string) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.View(), nil
}

func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}

func (s *Service) SelectOrderType(id string, t domain.OrderType) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.SelectOrderType(t)
}

func (s *Service) Navigate(id string, e Event) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.Navigate(e)
}

// OpenDraft looks the product up in the menu and opens it for configuration.
func (s *Service) OpenDraft(ctx context.Context, id, productID string) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	if strings.TrimSpace(productID) == "" {
		return View{}, domain.NewValidationError("productId", "product required")
	}
	product, err := s.products.Product(ctx, productID)
	if err != nil {
		return View{}, err
	}
	return sess.OpenDraft(product)
}

func (s *Service) ToggleModifier(id, groupID, optionID string) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.ToggleModifier(groupID, optionID)
}

func (s *Service) ConfirmDraft(id string, quantity int, observations string) (domain.CartLine, View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return domain.CartLine{}, View{}, err
	}
	return sess.ConfirmDraft(quantity, observations)
}

func (s *Service) DiscardDraft(id string) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.DiscardDraft(), nil
}

func (s *Service) ClearCart(id string) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.Clear()
}

func (s *Service) RemoveLine(id, lineID string) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.RemoveLine(lineID)
}

func (s *Service) UpdateLine(id, lineID string, delta int) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.UpdateLine(lineID, delta)
}

// Checkout submits the session's cart. The POS call runs without holding the
// session lock; the session stays marked in flight until it returns.
func (s *Service) Checkout(ctx context.Context, id string, req CheckoutRequest) (checkout.Result, View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return checkout.Result{}, View{}, err
	}
	attempt, epoch, err := sess.beginCheckout(req.PaymentMethod, strings.TrimSpace(req.Note), req.Customer)
	if err != nil {
		return checkout.Result{}, View{}, err
	}

	res, err := s.checkout.Complete(ctx, attempt)
	view := sess.finishCheckout(epoch, res, err)
	if err != nil {
		return checkout.Result{}, view, err
	}
	return res, view, nil
}

func (s *Service) AdminTap(id string) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return sess.RegisterAdminTap(s.now())
}

func (s *Service) UnlockAdmin(ctx context.Context, id, pin string) (View, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	view, err := sess.UnlockAdmin(pin, s.config.Load(ctx).AdminPIN)
	if err != nil {
		s.logger.Warn("admin unlock rejected", zap.String("session_id", id))
		return View{}, err
	}
	s.logger.Info("admin unlocked", zap.String("session_id", id))
	return view, nil
}

// RequireAdmin fails unless the session has unlocked the admin panel.
func (s *Service) RequireAdmin(id string) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if !sess.AdminUnlocked() {
		return domain.ErrAdminLocked
	}
	return nil
}
