// Package session owns the state of each kiosk screen: order type, cart,
// product draft, navigation and the admin gate.
package session

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/service/cart"
	"totem-kiosk/internal/service/checkout"
)

// AdminGate sets how the hidden admin gesture is recognised.
type AdminGate struct {
	Taps   int
	Window time.Duration
}

// Session is one kiosk's state. Every method is safe for concurrent use.
type Session struct {
	ID string

	mu        sync.Mutex
	orderType domain.OrderType
	cart      *cart.Cart
	draft     *cart.Selection
	screen    Screen
	lastOrder string

	// epoch changes whenever the customer discards the current order context
	// (new order type, clear, restart). A checkout only commits if it is
	// unchanged when the POS answers.
	epoch    uint64
	inFlight bool

	gate     AdminGate
	taps     int
	lastTap  time.Time
	armed    bool
	unlocked bool
}

func newSession(id string, gate AdminGate) *Session {
	return &Session{ID: id, cart: cart.New(), screen: ScreenStart, gate: gate}
}

// View is a point-in-time copy of a session for rendering.
type View struct {
	ID               string            `json:"id"`
	Screen           Screen            `json:"screen"`
	OrderType        domain.OrderType  `json:"orderType"`
	Lines            []domain.CartLine `json:"lines"`
	Total            decimal.Decimal   `json:"total"`
	ItemCount        int               `json:"itemCount"`
	Draft            *DraftView        `json:"draft,omitempty"`
	CheckoutInFlight bool              `json:"checkoutInFlight"`
	AdminArmed       bool              `json:"adminArmed"`
	AdminUnlocked    bool              `json:"adminUnlocked"`
	LastOrderID      string            `json:"lastOrderId,omitempty"`
}

type DraftView struct {
	Product   domain.Product            `json:"product"`
	Selected  []domain.SelectedModifier `json:"selected"`
	UnitPrice decimal.Decimal           `json:"unitPrice"`
	Complete  bool                      `json:"complete"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:               s.ID,
		Screen:           s.screen,
		OrderType:        s.orderType,
		Lines:            s.cart.Lines(),
		Total:            s.cart.Total(),
		ItemCount:        s.cart.ItemCount(),
		CheckoutInFlight: s.inFlight,
		AdminArmed:       s.armed,
		AdminUnlocked:    s.unlocked,
		LastOrderID:      s.lastOrder,
	}
	if s.draft != nil {
		p := s.draft.Product()
		selected := s.draft.Selected()
		unit := p.Price
		for _, m := range selected {
			unit = unit.Add(m.Price)
		}
		v.Draft = &DraftView{
			Product:   p,
			Selected:  selected,
			UnitPrice: unit,
			Complete:  s.draft.Validate() == nil,
		}
	}
	return v
}

// SelectOrderType empties the cart and records t. Changing the order type
// always starts a new order.
func (s *Session) SelectOrderType(t domain.OrderType) (View, error) {
	if !t.Valid() {
		return View{}, domain.NewValidationError("orderType", "must be DINE_IN or TAKE_OUT")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Next(s.screen, EventSelectOrderType)
	if err != nil {
		return View{}, err
	}
	s.clearLocked()
	s.orderType = t
	s.screen = next
	return s.viewLocked(), nil
}

// Clear discards the order in progress, resets the order type and returns to
// the start screen.
func (s *Session) Clear() (View, error) {
	return s.Navigate(EventRestart)
}

// Navigate applies a customer navigation event. Events with side effects of
// their own (order type, checkout, admin unlock) have dedicated methods.
func (s *Session) Navigate(e Event) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e {
	case EventGoToPayment, EventBackToMenu, EventRestart, EventCloseAdmin:
	default:
		return View{}, invalidTransition(s.screen, string(e))
	}
	if s.inFlight && e != EventRestart {
		return View{}, domain.ErrCheckoutInFlight
	}

	next, err := Next(s.screen, e)
	if err != nil {
		return View{}, err
	}
	switch e {
	case EventGoToPayment:
		if s.cart.Empty() {
			return View{}, domain.NewValidationError("cart", "cart is empty")
		}
		s.draft = nil
	case EventRestart:
		s.clearLocked()
		s.lastOrder = ""
	case EventCloseAdmin:
		s.lockAdminLocked()
	}
	s.screen = next
	return s.viewLocked(), nil
}

// OpenDraft starts configuring product, replacing any open draft.
func (s *Session) OpenDraft(product domain.Product) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return View{}, err
	}
	s.draft = cart.NewSelection(product)
	return s.viewLocked(), nil
}

func (s *Session) ToggleModifier(groupID, optionID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return View{}, err
	}
	if s.draft == nil {
		return View{}, domain.ErrNotFound
	}
	if err := s.draft.Toggle(groupID, optionID); err != nil {
		return View{}, err
	}
	return s.viewLocked(), nil
}

// ConfirmDraft adds the configured product to the cart as a new line.
func (s *Session) ConfirmDraft(quantity int, observations string) (domain.CartLine, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return domain.CartLine{}, View{}, err
	}
	if s.draft == nil {
		return domain.CartLine{}, View{}, domain.ErrNotFound
	}
	if err := s.draft.Validate(); err != nil {
		return domain.CartLine{}, View{}, err
	}
	line, err := s.cart.Add(s.draft.Product(), quantity, s.draft.Selected(), observations)
	if err != nil {
		return domain.CartLine{}, View{}, err
	}
	s.draft = nil
	return line, s.viewLocked(), nil
}

func (s *Session) DiscardDraft() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = nil
	return s.viewLocked()
}

func (s *Session) RemoveLine(lineID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return View{}, domain.ErrCheckoutInFlight
	}
	s.cart.Remove(lineID)
	return s.viewLocked(), nil
}

func (s *Session) UpdateLine(lineID string, delta int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return View{}, domain.ErrCheckoutInFlight
	}
	s.cart.UpdateQuantity(lineID, delta)
	return s.viewLocked(), nil
}

// beginCheckout snapshots the cart for submission and marks the session busy.
// The returned Attempt's Current reports whether the session still holds the
// same order.
func (s *Session) beginCheckout(payment domain.PaymentMethod, note string, customer domain.Customer) (checkout.Attempt, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return checkout.Attempt{}, 0, domain.ErrCheckoutInFlight
	}
	if s.screen != ScreenPayment {
		return checkout.Attempt{}, 0, invalidTransition(s.screen, "checkout")
	}
	a := checkout.Attempt{
		OrderType: s.orderType,
		Lines:     s.cart.Lines(),
		Payment:   payment,
		Note:      note,
		Customer:  customer,
	}
	if err := checkout.Validate(a); err != nil {
		return checkout.Attempt{}, 0, err
	}
	epoch := s.epoch
	a.Current = func() bool { return s.currentEpoch() == epoch }
	s.inFlight = true
	return a, epoch, nil
}

// finishCheckout releases the in-flight guard and, for a successful checkout
// of the still-current order, empties the session and shows the receipt.
func (s *Session) finishCheckout(epoch uint64, res checkout.Result, err error) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err == nil && epoch == s.epoch {
		if next, terr := Next(s.screen, EventCheckoutSucceeded); terr == nil {
			s.screen = next
		}
		s.clearLocked()
		s.lastOrder = res.OrderID
	}
	return s.viewLocked()
}

func (s *Session) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// RegisterAdminTap counts one tap on the hidden admin target. Enough quick
// taps arm the PIN prompt.
func (s *Session) RegisterAdminTap(now time.Time) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != ScreenStart {
		return View{}, invalidTransition(s.screen, "admin tap")
	}
	if !s.lastTap.IsZero() && now.Sub(s.lastTap) > s.gate.Window {
		s.taps = 0
	}
	s.taps++
	s.lastTap = now
	if s.taps >= s.gate.Taps {
		s.armed = true
	}
	return s.viewLocked(), nil
}

// UnlockAdmin checks pin against want once the gate is armed. A wrong PIN
// disarms the gate.
func (s *Session) UnlockAdmin(pin, want string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return View{}, domain.ErrAdminLocked
	}
	if want == "" || subtle.ConstantTimeCompare([]byte(pin), []byte(want)) != 1 {
		s.lockAdminLocked()
		return View{}, domain.ErrAdminLocked
	}
	next, err := Next(s.screen, EventOpenAdmin)
	if err != nil {
		return View{}, err
	}
	s.screen = next
	s.armed = false
	s.taps = 0
	s.unlocked = true
	return s.viewLocked(), nil
}

func (s *Session) AdminUnlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

func (s *Session) editableLocked() error {
	if s.inFlight {
		return domain.ErrCheckoutInFlight
	}
	if s.screen != ScreenMenu {
		return invalidTransition(s.screen, "cart edit")
	}
	return nil
}

func (s *Session) clearLocked() {
	s.cart.Clear()
	s.draft = nil
	s.orderType = domain.OrderTypeUnset
	s.epoch++
}

func (s *Session) lockAdminLocked() {
	s.taps = 0
	s.lastTap = time.Time{}
	s.armed = false
	s.unlocked = false
}
