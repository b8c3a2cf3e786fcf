package session

import (
	"fmt"

	"totem-kiosk/internal/domain"
)

type Screen string

const (
	ScreenStart   Screen = "start"
	ScreenMenu    Screen = "menu"
	ScreenPayment Screen = "payment"
	ScreenSuccess Screen = "success"
	ScreenAdmin   Screen = "admin"
)

type Event string

const (
	EventSelectOrderType   Event = "select_order_type"
	EventGoToPayment       Event = "go_to_payment"
	EventBackToMenu        Event = "back_to_menu"
	EventCheckoutSucceeded Event = "checkout_succeeded"
	EventRestart           Event = "restart"
	EventOpenAdmin         Event = "open_admin"
	EventCloseAdmin        Event = "close_admin"
)

var transitions = map[Screen]map[Event]Screen{
	ScreenStart: {
		EventSelectOrderType: ScreenMenu,
		EventOpenAdmin:       ScreenAdmin,
		EventRestart:         ScreenStart,
	},
	ScreenMenu: {
		EventSelectOrderType: ScreenMenu,
		EventGoToPayment:     ScreenPayment,
		EventRestart:         ScreenStart,
	},
	ScreenPayment: {
		EventBackToMenu:        ScreenMenu,
		EventCheckoutSucceeded: ScreenSuccess,
		EventRestart:           ScreenStart,
	},
	ScreenSuccess: {
		EventRestart: ScreenStart,
	},
	ScreenAdmin: {
		EventCloseAdmin: ScreenStart,
	},
}

// Next returns the screen event leads to from s.
func Next(s Screen, e Event) (Screen, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, invalidTransition(s, string(e))
	}
	return next, nil
}

func invalidTransition(s Screen, action string) error {
	return fmt.Errorf("%w: %s on %s", domain.ErrInvalidTransition, action, s)
}
