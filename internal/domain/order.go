package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeUnset   OrderType = ""
	OrderTypeDineIn  OrderType = "DINE_IN"
	OrderTypeTakeOut OrderType = "TAKE_OUT"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeOut
}

type PaymentMethod string

const (
	PaymentDebit       PaymentMethod = "debit"
	PaymentCredit      PaymentMethod = "credit"
	PaymentPix         PaymentMethod = "pix"
	PaymentCash        PaymentMethod = "cash"
	PaymentMealVoucher PaymentMethod = "meal_voucher"
	PaymentFoodVoucher PaymentMethod = "food_voucher"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentDebit, PaymentCredit, PaymentPix, PaymentCash, PaymentMealVoucher, PaymentFoodVoucher:
		return true
	}
	return false
}

// Order is a completed checkout as recorded in kiosk history.
type Order struct {
	ID            string          `json:"id"`
	DisplayID     string          `json:"displayId"`
	ExternalID    string          `json:"externalId,omitempty"`
	OrderType     OrderType       `json:"orderType"`
	Lines         []CartLine      `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
