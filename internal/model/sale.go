package model

import "github.com/google/uuid"

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether the payment method is one the register accepts.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// SaleItem is a sold line inside a sale submission.
type SaleItem struct {
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Sale is the payload submitted to the backend on checkout. Reference is a
// terminal-generated id so a resubmitted ticket can be deduplicated
// server-side.
type Sale struct {
	Reference     string        `json:"reference"`
	Items         []SaleItem    `json:"items"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CashAmount    float64       `json:"cash_amount"`
	CardAmount    float64       `json:"card_amount"`
	ChangeAmount  float64       `json:"change_amount"`
	UserID        uuid.UUID     `json:"user_id"`
}

// NewSaleReference returns a fresh unique sale reference.
func NewSaleReference() string {
	return uuid.New().String()
}
