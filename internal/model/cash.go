package model

import "time"

// CashStatus mirrors the backend's view of the physical till. The terminal
// never derives this locally; it is queried and mutated via the API only.
type CashStatus struct {
	Open          bool       `json:"open"`
	OpenedBy      string     `json:"opened_by,omitempty"`
	OpenedAt      *time.Time `json:"opened_at,omitempty"`
	OpeningAmount float64    `json:"opening_amount"`
	CurrentAmount float64    `json:"current_amount"`
}

type CashOpenRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
}

type CashCloseRequest struct {
	CountedAmount float64 `json:"counted_amount" validate:"gte=0"`
	Note          string  `json:"note"`
}
