package model

// CartTaxRate is the fixed cart-level KDV rate applied to the subtotal.
// Per-product KDV fields exist in the catalog but the register applies the
// standard rate to the whole ticket.
const CartTaxRate = 0.18

// CartLine is one row of the active cart. Name and price are snapshots taken
// when the line was created so a catalog refresh mid-sale does not reprice
// items already rung up.
type CartLine struct {
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price multiplied by quantity for this line.
func (l *CartLine) LineTotal() float64 {
	return l.Price * float64(l.Quantity)
}

// CartTotals holds the derived amounts for the active cart. Values keep full
// float precision; rounding to two decimals is a display concern.
type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}
