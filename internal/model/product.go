package model

// Default values applied by the backend when a product is created without
// an explicit KDV rate or minimum stock level.
const (
	DefaultKDV           = 18.0
	DefaultMinStockLevel = 5
)

// Product is the terminal's cached copy of a backend catalog entry. The
// backend owns the authoritative record; this copy is refreshed after every
// mutating call and patched by live stock updates.
type Product struct {
	Barcode       string  `json:"barcode" validate:"required,barcode"`
	Name          string  `json:"name" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	Quantity      int     `json:"quantity" validate:"gte=0"` // stock on hand
	KDV           float64 `json:"kdv"`                       // VAT rate percent
	MinStockLevel int     `json:"min_stock_level"`
}

// LowStock reports whether the product is at or below its minimum stock level.
func (p *Product) LowStock() bool {
	return p.Quantity <= p.MinStockLevel
}
