package store

import (
	"context"

	"go-pos-terminal/internal/model"
	"go-pos-terminal/pkg/validator"
)

// StockForm is the stock mutation input from the inventory screens.
type StockForm struct {
	Barcode  string `validate:"required,barcode"`
	Quantity int    `validate:"gte=0"`
}

type receiveForm struct {
	Barcode string `validate:"required,barcode"`
	Delta   int    `validate:"gt=0"`
}

// CreateProduct registers a new catalog entry and refreshes the snapshot.
func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	if p.KDV == 0 {
		p.KDV = model.DefaultKDV
	}
	if p.MinStockLevel == 0 {
		p.MinStockLevel = model.DefaultMinStockLevel
	}
	if err := validator.FirstError(p); err != nil {
		return err
	}
	if err := s.gw.CreateProduct(ctx, p); err != nil {
		return err
	}
	return s.LoadProducts(ctx)
}

// SetStock sets a product's absolute stock count and refreshes the snapshot.
func (s *Store) SetStock(ctx context.Context, barcode string, quantity int) error {
	if err := validator.FirstError(&StockForm{Barcode: barcode, Quantity: quantity}); err != nil {
		return err
	}
	if err := s.gw.UpdateStock(ctx, barcode, quantity); err != nil {
		return err
	}
	return s.LoadProducts(ctx)
}

// ReceiveStock books received goods onto a product and refreshes the
// snapshot.
func (s *Store) ReceiveStock(ctx context.Context, barcode string, delta int) error {
	if err := validator.FirstError(&receiveForm{Barcode: barcode, Delta: delta}); err != nil {
		return err
	}
	if err := s.gw.AddStock(ctx, barcode, delta); err != nil {
		return err
	}
	return s.LoadProducts(ctx)
}
