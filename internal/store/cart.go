package store

import (
	"context"

	"go-pos-terminal/internal/bus"
	"go-pos-terminal/internal/model"
)

// lineIndex returns the cart position for barcode, or -1. Caller holds the
// lock.
func (s *Store) lineIndex(barcode string) int {
	for i := range s.cart {
		if s.cart[i].Barcode == barcode {
			return i
		}
	}
	return -1
}

// AddToCart rings up one unit of the product. A second add for the same
// barcode accumulates on the existing line; the line quantity never exceeds
// the catalog's stock on hand.
func (s *Store) AddToCart(barcode string) error {
	s.mu.Lock()
	idx, ok := s.index[barcode]
	if !ok {
		s.mu.Unlock()
		return ErrProductNotFound
	}
	product := s.catalog[idx]
	if product.Quantity == 0 {
		s.mu.Unlock()
		return ErrOutOfStock
	}

	if li := s.lineIndex(barcode); li >= 0 {
		if s.cart[li].Quantity+1 > product.Quantity {
			s.mu.Unlock()
			return ErrInsufficientStock
		}
		s.cart[li].Quantity++
	} else {
		s.cart = append(s.cart, model.CartLine{
			Barcode:  product.Barcode,
			Name:     product.Name,
			Price:    product.Price,
			Quantity: 1,
		})
	}
	s.mu.Unlock()

	s.events.Publish(bus.TopicCartChanged)
	return nil
}

// RemoveFromCart drops the line for barcode. Removing an absent line is a
// no-op, not an error.
func (s *Store) RemoveFromCart(barcode string) {
	s.mu.Lock()
	li := s.lineIndex(barcode)
	if li < 0 {
		s.mu.Unlock()
		return
	}
	s.cart = append(s.cart[:li], s.cart[li+1:]...)
	s.mu.Unlock()

	s.events.Publish(bus.TopicCartChanged)
}

// UpdateQuantity applies a signed delta to a line's quantity. Driving the
// quantity to zero or below removes the line; any resulting quantity above
// the stock on hand fails and leaves the line untouched, even when a live
// stock update already pushed the line past the ceiling. Absent lines are a
// no-op.
func (s *Store) UpdateQuantity(barcode string, delta int) error {
	s.mu.Lock()
	li := s.lineIndex(barcode)
	if li < 0 {
		s.mu.Unlock()
		return nil
	}

	newQty := s.cart[li].Quantity + delta
	if newQty <= 0 {
		s.cart = append(s.cart[:li], s.cart[li+1:]...)
		s.mu.Unlock()
		s.events.Publish(bus.TopicCartChanged)
		return nil
	}

	idx, ok := s.index[barcode]
	if !ok {
		s.mu.Unlock()
		return ErrProductNotFound
	}
	if newQty > s.catalog[idx].Quantity {
		s.mu.Unlock()
		return ErrInsufficientStock
	}

	s.cart[li].Quantity = newQty
	s.mu.Unlock()

	s.events.Publish(bus.TopicCartChanged)
	return nil
}

// Cart returns a copy of the active cart lines in ring-up order.
func (s *Store) Cart() []model.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CartLine, len(s.cart))
	copy(out, s.cart)
	return out
}

// Totals computes subtotal, tax and total from the current cart. Values keep
// full precision; only the display rounds.
func (s *Store) Totals() model.CartTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalsLocked()
}

func (s *Store) totalsLocked() model.CartTotals {
	var subtotal float64
	for i := range s.cart {
		subtotal += s.cart[i].LineTotal()
	}
	tax := subtotal * model.CartTaxRate
	return model.CartTotals{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}

// ChangeAmount is tendered minus total. May be negative; the display decides
// how to present a shortfall.
func (s *Store) ChangeAmount(cashTendered float64) float64 {
	return cashTendered - s.Totals().Total
}

// Checkout submits the ticket. The cart survives any failure untouched and
// nothing is retried; on success the cart clears and the catalog refreshes.
func (s *Store) Checkout(ctx context.Context, method model.PaymentMethod, cashTendered float64) (string, error) {
	s.mu.RLock()
	if s.session == nil {
		s.mu.RUnlock()
		return "", ErrNoSession
	}
	if len(s.cart) == 0 {
		s.mu.RUnlock()
		return "", ErrEmptyCart
	}
	if !method.Valid() {
		s.mu.RUnlock()
		return "", ErrInvalidPayment
	}

	totals := s.totalsLocked()
	if method == model.PaymentCash && cashTendered < totals.Total {
		s.mu.RUnlock()
		return "", ErrInsufficientTender
	}

	sale := &model.Sale{
		Reference:     model.NewSaleReference(),
		Items:         make([]model.SaleItem, len(s.cart)),
		Total:         totals.Total,
		PaymentMethod: method,
		UserID:        s.session.User.ID,
	}
	for i, line := range s.cart {
		sale.Items[i] = model.SaleItem{Barcode: line.Barcode, Name: line.Name, Price: line.Price, Quantity: line.Quantity}
	}
	switch method {
	case model.PaymentCash:
		sale.CashAmount = cashTendered
		sale.ChangeAmount = cashTendered - totals.Total
	case model.PaymentCard:
		sale.CardAmount = totals.Total
	}
	s.mu.RUnlock()

	saleID, err := s.gw.SubmitSale(ctx, sale)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cart = nil
	s.mu.Unlock()
	s.events.Publish(bus.TopicCartChanged)

	if err := s.LoadProducts(ctx); err != nil {
		// The sale is committed server-side; stale stock corrects on the
		// next successful load.
		s.log.Warnw("catalog refresh after sale failed", "err", err)
	}

	return saleID, nil
}
