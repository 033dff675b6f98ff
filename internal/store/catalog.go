package store

import (
	"context"

	"go-pos-terminal/internal/bus"
	"go-pos-terminal/internal/model"
)

// LoadProducts fetches the catalog and replaces the local snapshot wholesale.
func (s *Store) LoadProducts(ctx context.Context) error {
	products, err := s.gw.FetchProducts(ctx)
	if err != nil {
		return err
	}
	s.ReplaceCatalog(products)
	return nil
}

// ReplaceCatalog swaps in a new snapshot. Existing cart lines keep their
// price/name snapshots; only future stock checks see the new data.
func (s *Store) ReplaceCatalog(products []model.Product) {
	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.Barcode] = i
	}

	s.mu.Lock()
	s.catalog = products
	s.index = index
	s.mu.Unlock()

	s.events.Publish(bus.TopicCatalogRefreshed)
}

// Products returns a copy of the catalog snapshot.
func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Product looks up one catalog entry by barcode.
func (s *Store) Product(barcode string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[barcode]
	if !ok {
		return model.Product{}, false
	}
	return s.catalog[i], true
}

// ApplyStockUpdate patches one product's stock in place. Used by the live
// stock listener; unknown barcodes are ignored until the next full refresh.
func (s *Store) ApplyStockUpdate(barcode string, quantity int) {
	s.mu.Lock()
	i, ok := s.index[barcode]
	if ok {
		s.catalog[i].Quantity = quantity
	}
	s.mu.Unlock()

	if ok {
		s.events.Publish(bus.TopicCatalogRefreshed)
	}
}
