// Package wsclient subscribes to the backend's stock broadcast channel and
// patches the catalog cache as other terminals sell or receive goods.
package wsclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fasthttp/websocket"
	"go.uber.org/zap"
)

// StockUpdate is the broadcast payload for a stock change.
type StockUpdate struct {
	Type     string `json:"type"` // "stock_update"
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
	Message  string `json:"message,omitempty"`
}

// CatalogPatcher receives stock patches; the store implements it.
type CatalogPatcher interface {
	ApplyStockUpdate(barcode string, quantity int)
}

type Listener struct {
	url     string
	catalog CatalogPatcher
	log     *zap.SugaredLogger
}

func NewListener(url string, catalog CatalogPatcher) *Listener {
	return &Listener{url: url, catalog: catalog, log: zap.S()}
}

// Run connects and consumes stock updates until ctx is done, redialing on
// any connection failure.
func (l *Listener) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.consume(ctx); err != nil && ctx.Err() == nil {
			l.log.Warnw("stock listener disconnected", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (l *Listener) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.Dial(l.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage when the terminal shuts down.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var update StockUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			l.log.Debugw("ignoring malformed broadcast", "err", err)
			continue
		}
		if update.Type != "stock_update" {
			continue
		}
		l.catalog.ApplyStockUpdate(update.Barcode, update.Quantity)
	}
}
