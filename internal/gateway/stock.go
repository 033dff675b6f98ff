package gateway

import (
	"context"
	"net/http"
)

type stockUpdateRequest struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

// UpdateStock sets a product's absolute stock count.
func (c *Client) UpdateStock(ctx context.Context, barcode string, quantity int) error {
	return c.do(ctx, http.MethodPost, "/api/stock/update", nil, &stockUpdateRequest{Barcode: barcode, Quantity: quantity}, nil)
}

// AddStock increments a product's stock by delta (goods received).
func (c *Client) AddStock(ctx context.Context, barcode string, delta int) error {
	return c.do(ctx, http.MethodPost, "/api/stock/add", nil, &stockUpdateRequest{Barcode: barcode, Quantity: delta}, nil)
}
