package gateway

import (
	"context"
	"net/http"

	"go-pos-terminal/internal/model"
)

type productListResponse struct {
	Envelope
	Products []model.Product `json:"products"`
}

// FetchProducts returns the full catalog snapshot.
func (c *Client) FetchProducts(ctx context.Context) ([]model.Product, error) {
	var resp productListResponse
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// CreateProduct registers a new catalog entry.
func (c *Client) CreateProduct(ctx context.Context, p *model.Product) error {
	return c.do(ctx, http.MethodPost, "/api/products", nil, p, nil)
}
