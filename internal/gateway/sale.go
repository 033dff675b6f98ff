package gateway

import (
	"context"
	"net/http"

	"go-pos-terminal/internal/model"
)

type saleResponse struct {
	Envelope
	SaleID string `json:"sale_id"`
}

// SubmitSale posts a completed ticket. Returns the backend's sale id.
func (c *Client) SubmitSale(ctx context.Context, sale *model.Sale) (string, error) {
	var resp saleResponse
	if err := c.do(ctx, http.MethodPost, "/api/sale", nil, sale, &resp); err != nil {
		return "", err
	}
	return resp.SaleID, nil
}
