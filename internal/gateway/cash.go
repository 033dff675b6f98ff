package gateway

import (
	"context"
	"net/http"

	"go-pos-terminal/internal/model"
)

type cashStatusResponse struct {
	Envelope
	Cash model.CashStatus `json:"cash"`
}

// CashStatus reports the backend-tracked till state.
func (c *Client) CashStatus(ctx context.Context) (*model.CashStatus, error) {
	var resp cashStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/cash/status", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Cash, nil
}

// OpenCash opens a register session with the given float amount.
func (c *Client) OpenCash(ctx context.Context, amount float64) error {
	return c.do(ctx, http.MethodPost, "/api/cash/open", nil, &model.CashOpenRequest{Amount: amount}, nil)
}

// CloseCash closes the register session for reconciliation.
func (c *Client) CloseCash(ctx context.Context, counted float64, note string) error {
	return c.do(ctx, http.MethodPost, "/api/cash/close", nil, &model.CashCloseRequest{CountedAmount: counted, Note: note}, nil)
}
