package gateway

import (
	"context"
	"net/http"

	"go-pos-terminal/internal/model"
)

type dashboardResponse struct {
	Envelope
	Stats model.DashboardStats `json:"stats"`
}

// Dashboard returns the overview statistics block.
func (c *Client) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var resp dashboardResponse
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}
