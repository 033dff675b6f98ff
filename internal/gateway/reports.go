package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go-pos-terminal/internal/model"
)

type salesReportResponse struct {
	Envelope
	Rows []model.SalesReportRow `json:"rows"`
}

// SalesReport returns daily sales aggregates for the inclusive date range.
func (c *Client) SalesReport(ctx context.Context, start, end time.Time) ([]model.SalesReportRow, error) {
	query := url.Values{}
	query.Set("start_date", start.Format("2006-01-02"))
	query.Set("end_date", end.Format("2006-01-02"))

	var resp salesReportResponse
	if err := c.do(ctx, http.MethodGet, "/api/reports/sales", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}
