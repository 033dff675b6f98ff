package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardStats is the overview block shown on the dashboard tab.
type DashboardStats struct {
	TotalProducts int64   `json:"total_products"`
	LowStockCount int64   `json:"low_stock_count"`
	TodaySales    int64   `json:"today_sales"`
	TodayRevenue  float64 `json:"today_revenue"`
}

// SalesReportRow is one aggregated day of the date-ranged sales report.
type SalesReportRow struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	SaleCount int64   `json:"sale_count"`
	Revenue   float64 `json:"revenue"`
}

// AuditEntry is a backend audit log record shown on the admin audit tab.
type AuditEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
