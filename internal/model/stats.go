package model

import "github.com/shopspring/decimal"

// ShowSales is one row of the per-show sales rollup: total tickets sold
// and revenue for a single show, derived from its committed reservations.
type ShowSales struct {
	ShowID      uint64          `json:"show_id"`
	Title       string          `json:"title"`
	TicketsSold int64           `json:"tickets_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Stats aggregates the sales figures across all committed reservations.
// TotalRevenue is zero, not an error, when no reservations exist.
type Stats struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalReservations int64           `json:"total_reservations"`
	SalesByShow       []ShowSales     `json:"sales_by_show"`
}
