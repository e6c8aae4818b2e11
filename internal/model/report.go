package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report aggregates completed sales over a date range. It is computed on
// demand and never stored.
type Report struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	SalesCount    int             `json:"salesCount"`
	AverageTicket decimal.Decimal `json:"averageTicket"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	TotalProfit   decimal.Decimal `json:"totalProfit"`
	SalesByDay    []DaySales      `json:"salesByDay"`
	TopProducts   []ProductRank   `json:"topProducts"`
	TopClients    []ClientRank    `json:"topClients"`
	StockValue    decimal.Decimal `json:"stockValue"`
	LowStockCount int             `json:"lowStockCount"`
}

// DaySales is the revenue of one calendar day, Date formatted as YYYY-MM-DD.
type DaySales struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type ProductRank struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type ClientRank struct {
	ClientID string          `json:"clientId"`
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
	Orders   int             `json:"orders"`
}
