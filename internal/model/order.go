package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderAwaitingPayment OrderStatus = "Awaiting Payment"
	OrderRequested       OrderStatus = "Requested"
	OrderShipped         OrderStatus = "Shipped"
	OrderCompleted       OrderStatus = "Completed"
	OrderCancelled       OrderStatus = "Cancelled"
)

// OrderStatuses lists the statuses in workflow order.
var OrderStatuses = []OrderStatus{OrderAwaitingPayment, OrderRequested, OrderShipped, OrderCompleted, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

const PaymentCreditCard = "Credit Card"

// PaymentMethods accepted at the counter.
var PaymentMethods = []string{"Cash", "Pix", "Debit Card", PaymentCreditCard, "Bank Slip"}

// LineItem is a product line on an order or quote. Name and SalePrice are
// copied from the product when the line is added.
type LineItem struct {
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	SalePrice decimal.Decimal `json:"salePrice"`
}

// Subtotal is SalePrice times Quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.SalePrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the subtotals of items.
func ItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

type PaymentDetails struct {
	Installments int    `json:"installments"`
	Notes        string `json:"notes,omitempty"`
}

// Order is a sale. TotalValue is always derived from Items.
type Order struct {
	BaseModel
	ClientID       string                             `gorm:"type:varchar(64);index" json:"clientId"`
	CustomerName   string                             `gorm:"type:varchar(255)" json:"customerName"`
	Items          datatypes.JSONSlice[LineItem]      `json:"items"`
	TotalValue     decimal.Decimal                    `gorm:"type:decimal(12,2);default:0" json:"totalValue"`
	Status         OrderStatus                        `gorm:"type:varchar(30);index;not null" json:"status"`
	PaymentMethod  string                             `gorm:"type:varchar(40)" json:"paymentMethod"`
	PaymentDetails datatypes.JSONType[PaymentDetails] `json:"paymentDetails"`
	Notes          string                             `gorm:"type:text" json:"notes"`
	Date           time.Time                          `gorm:"column:placed_at;index" json:"date"`
}

// Recalculate derives TotalValue from Items.
func (o *Order) Recalculate() {
	o.TotalValue = ItemsTotal(o.Items)
}

type QuoteStatus string

const (
	QuotePending  QuoteStatus = "Pending"
	QuoteApproved QuoteStatus = "Approved"
	QuoteRejected QuoteStatus = "Rejected"
)

func (s QuoteStatus) Valid() bool {
	return s == QuotePending || s == QuoteApproved || s == QuoteRejected
}

// Quote has the shape of an Order but never affects stock.
type Quote struct {
	BaseModel
	ClientID      string                        `gorm:"type:varchar(64);index" json:"clientId"`
	CustomerName  string                        `gorm:"type:varchar(255);not null" json:"customerName"`
	CustomerEmail string                        `gorm:"type:varchar(255)" json:"customerEmail"`
	Items         datatypes.JSONSlice[LineItem] `json:"items"`
	TotalValue    decimal.Decimal               `gorm:"type:decimal(12,2);default:0" json:"totalValue"`
	Status        QuoteStatus                   `gorm:"type:varchar(20);index;not null" json:"status"`
	Notes         string                        `gorm:"type:text" json:"notes"`
	Date          time.Time                     `gorm:"column:placed_at;index" json:"date"`
}

func (q *Quote) Recalculate() {
	q.TotalValue = ItemsTotal(q.Items)
}
