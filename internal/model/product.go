package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	SKU          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name         string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Description  string          `gorm:"type:text" json:"description"`
	CurrentStock int             `gorm:"default:0" json:"currentStock" validate:"gte=0"`
	MinStock     int             `gorm:"default:0" json:"minStock" validate:"gte=0"`
	MaxStock     int             `gorm:"default:0" json:"maxStock" validate:"gte=0"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"costPrice" validate:"gte=0"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"salePrice" validate:"gte=0"`
	ExpiryDate   *time.Time      `json:"expiryDate,omitempty"`
	ImageURL     string          `gorm:"type:text" json:"imageUrl"`
	Category     string          `gorm:"type:varchar(120);index" json:"category"`
	Supplier     string          `gorm:"type:varchar(255)" json:"supplier"`
	Location     string          `gorm:"type:varchar(120)" json:"location"`
}

// StockValue is current stock priced at the sale price.
func (p *Product) StockValue() decimal.Decimal {
	return p.SalePrice.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}

// LowStock reports whether stock has reached the configured minimum.
func (p *Product) LowStock() bool {
	return p.CurrentStock <= p.MinStock
}

type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"name" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
}
