package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Category      string          `gorm:"type:varchar(100)" json:"category"`
	Brand         string          `gorm:"type:varchar(100)" json:"brand"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"sale_price"`
	Stock         int             `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	Unit          string          `gorm:"type:varchar(20)" json:"unit"`
}

// IsLowStock reports whether the product is under the given threshold.
func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock < threshold
}
