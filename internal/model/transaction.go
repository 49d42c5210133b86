package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentWalletA      PaymentMethod = "WALLET_A"
	PaymentWalletB      PaymentMethod = "WALLET_B"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentWalletA, PaymentWalletB, PaymentBankTransfer}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

// IsDigital is true for every method except cash
func (m PaymentMethod) IsDigital() bool {
	return m.Valid() && m != PaymentCash
}

// SaleHeader is the parent record of a sale. Total is a snapshot of the lines.
type SaleHeader struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CustomerID    *uint           `gorm:"index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	OperatorID    string          `gorm:"type:varchar(36);not null;index" json:"operator_id"`
	Operator      *UserProfile    `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	Lines         []SaleLine      `gorm:"foreignKey:SaleHeaderID" json:"lines,omitempty"`
}

type SaleLine struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SaleHeaderID uint            `gorm:"not null;index" json:"sale_header_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	Product      *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
}

// PurchaseHeader is the parent record of a purchase. Purchases carry no payment method.
type PurchaseHeader struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	SupplierID *uint           `gorm:"index" json:"supplier_id"`
	Supplier   *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	OperatorID string          `gorm:"type:varchar(36);not null;index" json:"operator_id"`
	Operator   *UserProfile    `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
	Date       time.Time       `gorm:"not null;index" json:"date"`
	Total      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Lines      []PurchaseLine  `gorm:"foreignKey:PurchaseHeaderID" json:"lines,omitempty"`
}

type PurchaseLine struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	PurchaseHeaderID uint            `gorm:"not null;index" json:"purchase_header_id"`
	ProductID        uint            `gorm:"not null;index" json:"product_id"`
	Product          *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Subtotal         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
}
