package ledger

import (
	"time"

	"bodega-pos/internal/model"

	"github.com/shopspring/decimal"
)

// Transaction is the kind-independent view of a sale or purchase header.
type Transaction struct {
	ID                uint                `json:"id"`
	Kind              Kind                `json:"kind"`
	CounterpartyID    *uint               `json:"counterparty_id,omitempty"`
	CounterpartyName  string              `json:"counterparty_name,omitempty"`
	CounterpartyTaxID string              `json:"counterparty_tax_id,omitempty"`
	OperatorID        string              `json:"operator_id"`
	OperatorFirstName string              `json:"operator_first_name,omitempty"`
	OperatorLastName  string              `json:"operator_last_name,omitempty"`
	Date              time.Time           `json:"date"`
	Total             decimal.Decimal     `json:"total"`
	PaymentMethod     model.PaymentMethod `json:"payment_method,omitempty"`
	Lines             []Line              `json:"lines,omitempty"`

	// StockAfter holds the stock each product was left with, when known.
	StockAfter map[uint]int `json:"stock_after,omitempty"`
}

type Line struct {
	ID          uint            `json:"id"`
	HeaderID    uint            `json:"header_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// LinesTotal sums the line subtotals.
func LinesTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// LineInput is one requested line of a new transaction.
type LineInput struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateRequest carries everything needed to record a transaction.
// PaymentMethod applies to sales only.
type CreateRequest struct {
	CounterpartyID *uint               `json:"counterparty_id" validate:"omitempty,gt=0"`
	OperatorID     string              `json:"operator_id" validate:"required,uuid_required"`
	Lines          []LineInput         `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod  model.PaymentMethod `json:"payment_method" validate:"omitempty,payment_method"`
}
