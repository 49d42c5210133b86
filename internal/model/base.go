package model

import (
	"time"
)

// BaseModel handles integer identity and the audit trail columns
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Audit User Tracking
	CreatedBy string `gorm:"type:varchar(64)" json:"created_by,omitempty"`
	UpdatedBy string `gorm:"type:varchar(64)" json:"updated_by,omitempty"`
}

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&UserProfile{},
		&Customer{},
		&Supplier{},
		&Product{},
		&SaleHeader{},
		&SaleLine{},
		&PurchaseHeader{},
		&PurchaseLine{},
	}
}
