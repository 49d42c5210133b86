package model

// Customer is the counterparty of a sale
type Customer struct {
	BaseModel
	Name       string `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	NationalID string `gorm:"type:varchar(20)" json:"national_id"` // DNI
	Phone      string `gorm:"type:varchar(20)" json:"phone"`
	Email      string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
}

// Supplier is the counterparty of a purchase
type Supplier struct {
	BaseModel
	Name  string `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	TaxID string `gorm:"type:varchar(20)" json:"tax_id"` // RUC
	Phone string `gorm:"type:varchar(20)" json:"phone"`
	Email string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
}
