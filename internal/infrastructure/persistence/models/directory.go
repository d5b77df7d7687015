package models

// Read models over tables owned by the client-directory and catalog
// services. The engine only looks names and labels up, it never writes here.

// BorrowerModel is the read model for the client directory.
type BorrowerModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	Document string `gorm:"type:varchar(50)"`
	Phone    string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (BorrowerModel) TableName() string {
	return "borrowers"
}

// PaymentMethodModel is the read model for the payment-method catalog.
type PaymentMethodModel struct {
	BaseModel
	Label  string `gorm:"type:varchar(100);not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}
