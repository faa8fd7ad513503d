package models

import "github.com/shopspring/decimal"

// Service is a row of the local services table. MobileNumber is the natural key
// shared with the upstream service API.
type Service struct {
	ID           int     `gorm:"primary_key" json:"id"`
	MobileNumber string  `gorm:"size:32;index" json:"mobile_number"`
	Network      *string `gorm:"size:50" json:"network"`
}

func (Service) TableName() string {
	return "services"
}

type ServiceProduct struct {
	ID        int                 `gorm:"primary_key" json:"id"`
	ServiceId int                 `gorm:"index;not null" json:"service_id"`
	ProductId int                 `gorm:"index" json:"product_id"`
	Amount    decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"amount"`
}

func (ServiceProduct) TableName() string {
	return "service_products"
}

// Product is the lookup table used to resolve a service product's product id
// into the label the upstream API reports as the product type.
type Product struct {
	ID    int    `gorm:"primary_key" json:"id"`
	Label string `gorm:"size:100;index" json:"label"`
}

func (Product) TableName() string {
	return "products"
}
