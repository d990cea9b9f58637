package models

import "time"

// Product represents a product in the catalogue.
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Price        float64   `json:"price" gorm:"not null;check:price > 0"`
	Availability bool      `json:"availability" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// ProductFields holds the caller-supplied attributes of a product.
// Availability is ignored on create; new products are always available.
type ProductFields struct {
	Name         string
	Price        float64
	Availability bool
}
