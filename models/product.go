package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is catalog reference data. Price is the current list price;
// order lines capture their own copy at add time, so changing it here
// never touches open or closed orders. Stock is advisory only.
type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID *uint           `gorm:"index" json:"category_id,omitempty"`
	Category   *Category       `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Stock      int             `gorm:"default:0" json:"stock"`
	Active     bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}
