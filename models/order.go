package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a sale in progress or completed, either tied to a table
// (TableID set, channel "table") or rung up directly at the till
// (TableID nil, channel "till").
//
// Total is a cached value and must always equal the sum of the line
// subtotals; every line mutation recomputes it in the same transaction.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TableID       *uint           `gorm:"index" json:"table_id,omitempty"`
	Table         *Table          `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	UserID        uint            `gorm:"not null" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status        string          `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Channel       string          `gorm:"type:varchar(10);not null;default:'table'" json:"channel"`
	PaymentMethod *string         `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	Lines         []OrderLine     `gorm:"foreignKey:OrderID" json:"lines"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}
