package models

import "time"

// Table status is owned by the order lifecycle (open/finalize/cancel) plus
// the administrative override endpoint. Line mutations never touch it.
type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    int       `gorm:"unique;not null" json:"number"`
	Capacity  int       `gorm:"not null;default:4" json:"capacity"`
	Status    string    `gorm:"type:varchar(20);not null;default:'free'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
