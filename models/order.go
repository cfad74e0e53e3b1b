package models

import (
	"fmt"
	"time"
)

const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Order is the checkout record created once a pairing is consumed. The
// kitchen ticket lifecycle lives elsewhere; this stops at creation.
type Order struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	RestaurantID uint          `gorm:"not null;index" json:"restaurant_id"`
	TableNo      string        `gorm:"type:varchar(120);not null" json:"table_no"`
	CustomerName string        `gorm:"type:varchar(220);not null" json:"customer_name"`
	OrderType    string        `gorm:"type:varchar(20);not null;default:'paired'" json:"order_type"`
	Status       string        `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TotalAmount  float64       `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Pairings     []PairedOrder `gorm:"foreignKey:OrderID" json:"pairings,omitempty"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

// PairedTableLabel renders the combined table label used on counter
// dashboards, e.g. "Table T1 + Table T2".
func PairedTableLabel(originTable, joinerTable string) string {
	return fmt.Sprintf("Table %s + Table %s", originTable, joinerTable)
}
