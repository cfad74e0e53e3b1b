package models

import "time"

const (
	PairingStatusPending   = "PENDING"
	PairingStatusCompleted = "COMPLETED"
	PairingStatusCancelled = "CANCELLED"
)

// PairedOrder records one successful join against a session, carrying the
// combined price of both halves. The composite unique index on
// (session_id, joiner_table_no) is the hard duplicate-join guard; the
// coordinator also checks under the row lock before inserting.
type PairedOrder struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	SessionID          uint             `gorm:"not null;uniqueIndex:idx_session_joiner" json:"session_id"`
	Session            HalfOrderSession `gorm:"foreignKey:SessionID" json:"-"`
	RestaurantID       uint             `gorm:"not null;index" json:"restaurant_id"`
	MenuItemID         uint             `gorm:"not null" json:"menu_item_id"`
	MenuItemName       string           `gorm:"type:varchar(200);not null" json:"menu_item_name"`
	TotalPrice         float64          `gorm:"type:decimal(10,2);not null" json:"total_price"`
	JoinerTableNo      string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_session_joiner" json:"joiner_table_no"`
	JoinerCustomerName string           `gorm:"type:varchar(100);not null" json:"joiner_customer_name"`
	JoinerMobile       string           `gorm:"type:varchar(20);not null" json:"joiner_mobile"`
	Status             string           `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	OrderID            *uint            `gorm:"index" json:"order_id,omitempty"`
	CreatedAt          time.Time        `gorm:"not null" json:"created_at"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
}

func (PairedOrder) TableName() string { return "paired_orders" }
