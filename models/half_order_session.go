package models

import "time"

// Half-order session statuses. ACTIVE is the only non-terminal state:
// JOINED, EXPIRED and CANCELLED admit no further transition.
const (
	SessionStatusActive    = "ACTIVE"
	SessionStatusJoined    = "JOINED"
	SessionStatusExpired   = "EXPIRED"
	SessionStatusCancelled = "CANCELLED"
)

// HalfOrderSession is one table's advertisement that it wants to share
// half of a dish. Menu item name and price are snapshotted at creation so
// later menu edits do not rewrite history. All timestamps are UTC.
type HalfOrderSession struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	RestaurantID         uint       `gorm:"not null;index" json:"restaurant_id"`
	TableNo              string     `gorm:"type:varchar(50);not null" json:"table_no"`
	CustomerName         string     `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerMobile       string     `gorm:"type:varchar(20);not null" json:"customer_mobile"`
	MenuItemID           uint       `gorm:"not null;index" json:"menu_item_id"`
	MenuItemName         string     `gorm:"type:varchar(200);not null" json:"menu_item_name"`
	Status               string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CreatedAt            time.Time  `gorm:"not null" json:"created_at"`
	ExpiresAt            time.Time  `gorm:"not null" json:"expires_at"`
	JoinedByTableNo      *string    `gorm:"type:varchar(50)" json:"joined_by_table_no,omitempty"`
	JoinedByCustomerName *string    `gorm:"type:varchar(100)" json:"joined_by_customer_name,omitempty"`
	JoinedAt             *time.Time `json:"joined_at,omitempty"`
}

func (HalfOrderSession) TableName() string { return "half_order_sessions" }

// Live reports whether the session can still be joined at the given
// instant. Status alone is never authoritative: a row can sit at ACTIVE
// past its expiry until the sweeper reaches it.
func (s *HalfOrderSession) Live(now time.Time) bool {
	return s.Status == SessionStatusActive && s.ExpiresAt.After(now)
}

// Terminal reports whether the session has reached a final state.
func (s *HalfOrderSession) Terminal() bool {
	return s.Status != SessionStatusActive
}
