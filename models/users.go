package models

import "time"

// Staff roles. Customers hit the half-order endpoints unauthenticated;
// the role string is what the cancel window rule keys on.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"type:varchar(255); not null" json:"name"`
	Email        string      `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password     string      `gorm:"type:varchar(255); not null" json:"-"`
	Role         string      `gorm:"type:varchar(50); not null;default:'staff'" json:"role"`
	RestaurantID *uint       `gorm:"index" json:"restaurant_id,omitempty"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsPrivileged reports whether the role may cancel a session outside
// the customer cancel window.
func IsPrivileged(role string) bool {
	return role == RoleStaff || role == RoleAdmin
}
