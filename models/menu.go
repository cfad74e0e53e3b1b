package models

import "time"

type MenuItem struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name         string     `gorm:"type:varchar(200); not null" json:"name"`
	Description  string     `gorm:"type:text" json:"description"`
	Category     string     `gorm:"type:varchar(100)" json:"category"`
	Price        float64    `gorm:"type:decimal(10,2); not null" json:"price"`
	HalfPrice    *float64   `gorm:"type:decimal(10,2)" json:"half_price,omitempty"`
	Available    bool       `gorm:"not null;default:true" json:"available"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

// HalfEligible reports whether the item can be advertised as a half order.
func (m *MenuItem) HalfEligible() bool {
	return m.HalfPrice != nil && *m.HalfPrice > 0
}
