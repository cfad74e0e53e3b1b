package models

import "time"

type Restaurant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Location  string    `gorm:"type:varchar(300)" json:"location"`
	Contact   string    `gorm:"type:varchar(50)" json:"contact"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
