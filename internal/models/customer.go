package models

import "time"

// Customer is the minimal owner record the core needs for account
// ownership checks. Registration and profile data live outside the
// core and never reach it.
type Customer struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
