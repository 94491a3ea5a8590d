package models

import "time"

// User is a staff account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	Email     string    `gorm:"uniqueIndex;size:150" json:"email"`
	Password  string    `gorm:"size:255" json:"-"`
	Role      string    `gorm:"size:50;default:staff" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
