package models

import (
	"strings"
	"time"
)

// Booking-driven room statuses. The reconciler may overwrite these; any other
// label is treated as manually controlled.
const (
	RoomAvailable = "Available"
	RoomBooked    = "Booked"
	RoomCheckedIn = "Checked-in"
	RoomOccupied  = "Occupied"
)

type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RoomNumber  string  `json:"room_number" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`
	Type        string  `json:"type" gorm:"size:100"`
	Price       float64 `json:"price"`
	MaxAdults   int     `json:"max_adults" gorm:"column:max_adults;default:2"`
	MaxChildren int     `json:"max_children" gorm:"column:max_children;default:0"`
	Description string  `json:"description" gorm:"type:text"`

	// Status is derived from bookings. ManualStatus, when set, wins for display
	// and is never touched by booking transitions.
	Status       string  `json:"status" gorm:"size:50"`
	ManualStatus *string `json:"manual_status,omitempty" gorm:"column:manual_status;size:50"`
}

// IsBookingDrivenStatus reports whether s is one of the statuses derived from
// bookings. Empty counts as booking-driven so legacy rows get reconciled.
func IsBookingDrivenStatus(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "available", "booked", "checked-in", "checked_in", "occupied":
		return true
	}
	return false
}

func (r Room) EffectiveStatus() string {
	if r.ManualStatus != nil && strings.TrimSpace(*r.ManualStatus) != "" {
		return *r.ManualStatus
	}
	if strings.TrimSpace(r.Status) == "" {
		return RoomAvailable
	}
	return r.Status
}

// Reconcilable reports whether the reconciler is allowed to rewrite Status.
func (r Room) Reconcilable() bool {
	if r.ManualStatus != nil && strings.TrimSpace(*r.ManualStatus) != "" {
		return false
	}
	return IsBookingDrivenStatus(r.Status)
}
