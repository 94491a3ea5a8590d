package models

import (
	"time"

	"gorm.io/datatypes"
)

// Checkout is written once per billed room or stay and never updated.
// StayID is set only on the first checkout of a stay.
type Checkout struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	StayID       *uint  `gorm:"column:stay_id;uniqueIndex" json:"stay_id,omitempty"`
	RoomNumber   string `gorm:"column:room_number;size:255;index" json:"room_number"`
	CheckoutMode string `gorm:"column:checkout_mode;size:16" json:"checkout_mode"`
	GuestName    string `gorm:"size:255" json:"guest_name"`

	RoomTotal      float64 `json:"room_total"`
	FoodTotal      float64 `json:"food_total"`
	ServiceTotal   float64 `json:"service_total"`
	PackageTotal   float64 `json:"package_total"`
	TaxAmount      float64 `json:"tax_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	GrandTotal     float64 `json:"grand_total"`

	PaymentMethod string    `gorm:"size:50" json:"payment_method"`
	PaymentStatus string    `gorm:"size:50" json:"payment_status"`
	CheckoutDate  time.Time `gorm:"column:checkout_date" json:"checkout_date"`

	BillDetails datatypes.JSON `gorm:"column:bill_details" json:"bill_details,omitempty"`
}
