package models

import "time"

type FoodItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:255" json:"name"`
	Price     float64   `json:"price"`
	Available bool      `gorm:"default:true" json:"available"`
}

type FoodOrder struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	RoomID        uint      `gorm:"column:room_id;index" json:"room_id"`
	StayID        *uint     `gorm:"column:stay_id;index" json:"stay_id,omitempty"`
	Amount        float64   `json:"amount"`
	Status        string    `gorm:"size:32" json:"status"`
	BillingStatus *string   `gorm:"column:billing_status;size:32" json:"billing_status"`

	Items []FoodOrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

type FoodOrderItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	OrderID    uint `gorm:"column:order_id;index" json:"order_id"`
	FoodItemID uint `gorm:"column:food_item_id" json:"food_item_id"`
	Quantity   int  `json:"quantity"`

	FoodItem FoodItem `gorm:"foreignKey:FoodItemID" json:"food_item"`
}

type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Charges     float64   `json:"charges"`
}

type AssignedService struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AssignedAt    time.Time `gorm:"column:assigned_at;index" json:"assigned_at"`
	ServiceID     uint      `gorm:"column:service_id;index" json:"service_id"`
	RoomID        uint      `gorm:"column:room_id;index" json:"room_id"`
	StayID        *uint     `gorm:"column:stay_id;index" json:"stay_id,omitempty"`
	Status        string    `gorm:"size:32" json:"status"`
	BillingStatus *string   `gorm:"column:billing_status;size:32" json:"billing_status"`

	Service Service `gorm:"foreignKey:ServiceID" json:"service"`
}
