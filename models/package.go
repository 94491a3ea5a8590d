package models

import (
	"strings"
	"time"
)

const (
	PackageWholeProperty = "whole_property"
	PackageRoomType      = "room_type"
)

type Package struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `gorm:"size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `json:"price"`
	BookingType string    `gorm:"column:booking_type;size:32" json:"booking_type"`
	// RoomTypes is a comma separated list of room types the package applies to.
	RoomTypes string `gorm:"column:room_types;size:255" json:"room_types"`
}

// Mode resolves the pricing mode. Older rows without booking_type are whole
// property packages unless they name room types.
func (p Package) Mode() string {
	switch strings.ToLower(strings.TrimSpace(p.BookingType)) {
	case PackageWholeProperty:
		return PackageWholeProperty
	case PackageRoomType:
		return PackageRoomType
	}
	if strings.TrimSpace(p.RoomTypes) == "" {
		return PackageWholeProperty
	}
	return PackageRoomType
}

func (p Package) IsWholeProperty() bool {
	return p.Mode() == PackageWholeProperty
}
