package models

import (
	"fmt"
	"time"
)

type StayKind string

const (
	StayStandalone StayKind = "standalone"
	StayPackage    StayKind = "package"
)

// DisplayPrefix returns BK for standalone stays and PK for package stays.
func (k StayKind) DisplayPrefix() string {
	if k == StayPackage {
		return "PK"
	}
	return "BK"
}

// Stay is a guest's reservation, either priced by room (standalone) or by a
// package.
type Stay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Kind          StayKind `gorm:"size:20;index" json:"kind"`
	PackageID     *uint    `gorm:"column:package_id;index" json:"package_id,omitempty"`
	WholeProperty bool     `gorm:"column:whole_property;default:false" json:"whole_property"`

	GuestName   string `gorm:"size:255" json:"guest_name"`
	GuestEmail  string `gorm:"size:255;index" json:"guest_email"`
	GuestMobile string `gorm:"size:50;index" json:"guest_mobile"`

	CheckIn  time.Time `gorm:"column:check_in;index" json:"check_in"`
	CheckOut time.Time `gorm:"column:check_out;index" json:"check_out"`
	Adults   int       `gorm:"default:1" json:"adults"`
	Children int       `gorm:"default:0" json:"children"`

	Status      StayStatus `gorm:"size:32;index" json:"status"`
	IDCardImage string     `gorm:"column:id_card_image;size:255" json:"id_card_image,omitempty"`
	GuestPhoto  string     `gorm:"column:guest_photo;size:255" json:"guest_photo,omitempty"`
	UserID      *uint      `gorm:"column:user_id" json:"user_id,omitempty"`
	Source      string     `gorm:"size:20" json:"source,omitempty"`

	Package *Package   `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Rooms   []StayRoom `gorm:"foreignKey:StayID" json:"rooms"`
}

func (s Stay) DisplayID() string {
	return fmt.Sprintf("%s-%06d", s.Kind.DisplayPrefix(), s.ID)
}

func (s Stay) RoomIDs() []uint {
	ids := make([]uint, 0, len(s.Rooms))
	for _, sr := range s.Rooms {
		ids = append(ids, sr.RoomID)
	}
	return ids
}

type StayRoom struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	StayID uint `gorm:"column:stay_id;uniqueIndex:idx_stay_room" json:"stay_id"`
	RoomID uint `gorm:"column:room_id;uniqueIndex:idx_stay_room;index" json:"room_id"`
	// Released is set once the room has been checked out of the stay.
	Released bool `gorm:"column:released;not null;default:false" json:"released"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room"`
}
