package events

import "time"

type StayEvent struct {
	StayID    uint      `json:"stay_id"`
	DisplayID string    `json:"display_id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	RoomIDs   []uint    `json:"room_ids"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	At        time.Time `json:"at"`
}

type CheckoutEvent struct {
	CheckoutID  uint      `json:"checkout_id"`
	StayID      uint      `json:"stay_id"`
	DisplayID   string    `json:"display_id"`
	RoomNumbers []string  `json:"room_numbers"`
	Mode        string    `json:"mode"`
	GrandTotal  float64   `json:"grand_total"`
	StayClosed  bool      `json:"stay_closed"`
	At          time.Time `json:"at"`
}
