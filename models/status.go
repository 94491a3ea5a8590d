package models

import "strings"

type StayStatus string

const (
	StayBooked     StayStatus = "booked"
	StayCheckedIn  StayStatus = "checked-in"
	StayCheckedOut StayStatus = "checked_out"
	StayCancelled  StayStatus = "cancelled"
)

// ActiveStatusValues lists the stored strings counted as active. checked_in
// is kept for rows written before statuses were normalized.
var ActiveStatusValues = []string{string(StayBooked), string(StayCheckedIn), "checked_in"}

// ParseStayStatus normalizes case, underscores and spaces before matching.
func ParseStayStatus(raw string) (StayStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	switch s {
	case "booked":
		return StayBooked, true
	case "checked-in", "checkedin":
		return StayCheckedIn, true
	case "checked-out", "checkedout":
		return StayCheckedOut, true
	case "cancelled", "canceled":
		return StayCancelled, true
	}
	return "", false
}

// Normalized returns the canonical form of a stored status, or the raw value
// unchanged when it is not recognized.
func (s StayStatus) Normalized() StayStatus {
	if v, ok := ParseStayStatus(string(s)); ok {
		return v
	}
	return s
}

func (s StayStatus) IsActive() bool {
	switch s.Normalized() {
	case StayBooked, StayCheckedIn:
		return true
	}
	return false
}

// Billing statuses on food orders and assigned services. NULL is billable.
const (
	BillingUnbilled = "unbilled"
	BillingBilled   = "billed"
	BillingPending  = "pending"
)
