package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Booking types carried by a display id prefix.
const (
	DisplayTypeBooking = "booking"
	DisplayTypePackage = "package"
)

var ErrInvalidDisplayID = errors.New("invalid booking id format")

// FormatDisplayID renders BK-000001 / PK-000001.
func FormatDisplayID(prefix string, id uint) string {
	return fmt.Sprintf("%s-%06d", prefix, id)
}

// ParseDisplayID accepts "42", "BK-000042" or "PK-42". The returned type is
// empty for a bare number.
func ParseDisplayID(raw string) (uint, string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, "", ErrInvalidDisplayID
	}

	typ := ""
	if idx := strings.Index(s, "-"); idx >= 0 {
		switch strings.ToUpper(strings.TrimSpace(s[:idx])) {
		case "BK":
			typ = DisplayTypeBooking
		case "PK":
			typ = DisplayTypePackage
		default:
			return 0, "", fmt.Errorf("%w: unknown prefix in %q", ErrInvalidDisplayID, raw)
		}
		s = strings.TrimSpace(s[idx+1:])
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidDisplayID, raw)
	}
	return uint(n), typ, nil
}
