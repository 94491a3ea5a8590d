package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutOption is one row of the checkout desk: a single room, or every
// room of a multi-room stay.
type CheckoutOption struct {
	RoomNumber  string   `json:"room_number"`
	RoomNumbers []string `json:"room_numbers"`
	Mode        string   `json:"checkout_mode"`
	StayID      uint     `json:"stay_id"`
	BookingID   string   `json:"booking_id"`
	BookingType string   `json:"booking_type"`
	GuestName   string   `json:"guest_name"`
	CheckIn     string   `json:"check_in"`
	CheckOut    string   `json:"check_out"`
	DisplayName string   `json:"display_name"`
}

type DashboardService struct {
	DB  *gorm.DB
	log *zap.Logger
}

func NewDashboardService(db *gorm.DB, log *zap.Logger) *DashboardService {
	return &DashboardService{DB: db, log: log}
}

func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return skip, limit
}

// ActiveRooms lists checkout options for checked-in stays, newest stay first.
func (s *DashboardService) ActiveRooms(ctx context.Context, skip, limit int) ([]CheckoutOption, error) {
	skip, limit = clampPage(skip, limit)

	var stays []models.Stay
	if err := s.DB.WithContext(ctx).
		Preload("Rooms.Room").
		Where("status IN ?", []string{string(models.StayCheckedIn), "checked_in"}).
		Order("id DESC").
		Find(&stays).Error; err != nil {
		return nil, internalErr("failed to load active rooms", err)
	}

	options := make([]CheckoutOption, 0)
	for _, st := range stays {
		var numbers []string
		partial := false
		for _, sr := range st.Rooms {
			if sr.Released || sr.Room.Status == models.RoomAvailable {
				partial = true
				continue
			}
			numbers = append(numbers, sr.Room.RoomNumber)
		}
		if len(numbers) == 0 {
			continue
		}
		sort.Strings(numbers)

		base := CheckoutOption{
			StayID:      st.ID,
			BookingID:   st.DisplayID(),
			BookingType: displayType(st.Kind),
			GuestName:   st.GuestName,
			CheckIn:     st.CheckIn.Format(utils.DateLayout),
			CheckOut:    st.CheckOut.Format(utils.DateLayout),
		}
		// Multiple mode is refused once any room has been released.
		if len(numbers) > 1 && !partial {
			opt := base
			opt.RoomNumber = numbers[0]
			opt.RoomNumbers = numbers
			opt.Mode = string(ModeMultiple)
			opt.DisplayName = "All rooms (" + strings.Join(numbers, ", ") + ") - " + st.GuestName
			options = append(options, opt)
		}
		for _, n := range numbers {
			opt := base
			opt.RoomNumber = n
			opt.RoomNumbers = []string{n}
			opt.Mode = string(ModeSingle)
			opt.DisplayName = "Room " + n + " - " + st.GuestName
			options = append(options, opt)
		}
	}

	if skip >= len(options) {
		return []CheckoutOption{}, nil
	}
	end := skip + limit
	if end > len(options) {
		end = len(options)
	}
	return options[skip:end], nil
}

func (s *DashboardService) ListCheckouts(ctx context.Context, skip, limit int) ([]models.Checkout, int64, error) {
	skip, limit = clampPage(skip, limit)

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Checkout{}).Count(&total).Error; err != nil {
		return nil, 0, internalErr("failed to count checkouts", err)
	}
	var list []models.Checkout
	if err := s.DB.WithContext(ctx).
		Omit("bill_details").
		Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, internalErr("failed to load checkouts", err)
	}
	return list, total, nil
}

func (s *DashboardService) GetCheckout(ctx context.Context, id uint) (*models.Checkout, error) {
	var co models.Checkout
	if err := s.DB.WithContext(ctx).First(&co, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("checkoutNotFound", "Checkout %d not found", id)
		}
		return nil, internalErr("failed to load checkout", err)
	}
	return &co, nil
}
