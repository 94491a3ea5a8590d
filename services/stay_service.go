package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"resort-backend/events"
	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateStayInput struct {
	PackageID   *uint  `json:"package_id"`
	RoomIDs     []uint `json:"room_ids"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email"`
	GuestMobile string `json:"guest_mobile"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
	Source      string `json:"-"`
}

type CheckInInput struct {
	IDCardImage string
	GuestPhoto  string
	UserID      uint
}

// StayService owns the booking lifecycle: create, check-in, cancel, extend.
// Checkout lives in CheckoutService.
type StayService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
	Notifier     Notifier
	Events       events.Publisher
	Clock        Clock
	log          *zap.Logger
}

func NewStayService(db *gorm.DB, avail *AvailabilityService, notifier Notifier, pub events.Publisher, clock Clock, log *zap.Logger) *StayService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &StayService{DB: db, Availability: avail, Notifier: notifier, Events: pub, Clock: clock, log: log}
}

// ResolveStayID parses a numeric or display id and checks the prefix against kind.
func ResolveStayID(raw string, kind models.StayKind) (uint, error) {
	id, typ, err := utils.ParseDisplayID(raw)
	if err != nil {
		return 0, validationErr("invalidBookingId", "Invalid booking ID format: %s", raw)
	}
	if typ != "" && typ != displayType(kind) {
		return 0, &AppError{
			Kind:    ErrValidation,
			Code:    "bookingTypeMismatch",
			Message: "Invalid booking type. Expected " + displayType(kind) + " booking, got: " + raw,
			Details: map[string]any{"expected": displayType(kind), "got": typ},
		}
	}
	return id, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *StayService) loadStay(ctx context.Context, tx *gorm.DB, id uint, kind models.StayKind, lock bool) (*models.Stay, error) {
	q := tx.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var stay models.Stay
	if err := q.Preload("Rooms.Room").Preload("Package").Where("kind = ?", kind).First(&stay, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if kind == models.StayPackage {
				return nil, notFoundErr("bookingNotFound", "Package booking not found")
			}
			return nil, notFoundErr("bookingNotFound", "Booking not found")
		}
		return nil, internalErr("failed to load booking", err)
	}
	return &stay, nil
}

// GetStay accepts "12" or the display id for kind.
func (s *StayService) GetStay(ctx context.Context, rawID string, kind models.StayKind) (*models.Stay, error) {
	id, err := ResolveStayID(rawID, kind)
	if err != nil {
		return nil, err
	}
	return s.loadStay(ctx, s.DB, id, kind, false)
}

func (s *StayService) ListStays(ctx context.Context, kind models.StayKind, skip, limit int) ([]models.Stay, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	var total int64
	base := s.DB.WithContext(ctx).Model(&models.Stay{}).Where("kind = ?", kind)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, internalErr("failed to count bookings", err)
	}

	var list []models.Stay
	if err := s.DB.WithContext(ctx).
		Preload("Rooms.Room").
		Preload("Package").
		Where("kind = ?", kind).
		Order("id DESC").
		Offset(skip).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, internalErr("failed to retrieve bookings", err)
	}
	for i := range list {
		if list[i].Rooms == nil {
			list[i].Rooms = []models.StayRoom{}
		}
	}
	return list, total, nil
}

// CreateStay books rooms for a standalone stay, or a package when PackageID is set.
func (s *StayService) CreateStay(ctx context.Context, in CreateStayInput) (*models.Stay, error) {
	in.GuestName = strings.TrimSpace(in.GuestName)
	if in.GuestName == "" {
		return nil, validationErr("missingGuestName", "guest_name is required")
	}
	checkIn, err := utils.ParseDate(in.CheckIn)
	if err != nil {
		return nil, validationErr("invalidCheckIn", "invalid check_in: %s", in.CheckIn)
	}
	checkOut, err := utils.ParseDate(in.CheckOut)
	if err != nil {
		return nil, validationErr("invalidCheckOut", "invalid check_out: %s", in.CheckOut)
	}
	if !checkOut.After(checkIn) {
		return nil, validationErr("invalidDateRange", "check_out must be after check_in")
	}
	if in.Adults <= 0 {
		in.Adults = 1
	}
	if in.Children < 0 {
		in.Children = 0
	}
	if in.Source == "" {
		in.Source = "staff"
	}
	roomIDs := uniqueIDs(in.RoomIDs)

	kind := models.StayStandalone
	var pkg *models.Package
	if in.PackageID != nil {
		kind = models.StayPackage
		var p models.Package
		if err := s.DB.WithContext(ctx).First(&p, *in.PackageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFoundErr("packageNotFound", "Package %d not found", *in.PackageID)
			}
			return nil, internalErr("failed to load package", err)
		}
		pkg = &p
	}
	wholeProperty := pkg != nil && pkg.IsWholeProperty()
	if !wholeProperty && len(roomIDs) == 0 {
		return nil, validationErr("missingRooms", "at least one room is required")
	}

	var stayID uint
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the room rows serializes concurrent bookings of the same rooms.
		var rooms []models.Room
		lockQ := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id")
		if wholeProperty && len(roomIDs) == 0 {
			if err := lockQ.Find(&rooms).Error; err != nil {
				return internalErr("failed to lock rooms", err)
			}
			for _, r := range rooms {
				roomIDs = append(roomIDs, r.ID)
			}
		} else {
			if err := lockQ.Where("id IN ?", roomIDs).Find(&rooms).Error; err != nil {
				return internalErr("failed to lock rooms", err)
			}
			if len(rooms) != len(roomIDs) {
				found := make(map[uint]bool, len(rooms))
				for _, r := range rooms {
					found[r.ID] = true
				}
				for _, id := range roomIDs {
					if !found[id] {
						return notFoundErr("roomNotFound", "Room %d not found", id)
					}
				}
			}
		}

		if !wholeProperty {
			maxAdults, maxChildren := 0, 0
			for _, r := range rooms {
				maxAdults += r.MaxAdults
				maxChildren += r.MaxChildren
			}
			if in.Adults > maxAdults {
				return &AppError{Kind: ErrValidation, Code: "capacityExceeded",
					Message: "Selected rooms cannot accommodate the requested number of adults",
					Details: map[string]any{"adults": in.Adults, "capacity": maxAdults}}
			}
			if in.Children > maxChildren {
				return &AppError{Kind: ErrValidation, Code: "capacityExceeded",
					Message: "Selected rooms cannot accommodate the requested number of children",
					Details: map[string]any{"children": in.Children, "capacity": maxChildren}}
			}
		}

		conflicts, err := s.Availability.FindConflicts(ctx, tx, CheckRequest{
			RoomIDs:       roomIDs,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			WholeProperty: wholeProperty,
		})
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return unavailableErr(conflicts)
		}

		stay := models.Stay{
			Kind:          kind,
			PackageID:     in.PackageID,
			WholeProperty: wholeProperty,
			GuestName:     in.GuestName,
			GuestEmail:    strings.TrimSpace(in.GuestEmail),
			GuestMobile:   strings.TrimSpace(in.GuestMobile),
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			Adults:        in.Adults,
			Children:      in.Children,
			Status:        models.StayBooked,
			Source:        in.Source,
		}
		if err := tx.Create(&stay).Error; err != nil {
			return internalErr("failed to create booking", err)
		}

		for _, rid := range roomIDs {
			if err := tx.Create(&models.StayRoom{StayID: stay.ID, RoomID: rid}).Error; err != nil {
				return internalErr("failed to link room", err)
			}
		}
		if len(roomIDs) > 0 {
			// Rooms held by a current guest keep their status until checkout.
			if err := tx.Model(&models.Room{}).Where("id IN ?", roomIDs).
				Where("status IS NULL OR status IN ?", []string{"", models.RoomAvailable}).
				Update("status", models.RoomBooked).Error; err != nil {
				return internalErr("failed to update room status", err)
			}
		}

		stayID = stay.ID
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	stay, err := s.loadStay(ctx, s.DB, stayID, kind, false)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking", stay.DisplayID()),
		zap.Uints("room_ids", stay.RoomIDs()),
		zap.String("source", stay.Source),
	)

	if s.Notifier != nil {
		if err := s.Notifier.BookingConfirmed(ctx, stay, EstimateStayCharges(stay)); err != nil {
			s.log.Warn("failed to send confirmation email", zap.String("booking", stay.DisplayID()), zap.Error(err))
		}
	}
	s.publish(ctx, events.StayCreated, stay)
	return stay, nil
}

// CreateGuestStay is the public booking path. A repeat submission for the same
// dates by the same email or mobile returns the existing active stay.
func (s *StayService) CreateGuestStay(ctx context.Context, in CreateStayInput) (*models.Stay, bool, error) {
	email := strings.TrimSpace(in.GuestEmail)
	mobile := strings.TrimSpace(in.GuestMobile)
	if email == "" && mobile == "" {
		return nil, false, validationErr("missingContact", "guest_email or guest_mobile is required")
	}

	checkIn, err := utils.ParseDate(in.CheckIn)
	if err != nil {
		return nil, false, validationErr("invalidCheckIn", "invalid check_in: %s", in.CheckIn)
	}
	checkOut, err := utils.ParseDate(in.CheckOut)
	if err != nil {
		return nil, false, validationErr("invalidCheckOut", "invalid check_out: %s", in.CheckOut)
	}

	kind := models.StayStandalone
	if in.PackageID != nil {
		kind = models.StayPackage
	}

	q := s.DB.WithContext(ctx).
		Where("kind = ? AND check_in = ? AND check_out = ?", kind, checkIn, checkOut).
		Where("status IN ?", models.ActiveStatusValues)
	switch {
	case email != "" && mobile != "":
		q = q.Where("(guest_email = ? OR guest_mobile = ?)", email, mobile)
	case email != "":
		q = q.Where("guest_email = ?", email)
	default:
		q = q.Where("guest_mobile = ?", mobile)
	}
	if in.PackageID != nil {
		q = q.Where("package_id = ?", *in.PackageID)
	}

	var existing models.Stay
	err = q.Order("id DESC").First(&existing).Error
	if err == nil {
		stay, lerr := s.loadStay(ctx, s.DB, existing.ID, kind, false)
		if lerr != nil {
			return nil, false, lerr
		}
		s.log.Info("duplicate guest booking detected", zap.String("booking", stay.DisplayID()))
		return stay, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, internalErr("failed to check existing bookings", err)
	}

	in.Source = "guest"
	stay, err := s.CreateStay(ctx, in)
	return stay, false, err
}

// CheckIn moves a booked stay to checked-in. A stay wrongly flipped to
// checked-out before any images were captured may also be checked in.
func (s *StayService) CheckIn(ctx context.Context, rawID string, kind models.StayKind, in CheckInInput) (*models.Stay, error) {
	id, err := ResolveStayID(rawID, kind)
	if err != nil {
		return nil, err
	}
	if in.IDCardImage == "" || in.GuestPhoto == "" {
		return nil, validationErr("missingImages", "id_card_image and guest_photo are required")
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stay, err := s.loadStay(ctx, tx, id, kind, true)
		if err != nil {
			return err
		}

		status := stay.Status.Normalized()
		recoverable := status == models.StayCheckedOut && stay.IDCardImage == "" && stay.GuestPhoto == ""
		if status != models.StayBooked && !recoverable {
			return stateErr("invalidStatus", stay.Status, models.StayBooked,
				"Booking %s cannot be checked in. Expected status 'booked', found '%s'.", stay.DisplayID(), stay.Status)
		}

		updates := map[string]any{
			"status":        models.StayCheckedIn,
			"id_card_image": in.IDCardImage,
			"guest_photo":   in.GuestPhoto,
		}
		if in.UserID != 0 {
			updates["user_id"] = in.UserID
		}
		if err := tx.Model(&models.Stay{}).Where("id = ?", stay.ID).Updates(updates).Error; err != nil {
			return internalErr("failed to check in", err)
		}

		if ids := stay.RoomIDs(); len(ids) > 0 {
			if err := tx.Model(&models.Room{}).Where("id IN ?", ids).
				Update("status", models.RoomCheckedIn).Error; err != nil {
				return internalErr("failed to update room status", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	stay, err := s.loadStay(ctx, s.DB, id, kind, false)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking checked in", zap.String("booking", stay.DisplayID()), zap.Uint("user_id", in.UserID))
	s.publish(ctx, events.StayCheckedIn, stay)
	return stay, nil
}

// Cancel releases every linked room.
func (s *StayService) Cancel(ctx context.Context, rawID string, kind models.StayKind) (*models.Stay, error) {
	id, err := ResolveStayID(rawID, kind)
	if err != nil {
		return nil, err
	}

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stay, err := s.loadStay(ctx, tx, id, kind, true)
		if err != nil {
			return err
		}

		switch stay.Status.Normalized() {
		case models.StayBooked, models.StayCheckedIn:
		case models.StayCancelled:
			return stateErr("alreadyCancelled", stay.Status, "booked|checked-in", "Booking %s is already cancelled.", stay.DisplayID())
		default:
			return stateErr("invalidStatus", stay.Status, "booked|checked-in",
				"Booking %s cannot be cancelled in status '%s'.", stay.DisplayID(), stay.Status)
		}

		if err := tx.Model(&models.Stay{}).Where("id = ?", stay.ID).
			Update("status", models.StayCancelled).Error; err != nil {
			return internalErr("failed to cancel booking", err)
		}
		if ids := stay.RoomIDs(); len(ids) > 0 {
			if err := tx.Model(&models.Room{}).Where("id IN ?", ids).
				Update("status", models.RoomAvailable).Error; err != nil {
				return internalErr("failed to release rooms", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	stay, err := s.loadStay(ctx, s.DB, id, kind, false)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking cancelled", zap.String("booking", stay.DisplayID()))
	s.publish(ctx, events.StayCancelled, stay)
	return stay, nil
}

// Extend moves check_out forward after re-checking the added nights.
func (s *StayService) Extend(ctx context.Context, rawID string, kind models.StayKind, newCheckout string) (*models.Stay, error) {
	id, err := ResolveStayID(rawID, kind)
	if err != nil {
		return nil, err
	}
	newDate, err := time.Parse(utils.DateLayout, strings.TrimSpace(newCheckout))
	if err != nil {
		return nil, validationErr("invalidDate", "Invalid date format for new_checkout: %s. Expected YYYY-MM-DD.", newCheckout)
	}
	newDate = utils.DateOnly(newDate)

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stay, err := s.loadStay(ctx, tx, id, kind, true)
		if err != nil {
			return err
		}

		status := stay.Status.Normalized()
		if status == models.StayCheckedOut {
			return stateErr("bookingCheckedOut", stay.Status, "booked|checked-in",
				"Booking %s has already been checked out and cannot be extended.", stay.DisplayID())
		}
		if !status.IsActive() {
			return stateErr("invalidStatus", stay.Status, "booked|checked-in",
				"Booking %s cannot be extended in status '%s'.", stay.DisplayID(), stay.Status)
		}

		oldCheckout := utils.DateOnly(stay.CheckOut)
		if !newDate.After(oldCheckout) {
			return validationErr("invalidCheckoutDate",
				"New checkout date %s must be after current checkout date %s.",
				newDate.Format(utils.DateLayout), oldCheckout.Format(utils.DateLayout))
		}

		conflicts, err := s.Availability.FindConflicts(ctx, tx, CheckRequest{
			RoomIDs:       stay.RoomIDs(),
			CheckIn:       oldCheckout,
			CheckOut:      newDate,
			ExcludeStayID: stay.ID,
			WholeProperty: stay.WholeProperty,
		})
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return unavailableErr(conflicts)
		}

		if err := tx.Model(&models.Stay{}).Where("id = ?", stay.ID).
			Update("check_out", newDate).Error; err != nil {
			return internalErr("failed to extend booking", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	stay, err := s.loadStay(ctx, s.DB, id, kind, false)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking extended", zap.String("booking", stay.DisplayID()), zap.String("check_out", newDate.Format(utils.DateLayout)))
	s.publish(ctx, events.StayExtended, stay)
	return stay, nil
}

func unavailableErr(conflicts []Conflict) *AppError {
	first := conflicts[0]
	ids := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.BookingID)
	}
	return conflictErr("roomUnavailable",
		map[string]any{"conflicts": conflicts},
		"Rooms are not available for the selected dates (conflicts with %s from %s to %s).",
		strings.Join(ids, ", "), first.CheckIn, first.CheckOut)
}

func (s *StayService) publish(ctx context.Context, key string, stay *models.Stay) {
	evt := events.StayEvent{
		StayID:    stay.ID,
		DisplayID: stay.DisplayID(),
		Kind:      string(stay.Kind),
		Status:    string(stay.Status),
		RoomIDs:   stay.RoomIDs(),
		CheckIn:   stay.CheckIn.Format(utils.DateLayout),
		CheckOut:  stay.CheckOut.Format(utils.DateLayout),
		At:        s.Clock.now(),
	}
	if err := s.Events.Publish(ctx, key, evt); err != nil {
		s.log.Warn("failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}

// EstimateStayCharges prices the booked nights without food or services, as
// quoted in the confirmation email.
func EstimateStayCharges(stay *models.Stay) float64 {
	nights := utils.StayDays(stay.CheckIn, stay.CheckOut)
	if stay.Kind == models.StayPackage && stay.Package != nil {
		if stay.WholeProperty {
			return round2(stay.Package.Price)
		}
		return round2(stay.Package.Price * float64(len(stay.Rooms)) * float64(nights))
	}
	total := 0.0
	for _, sr := range stay.Rooms {
		total += sr.Room.Price
	}
	return round2(total * float64(nights))
}
