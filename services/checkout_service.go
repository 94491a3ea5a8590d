package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"resort-backend/events"
	"resort-backend/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	RoomNumber     string
	Mode           string
	PaymentMethod  string
	DiscountAmount float64
}

type CheckoutResult struct {
	CheckoutID   uint             `json:"checkout_id"`
	GrandTotal   float64          `json:"grand_total"`
	CheckoutDate time.Time        `json:"checkout_date"`
	StayClosed   bool             `json:"booking_checked_out"`
	Checkout     *models.Checkout `json:"checkout"`
}

// CheckoutService bills and releases a room or a whole stay in one transaction.
type CheckoutService struct {
	DB     *gorm.DB
	Bills  *BillCalculator
	Events events.Publisher
	Clock  Clock
	log    *zap.Logger

	// markBilled runs after the checkout row is inserted, inside the transaction.
	markBilled func(tx *gorm.DB, bill *Bill) error
}

func NewCheckoutService(db *gorm.DB, bills *BillCalculator, pub events.Publisher, clock Clock, log *zap.Logger) *CheckoutService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &CheckoutService{
		DB:         db,
		Bills:      bills,
		Events:     pub,
		Clock:      clock,
		log:        log,
		markBilled: markChargesBilled,
	}
}

// markChargesBilled flips exactly the rows the bill itemized.
func markChargesBilled(tx *gorm.DB, bill *Bill) error {
	if len(bill.foodOrderIDs) > 0 {
		if err := tx.Model(&models.FoodOrder{}).Where("id IN ?", bill.foodOrderIDs).
			Update("billing_status", models.BillingBilled).Error; err != nil {
			return err
		}
	}
	if len(bill.assignmentIDs) > 0 {
		if err := tx.Model(&models.AssignedService{}).Where("id IN ?", bill.assignmentIDs).
			Update("billing_status", models.BillingBilled).Error; err != nil {
			return err
		}
	}
	return nil
}

// checkedOutToday rejects a single-room checkout when the room already has a
// checkout row created today.
func checkedOutToday(ctx context.Context, tx *gorm.DB, roomNumber string, startOfDay time.Time) error {
	room, err := findRoom(ctx, tx, roomNumber)
	if err != nil {
		return err
	}
	var existing models.Checkout
	err = tx.WithContext(ctx).
		Where("room_number = ? AND created_at >= ? AND created_at < ?",
			room.RoomNumber, startOfDay, startOfDay.AddDate(0, 0, 1)).
		Order("id DESC").
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return internalErr("failed to check existing checkouts", err)
	}

	var snapshot struct {
		BookingID string `json:"booking_id"`
	}
	_ = json.Unmarshal(existing.BillDetails, &snapshot)
	return conflictErr("alreadyCheckedOutToday",
		map[string]any{"checkout_id": existing.ID, "booking_id": snapshot.BookingID},
		"Room %s was already checked out today (Checkout ID: %d).", room.RoomNumber, existing.ID)
}

func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	mode, err := ParseCheckoutMode(in.Mode)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.RoomNumber) == "" {
		return nil, validationErr("missingRoomNumber", "room_number is required")
	}
	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if paymentMethod == "" {
		return nil, validationErr("missingPaymentMethod", "payment_method is required")
	}
	discount := in.DiscountAmount
	if discount < 0 {
		discount = 0
	}

	now := s.Clock.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var (
		record *models.Checkout
		bill   *Bill
		closed bool
	)
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mode == ModeSingle {
			if err := checkedOutToday(ctx, tx, in.RoomNumber, startOfDay); err != nil {
				return err
			}
		}

		b, err := s.Bills.computeBill(ctx, tx, in.RoomNumber, mode, true)
		if err != nil {
			return err
		}
		bill = b
		stay := b.stay

		if !stay.Status.IsActive() {
			return stateErr("bookingNotActive", stay.Status, "booked|checked-in",
				"Booking %s is %s and cannot be checked out.", stay.DisplayID(), stay.Status)
		}

		var priorForStay int64
		if err := tx.Model(&models.Checkout{}).Where("stay_id = ?", stay.ID).Count(&priorForStay).Error; err != nil {
			return internalErr("failed to check existing checkouts", err)
		}

		var stayRef *uint
		roomLabel := b.room.RoomNumber
		switch mode {
		case ModeSingle:
			// Later rooms of a multi-room stay are recorded without the stay
			// reference so only the first checkout carries it.
			if priorForStay == 0 {
				id := stay.ID
				stayRef = &id
			}

		case ModeMultiple:
			if priorForStay > 0 {
				return conflictErr("alreadyCheckedOut",
					map[string]any{"booking_id": stay.DisplayID()},
					"Booking %s already has a checkout record.", stay.DisplayID())
			}
			var released []string
			for _, sr := range stay.Rooms {
				if sr.Released {
					released = append(released, sr.Room.RoomNumber)
				}
			}
			if len(released) > 0 {
				return conflictErr("roomsAlreadyCheckedOut",
					map[string]any{"rooms": released, "booking_id": stay.DisplayID()},
					"Some rooms in this booking are already checked out: %s. Check out the remaining rooms individually.",
					strings.Join(released, ", "))
			}
			id := stay.ID
			stayRef = &id
			roomLabel = strings.Join(b.RoomNumbers, ", ")
		}

		ch := b.Charges
		details, err := json.Marshal(b)
		if err != nil {
			return internalErr("failed to serialize bill", err)
		}

		record = &models.Checkout{
			CreatedAt:      now,
			StayID:         stayRef,
			RoomNumber:     roomLabel,
			CheckoutMode:   string(mode),
			GuestName:      stay.GuestName,
			RoomTotal:      ch.RoomCharges,
			FoodTotal:      ch.FoodCharges,
			ServiceTotal:   ch.ServiceCharges,
			PackageTotal:   ch.PackageCharges,
			TaxAmount:      ch.TotalGST,
			DiscountAmount: discount,
			GrandTotal:     GrandTotal(ch.TotalDue, ch.TotalGST, discount),
			PaymentMethod:  paymentMethod,
			PaymentStatus:  "Paid",
			CheckoutDate:   b.effective,
			BillDetails:    datatypes.JSON(details),
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		if err := s.markBilled(tx, b); err != nil {
			return err
		}

		if err := tx.Model(&models.Room{}).Where("id IN ?", b.roomIDs()).
			Update("status", models.RoomAvailable).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.StayRoom{}).
			Where("stay_id = ? AND room_id IN ?", stay.ID, b.roomIDs()).
			Update("released", true).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.StayRoom{}).
			Where("stay_id = ? AND released = ?", stay.ID, false).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Model(&models.Stay{}).Where("id = ?", stay.ID).
				Update("status", models.StayCheckedOut).Error; err != nil {
				return err
			}
			closed = true
		}
		return nil
	})
	if txErr != nil {
		var ae *AppError
		switch {
		case errors.As(txErr, &ae):
			return nil, ae
		case IsUniqueViolation(txErr):
			return nil, &AppError{Kind: ErrConflict, Code: "duplicateCheckout",
				Message: "Checkout failed: a checkout record already exists for this booking.", Err: txErr}
		default:
			s.log.Error("checkout failed", zap.String("room_number", in.RoomNumber), zap.Error(txErr))
			return nil, internalErr("Checkout failed", txErr)
		}
	}

	s.log.Info("checkout completed",
		zap.Uint("checkout_id", record.ID),
		zap.String("booking", bill.BookingID),
		zap.String("mode", string(mode)),
		zap.Float64("grand_total", record.GrandTotal),
		zap.Bool("booking_closed", closed),
	)

	evt := events.CheckoutEvent{
		CheckoutID:  record.ID,
		StayID:      bill.StayID,
		DisplayID:   bill.BookingID,
		RoomNumbers: bill.RoomNumbers,
		Mode:        string(mode),
		GrandTotal:  record.GrandTotal,
		StayClosed:  closed,
		At:          now,
	}
	if err := s.Events.Publish(ctx, events.CheckoutCompleted, evt); err != nil {
		s.log.Warn("failed to publish event", zap.String("routing_key", events.CheckoutCompleted), zap.Error(err))
	}

	return &CheckoutResult{
		CheckoutID:   record.ID,
		GrandTotal:   record.GrandTotal,
		CheckoutDate: record.CheckoutDate,
		StayClosed:   closed,
		Checkout:     record,
	}, nil
}
