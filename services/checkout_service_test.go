package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"resort-backend/events"
	"resort-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func billingStatusOf(t *testing.T, db *gorm.DB, orderID uint) *string {
	t.Helper()
	var o models.FoodOrder
	require.NoError(t, db.First(&o, orderID).Error)
	return o.BillingStatus
}

func TestCheckoutSimpleRoom(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "101", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})
	env.checkIn(t, stay)
	order := seedFoodOrder(t, env, room.ID, 250, 2)

	res, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", Mode: "single", PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, 2765.0, res.GrandTotal)
	assert.True(t, res.StayClosed)
	assert.Equal(t, date("2025-01-03"), res.CheckoutDate)

	var co models.Checkout
	require.NoError(t, env.db.First(&co, res.CheckoutID).Error)
	require.NotNil(t, co.StayID)
	assert.Equal(t, stay.ID, *co.StayID)
	assert.Equal(t, "Paid", co.PaymentStatus)
	assert.Equal(t, "card", co.PaymentMethod)
	assert.Equal(t, 265.0, co.TaxAmount)

	var snapshot Bill
	require.NoError(t, json.Unmarshal(co.BillDetails, &snapshot))
	assert.Equal(t, 2500.0, snapshot.Charges.TotalDue)

	require.NotNil(t, billingStatusOf(t, env.db, order.ID))
	assert.Equal(t, models.BillingBilled, *billingStatusOf(t, env.db, order.ID))
	assert.Equal(t, models.RoomAvailable, roomStatus(t, env.db, room.ID))

	got, err := env.stays.GetStay(ctx, stay.DisplayID(), models.StayStandalone)
	require.NoError(t, err)
	assert.Equal(t, models.StayCheckedOut, got.Status)
	assert.Contains(t, env.events.keys(), events.CheckoutCompleted)

	// The stay is closed, so the room has nothing left to bill.
	_, err = env.bills.ComputeBill(ctx, "101", ModeSingle)
	assert.Equal(t, "noActiveBooking", AsAppError(err).Code)
}

func TestCheckoutDiscountClamp(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	room := seedRoom(t, env.db, "101", 1000)
	env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})

	res, err := env.checkouts.Checkout(context.Background(), CheckoutInput{
		RoomNumber: "101", PaymentMethod: "cash", DiscountAmount: 1e6,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.GrandTotal)
	assert.Equal(t, 1e6, res.Checkout.DiscountAmount)
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()

	_, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash", Mode: "bulk"})
	assert.Equal(t, "invalidCheckoutMode", AsAppError(err).Code)

	_, err = env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101"})
	assert.Equal(t, "missingPaymentMethod", AsAppError(err).Code)

	_, err = env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "404", PaymentMethod: "cash"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPartialCheckoutOfMultiRoomStay(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	r1 := seedRoom(t, env.db, "101", 1000)
	r2 := seedRoom(t, env.db, "102", 1500)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{r1.ID, r2.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})
	env.checkIn(t, stay)
	o1 := seedFoodOrder(t, env, r1.ID, 100, 1)
	o2 := seedFoodOrder(t, env, r2.ID, 100, 1)

	first, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.False(t, first.StayClosed)
	require.NotNil(t, first.Checkout.StayID)
	assert.Equal(t, models.BillingBilled, *billingStatusOf(t, env.db, o1.ID))
	assert.Equal(t, models.BillingUnbilled, *billingStatusOf(t, env.db, o2.ID))
	assert.Equal(t, models.RoomAvailable, roomStatus(t, env.db, r1.ID))
	assert.Equal(t, models.RoomCheckedIn, roomStatus(t, env.db, r2.ID))

	got, err := env.stays.GetStay(ctx, stay.DisplayID(), models.StayStandalone)
	require.NoError(t, err)
	assert.Equal(t, models.StayCheckedIn, got.Status)

	// Multiple mode is refused once a room has been released.
	_, err = env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "102", Mode: "multiple", PaymentMethod: "cash"})
	assert.Equal(t, ErrConflict, AsAppError(err).Kind)

	// Same room again today.
	_, err = env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	ae := AsAppError(err)
	assert.Equal(t, "alreadyCheckedOutToday", ae.Code)
	assert.Equal(t, first.CheckoutID, ae.Details["checkout_id"])

	second, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "102", PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.True(t, second.StayClosed)
	assert.Nil(t, second.Checkout.StayID)
	assert.Equal(t, 3000.0, second.Checkout.RoomTotal)
	assert.Equal(t, models.BillingBilled, *billingStatusOf(t, env.db, o2.ID))

	var linked int64
	env.db.Model(&models.Checkout{}).Where("stay_id = ?", stay.ID).Count(&linked)
	assert.Equal(t, int64(1), linked)
}

func TestMultipleModeCheckout(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	r1 := seedRoom(t, env.db, "101", 1000)
	r2 := seedRoom(t, env.db, "102", 1500)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{r1.ID, r2.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})
	env.checkIn(t, stay)
	seedFoodOrder(t, env, r2.ID, 100, 3)

	res, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", Mode: "multiple", PaymentMethod: "upi", DiscountAmount: 100})
	require.NoError(t, err)
	assert.True(t, res.StayClosed)
	assert.Equal(t, "101, 102", res.Checkout.RoomNumber)
	assert.Equal(t, 5000.0, res.Checkout.RoomTotal)
	assert.Equal(t, 300.0, res.Checkout.FoodTotal)
	// 5000 + 300 + 600 (12%) + 15 (5%) - 100
	assert.Equal(t, 5815.0, res.GrandTotal)
	assert.Equal(t, models.RoomAvailable, roomStatus(t, env.db, r1.ID))
	assert.Equal(t, models.RoomAvailable, roomStatus(t, env.db, r2.ID))

	_, err = env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", Mode: "multiple", PaymentMethod: "upi"})
	assert.Equal(t, "noActiveBooking", AsAppError(err).Code)
}

func TestCheckoutAcceptsLegacyCheckedInSpelling(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	room := seedRoom(t, env.db, "101", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})

	// Rows imported before statuses were normalized.
	require.NoError(t, env.db.Model(&models.Stay{}).Where("id = ?", stay.ID).Update("status", "checked_in").Error)
	_, err := env.checkouts.Checkout(context.Background(), CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	require.NoError(t, err)
}

func TestCheckoutRollsBackWhenMarkingFails(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "101", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})
	env.checkIn(t, stay)
	order := seedFoodOrder(t, env, room.ID, 250, 2)

	env.checkouts.markBilled = func(tx *gorm.DB, bill *Bill) error {
		if err := markChargesBilled(tx, bill); err != nil {
			return err
		}
		return errors.New("disk full")
	}

	_, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	require.Error(t, err)
	ae := AsAppError(err)
	assert.Equal(t, ErrInternal, ae.Kind)

	var count int64
	env.db.Model(&models.Checkout{}).Count(&count)
	assert.Zero(t, count)
	assert.Equal(t, models.BillingUnbilled, *billingStatusOf(t, env.db, order.ID))
	assert.Equal(t, models.RoomCheckedIn, roomStatus(t, env.db, room.ID))
	assert.NotContains(t, env.events.keys(), events.CheckoutCompleted)

	// Restored, the same checkout goes through.
	env.checkouts.markBilled = markChargesBilled
	res, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, 2765.0, res.GrandTotal)
}

func TestCheckoutUniqueViolationIsConflict(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	room := seedRoom(t, env.db, "101", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})

	// Another writer links a checkout to the stay after the count ran.
	env.checkouts.markBilled = func(tx *gorm.DB, bill *Bill) error {
		id := stay.ID
		other := models.Checkout{StayID: &id, RoomNumber: "elsewhere", CreatedAt: date("2025-01-01")}
		return tx.Create(&other).Error
	}

	_, err := env.checkouts.Checkout(context.Background(), CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	ae := AsAppError(err)
	assert.Equal(t, ErrConflict, ae.Kind)
	assert.Equal(t, "duplicateCheckout", ae.Code)
}

func TestCheckoutClosesStayInRoomNotFutureBooking(t *testing.T) {
	env := newTestEnv(t, "2025-01-02T10:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "101", 1000)

	current := env.book(t, CreateStayInput{GuestName: "Current", RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})
	env.checkIn(t, current)
	future := env.book(t, CreateStayInput{GuestName: "Future", RoomIDs: []uint{room.ID}, CheckIn: "2025-01-10", CheckOut: "2025-01-12"})

	order := seedFoodOrder(t, env, room.ID, 100, 1)
	require.NotNil(t, order.StayID)
	assert.Equal(t, current.ID, *order.StayID)

	res, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "card"})
	require.NoError(t, err)
	assert.True(t, res.StayClosed)
	require.NotNil(t, res.Checkout.StayID)
	assert.Equal(t, current.ID, *res.Checkout.StayID)
	assert.Equal(t, "Current", res.Checkout.GuestName)

	got, err := env.stays.GetStay(ctx, current.DisplayID(), models.StayStandalone)
	require.NoError(t, err)
	assert.Equal(t, models.StayCheckedOut, got.Status)
	got, err = env.stays.GetStay(ctx, future.DisplayID(), models.StayStandalone)
	require.NoError(t, err)
	assert.Equal(t, models.StayBooked, got.Status)
}

func TestReleasedRoomStaysReleasedUntilStayCloses(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	r1 := seedRoom(t, env.db, "101", 1000)
	r2 := seedRoom(t, env.db, "102", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{r1.ID, r2.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-05"})
	env.checkIn(t, stay)

	first, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.False(t, first.StayClosed)

	var links []models.StayRoom
	require.NoError(t, env.db.Where("stay_id = ?", stay.ID).Order("room_id").Find(&links).Error)
	require.Len(t, links, 2)
	assert.True(t, links[0].Released)
	assert.False(t, links[1].Released)

	// The room listing reconciles; the released room must not be reclaimed.
	rooms, err := env.rooms.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, models.RoomAvailable, roomStatus(t, env.db, r1.ID))
	assert.Equal(t, models.RoomCheckedIn, roomStatus(t, env.db, r2.ID))

	// A released room no longer bills against the stay.
	_, err = env.bills.ComputeBill(ctx, "101", ModeSingle)
	assert.Equal(t, "noActiveBooking", AsAppError(err).Code)

	second, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "102", PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.True(t, second.StayClosed)

	got, err := env.stays.GetStay(ctx, stay.DisplayID(), models.StayStandalone)
	require.NoError(t, err)
	assert.Equal(t, models.StayCheckedOut, got.Status)
	assert.Zero(t, env.reconciler.ReconcileToday(ctx))
}

func TestReleasedRoomCannotBeCheckedOutOnLaterDay(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	r1 := seedRoom(t, env.db, "101", 1000)
	r2 := seedRoom(t, env.db, "102", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{r1.ID, r2.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-06"})
	env.checkIn(t, stay)

	_, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	require.NoError(t, err)

	env.checkouts.Clock = fixedClock("2025-01-04T10:00:00Z")
	env.bills.Clock = env.checkouts.Clock
	_, err = env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	assert.Equal(t, "noActiveBooking", AsAppError(err).Code)

	var count int64
	env.db.Model(&models.Checkout{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
