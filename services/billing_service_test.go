package services

import (
	"context"
	"testing"

	"resort-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlabGSTBoundary(t *testing.T) {
	assert.Equal(t, 900.0, SlabGST(7500))
	assert.Equal(t, 1350.0, SlabGST(7500.01))
	assert.Equal(t, 0.0, SlabGST(0))
	assert.Equal(t, 0.05, FoodGST(1))
	assert.Equal(t, 25.0, FoodGST(500))
}

func TestGrandTotalNeverNegative(t *testing.T) {
	assert.Equal(t, 2765.0, GrandTotal(2500, 265, 0))
	assert.Equal(t, 0.0, GrandTotal(2500, 265, 2765))
	assert.Equal(t, 0.0, GrandTotal(2500, 265, 10000))
	assert.Equal(t, 2765.0, GrandTotal(2500, 265, -50))
}

func TestParseCheckoutMode(t *testing.T) {
	m, err := ParseCheckoutMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, m)

	m, err = ParseCheckoutMode(" Multiple ")
	require.NoError(t, err)
	assert.Equal(t, ModeMultiple, m)

	_, err = ParseCheckoutMode("all")
	assert.Equal(t, "invalidCheckoutMode", AsAppError(err).Code)
}

func seedFoodOrder(t *testing.T, env *testEnv, roomID uint, price float64, qty int) *models.FoodOrder {
	t.Helper()
	item, err := env.charges.CreateFoodItem(context.Background(), models.FoodItem{Name: "Thali", Price: price, Available: true})
	require.NoError(t, err)
	order, err := env.charges.CreateFoodOrder(context.Background(), FoodOrderInput{
		RoomID: roomID,
		Items:  []OrderItemInput{{FoodItemID: item.ID, Quantity: qty}},
	})
	require.NoError(t, err)
	return order
}

func TestComputeBillSimpleRoom(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "101", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})
	env.checkIn(t, stay)
	seedFoodOrder(t, env, room.ID, 250, 2)

	bill, err := env.bills.ComputeBill(ctx, "101", ModeSingle)
	require.NoError(t, err)

	assert.Equal(t, 2, bill.StayDays)
	assert.Equal(t, stay.DisplayID(), bill.BookingID)
	assert.Equal(t, "2025-01-03", bill.EffectiveCheckoutDate)
	assert.Equal(t, 2000.0, bill.Charges.RoomCharges)
	assert.Equal(t, 240.0, bill.Charges.RoomGST)
	assert.Equal(t, 500.0, bill.Charges.FoodCharges)
	assert.Equal(t, 25.0, bill.Charges.FoodGST)
	assert.Equal(t, 265.0, bill.Charges.TotalGST)
	assert.Equal(t, 2500.0, bill.Charges.TotalDue)
	require.Len(t, bill.FoodItems, 1)
	assert.Equal(t, "Thali", bill.FoodItems[0].ItemName)
	assert.Equal(t, 2, bill.FoodItems[0].Quantity)
	assert.Equal(t, 500.0, bill.FoodItems[0].Amount)

	again, err := env.bills.ComputeBill(ctx, "101", ModeSingle)
	require.NoError(t, err)
	assert.Equal(t, bill.Charges, again.Charges)
	assert.Equal(t, bill.FoodItems, again.FoodItems)
	assert.Equal(t, bill.ServiceItems, again.ServiceItems)
	assert.Equal(t, bill.StayDays, again.StayDays)
	assert.Equal(t, GrandTotal(bill.Charges.TotalDue, bill.Charges.TotalGST, 0),
		GrandTotal(again.Charges.TotalDue, again.Charges.TotalGST, 0))
}

func TestComputeBillPreviewDoesNotConsumeCharges(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "101", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})
	env.checkIn(t, stay)
	order := seedFoodOrder(t, env, room.ID, 250, 2)

	first, err := env.bills.ComputeBill(ctx, "101", ModeSingle)
	require.NoError(t, err)
	second, err := env.bills.ComputeBill(ctx, "101", ModeSingle)
	require.NoError(t, err)

	assert.Equal(t, first.Charges, second.Charges)
	assert.Equal(t, first.FoodItems, second.FoodItems)
	assert.Equal(t, models.BillingUnbilled, *billingStatusOf(t, env.db, order.ID))
	assert.Equal(t, models.RoomCheckedIn, roomStatus(t, env.db, room.ID))

	res, err := env.checkouts.Checkout(ctx, CheckoutInput{RoomNumber: "101", PaymentMethod: "cash"})
	require.NoError(t, err)
	assert.Equal(t, GrandTotal(first.Charges.TotalDue, first.Charges.TotalGST, 0), res.GrandTotal)
}

func TestComputeBillPrefersStayInRoomOverFutureBooking(t *testing.T) {
	env := newTestEnv(t, "2025-01-02T10:00:00Z")
	ctx := context.Background()
	occupied := seedRoom(t, env.db, "101", 1000)
	arriving := seedRoom(t, env.db, "102", 1000)

	current := env.book(t, CreateStayInput{GuestName: "Current", RoomIDs: []uint{occupied.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})
	env.checkIn(t, current)
	env.book(t, CreateStayInput{GuestName: "Future", RoomIDs: []uint{occupied.ID}, CheckIn: "2025-01-10", CheckOut: "2025-01-12"})

	// Both booked, neither checked in: the one that has started wins.
	started := env.book(t, CreateStayInput{GuestName: "Started", RoomIDs: []uint{arriving.ID}, CheckIn: "2025-01-02", CheckOut: "2025-01-04"})
	env.book(t, CreateStayInput{GuestName: "Later", RoomIDs: []uint{arriving.ID}, CheckIn: "2025-01-05", CheckOut: "2025-01-06"})

	bill, err := env.bills.ComputeBill(ctx, "101", ModeSingle)
	require.NoError(t, err)
	assert.Equal(t, current.DisplayID(), bill.BookingID)
	assert.Equal(t, "Current", bill.GuestName)

	bill, err = env.bills.ComputeBill(ctx, "102", ModeSingle)
	require.NoError(t, err)
	assert.Equal(t, started.DisplayID(), bill.BookingID)
}

func TestComputeBillRoomLookupTolerance(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "A101", 1000)
	env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})

	for _, n := range []string{"A101", "  A101 ", "a101"} {
		bill, err := env.bills.ComputeBill(ctx, n, ModeSingle)
		require.NoError(t, err, n)
		assert.Equal(t, "A101", bill.RoomNumber)
	}

	_, err := env.bills.ComputeBill(ctx, "999", ModeSingle)
	assert.Equal(t, "roomNotFound", AsAppError(err).Code)

	seedRoom(t, env.db, "102", 800)
	_, err = env.bills.ComputeBill(ctx, "102", ModeSingle)
	assert.Equal(t, "noActiveBooking", AsAppError(err).Code)
}

func TestComputeBillStayDays(t *testing.T) {
	t.Run("overstay bills through today", func(t *testing.T) {
		env := newTestEnv(t, "2025-01-06T09:00:00Z")
		room := seedRoom(t, env.db, "101", 1000)
		env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})

		bill, err := env.bills.ComputeBill(context.Background(), "101", ModeSingle)
		require.NoError(t, err)
		assert.Equal(t, 5, bill.StayDays)
		assert.Equal(t, "2025-01-06", bill.EffectiveCheckoutDate)
		assert.Equal(t, 5000.0, bill.Charges.RoomCharges)
	})

	t.Run("early departure pays the booked nights", func(t *testing.T) {
		env := newTestEnv(t, "2025-01-02T09:00:00Z")
		room := seedRoom(t, env.db, "101", 1000)
		env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-04"})

		bill, err := env.bills.ComputeBill(context.Background(), "101", ModeSingle)
		require.NoError(t, err)
		assert.Equal(t, 3, bill.StayDays)
	})
}

func TestComputeBillWholePropertyPackage(t *testing.T) {
	env := newTestEnv(t, "2025-02-04T10:00:00Z")
	ctx := context.Background()
	seedRoom(t, env.db, "101", 1000)
	seedRoom(t, env.db, "102", 1000)
	pkg := seedPackage(t, env.db, "Retreat", 50000, models.PackageWholeProperty)
	env.book(t, CreateStayInput{PackageID: &pkg.ID, CheckIn: "2025-02-01", CheckOut: "2025-02-04"})

	for _, mode := range []CheckoutMode{ModeSingle, ModeMultiple} {
		bill, err := env.bills.ComputeBill(ctx, "102", mode)
		require.NoError(t, err)
		assert.Equal(t, 3, bill.StayDays)
		assert.Equal(t, 50000.0, bill.Charges.PackageCharges)
		assert.Equal(t, 9000.0, bill.Charges.PackageGST)
		assert.Equal(t, 0.0, bill.Charges.RoomCharges)
		assert.Equal(t, models.PackageWholeProperty, bill.PackageMode)
	}
}

func TestComputeBillRoomTypePackage(t *testing.T) {
	env := newTestEnv(t, "2025-02-03T10:00:00Z")
	ctx := context.Background()
	r1 := seedRoom(t, env.db, "101", 1000)
	r2 := seedRoom(t, env.db, "102", 1000)
	pkg := seedPackage(t, env.db, "Couples", 2000, models.PackageRoomType)
	env.book(t, CreateStayInput{PackageID: &pkg.ID, RoomIDs: []uint{r1.ID, r2.ID}, CheckIn: "2025-02-01", CheckOut: "2025-02-03"})

	single, err := env.bills.ComputeBill(ctx, "101", ModeSingle)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, single.Charges.PackageCharges)
	assert.Equal(t, 480.0, single.Charges.PackageGST)

	multi, err := env.bills.ComputeBill(ctx, "101", ModeMultiple)
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, multi.RoomNumbers)
	assert.Equal(t, 8000.0, multi.Charges.PackageCharges)
	assert.Equal(t, 1440.0, multi.Charges.PackageGST)
}

func TestComputeBillChargeSelection(t *testing.T) {
	env := newTestEnv(t, "2025-01-03T10:00:00Z")
	ctx := context.Background()
	db := env.db
	room := seedRoom(t, db, "101", 1000)
	svc, err := env.charges.CreateService(ctx, models.Service{Name: "Spa", Charges: 1500})
	require.NoError(t, err)

	// An order placed before this guest arrived, with no stay link.
	old := models.FoodOrder{CreatedAt: date("2024-12-30"), RoomID: room.ID, Amount: 300}
	require.NoError(t, db.Create(&old).Error)

	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-01", CheckOut: "2025-01-03"})

	// Legacy order during the stay: NULL billing status, no stay link.
	legacy := models.FoodOrder{CreatedAt: date("2025-01-02"), RoomID: room.ID, Amount: 200}
	require.NoError(t, db.Create(&legacy).Error)

	billed := models.BillingBilled
	done := models.FoodOrder{CreatedAt: date("2025-01-02"), RoomID: room.ID, StayID: &stay.ID, Amount: 999, BillingStatus: &billed}
	require.NoError(t, db.Create(&done).Error)

	_, err = env.charges.AssignService(ctx, AssignServiceInput{ServiceID: svc.ID, RoomID: room.ID})
	require.NoError(t, err)

	bill, err := env.bills.ComputeBill(ctx, "101", ModeSingle)
	require.NoError(t, err)
	assert.Equal(t, 200.0, bill.Charges.FoodCharges)
	assert.Equal(t, 10.0, bill.Charges.FoodGST)
	assert.Equal(t, 1500.0, bill.Charges.ServiceCharges)
	assert.Equal(t, 2000.0+200+1500, bill.Charges.TotalDue)
	assert.Equal(t, 240.0+10, bill.Charges.TotalGST)
	require.Len(t, bill.ServiceItems, 1)
	assert.Equal(t, "Spa", bill.ServiceItems[0].ServiceName)
	assert.Equal(t, []uint{legacy.ID}, bill.foodOrderIDs)
}
