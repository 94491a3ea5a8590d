package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutMode string

const (
	ModeSingle   CheckoutMode = "single"
	ModeMultiple CheckoutMode = "multiple"
)

func ParseCheckoutMode(raw string) (CheckoutMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "single":
		return ModeSingle, nil
	case "multiple":
		return ModeMultiple, nil
	}
	return "", validationErr("invalidCheckoutMode", "checkout_mode must be 'single' or 'multiple', got %q", raw)
}

// GST slabs: room and package charges up to the threshold pay the lower rate.
const (
	gstSlabThreshold = 7500.0
	gstLowerRate     = 0.12
	gstUpperRate     = 0.18
	foodGSTRate      = 0.05
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SlabGST taxes a room or package charge total.
func SlabGST(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if amount <= gstSlabThreshold {
		return round2(amount * gstLowerRate)
	}
	return round2(amount * gstUpperRate)
}

func FoodGST(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return round2(amount * foodGSTRate)
}

// GrandTotal clamps the discount at zero and the result at zero.
func GrandTotal(subtotal, tax, discount float64) float64 {
	if discount < 0 {
		discount = 0
	}
	return math.Max(0, round2(subtotal+tax-discount))
}

type ChargeBreakdown struct {
	RoomCharges    float64 `json:"room_charges"`
	FoodCharges    float64 `json:"food_charges"`
	ServiceCharges float64 `json:"service_charges"`
	PackageCharges float64 `json:"package_charges"`
	RoomGST        float64 `json:"room_gst"`
	FoodGST        float64 `json:"food_gst"`
	PackageGST     float64 `json:"package_gst"`
	TotalGST       float64 `json:"total_gst"`
	TotalDue       float64 `json:"total_due"`
}

type FoodLine struct {
	OrderID    uint    `json:"order_id"`
	RoomNumber string  `json:"room_number"`
	ItemName   string  `json:"item_name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Amount     float64 `json:"amount"`
}

type ServiceLine struct {
	AssignedServiceID uint    `json:"assigned_service_id"`
	RoomNumber        string  `json:"room_number"`
	ServiceName       string  `json:"service_name"`
	Amount            float64 `json:"amount"`
}

type Bill struct {
	RoomNumber            string          `json:"room_number"`
	Mode                  CheckoutMode    `json:"checkout_mode"`
	StayID                uint            `json:"stay_id"`
	BookingID             string          `json:"booking_id"`
	BookingType           string          `json:"booking_type"`
	GuestName             string          `json:"guest_name"`
	CheckIn               string          `json:"check_in"`
	CheckOut              string          `json:"check_out"`
	EffectiveCheckoutDate string          `json:"effective_checkout_date"`
	StayDays              int             `json:"stay_days"`
	RoomNumbers           []string        `json:"room_numbers"`
	PackageName           string          `json:"package_name,omitempty"`
	PackageMode           string          `json:"package_mode,omitempty"`
	Charges               ChargeBreakdown `json:"charges"`
	FoodItems             []FoodLine      `json:"food_items"`
	ServiceItems          []ServiceLine   `json:"service_items"`

	stay          *models.Stay
	room          models.Room
	rooms         []models.Room
	effective     time.Time
	foodOrderIDs  []uint
	assignmentIDs []uint
}

func (b *Bill) roomIDs() []uint {
	ids := make([]uint, 0, len(b.rooms))
	for _, r := range b.rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

// BillCalculator computes what a guest owes for a room or a whole stay. It
// never writes.
type BillCalculator struct {
	DB    *gorm.DB
	Clock Clock
	log   *zap.Logger
}

func NewBillCalculator(db *gorm.DB, clock Clock, log *zap.Logger) *BillCalculator {
	return &BillCalculator{DB: db, Clock: clock, log: log}
}

func (c *BillCalculator) ComputeBill(ctx context.Context, roomNumber string, mode CheckoutMode) (*Bill, error) {
	return c.computeBill(ctx, c.DB, roomNumber, mode, false)
}

// findRoom tries the number as given, trimmed, then case-insensitively.
func findRoom(ctx context.Context, tx *gorm.DB, number string) (*models.Room, error) {
	candidates := []string{number}
	if trimmed := strings.TrimSpace(number); trimmed != number {
		candidates = append(candidates, trimmed)
	}
	for _, n := range candidates {
		var room models.Room
		err := tx.WithContext(ctx).Where("room_number = ?", n).First(&room).Error
		if err == nil {
			return &room, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalErr("failed to load room", err)
		}
	}

	var room models.Room
	err := tx.WithContext(ctx).
		Where("LOWER(TRIM(room_number)) = ?", strings.ToLower(strings.TrimSpace(number))).
		First(&room).Error
	if err == nil {
		return &room, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("roomNotFound", "Room %s not found", strings.TrimSpace(number))
	}
	return nil, internalErr("failed to load room", err)
}

// owningStay returns the active stay currently holding the room.
func owningStay(ctx context.Context, tx *gorm.DB, room *models.Room, today time.Time, lock bool) (*models.Stay, error) {
	stayID, err := activeStayFor(ctx, tx, room.ID, today)
	if err != nil {
		return nil, err
	}
	if stayID == nil {
		return nil, notFoundErr("noActiveBooking", "No active booking found for room %s", room.RoomNumber)
	}

	q := tx.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var stay models.Stay
	if err := q.Preload("Rooms.Room").Preload("Package").First(&stay, *stayID).Error; err != nil {
		return nil, internalErr("failed to load booking", err)
	}
	return &stay, nil
}

func (c *BillCalculator) computeBill(ctx context.Context, tx *gorm.DB, roomNumber string, mode CheckoutMode, lock bool) (*Bill, error) {
	room, err := findRoom(ctx, tx, roomNumber)
	if err != nil {
		return nil, err
	}
	today := utils.DateOnly(c.Clock.now())
	stay, err := owningStay(ctx, tx, room, today, lock)
	if err != nil {
		return nil, err
	}

	rooms := []models.Room{*room}
	if mode == ModeMultiple {
		rooms = rooms[:0]
		for _, sr := range stay.Rooms {
			rooms = append(rooms, sr.Room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomNumber < rooms[j].RoomNumber })

	effective := utils.EffectiveCheckout(today, stay.CheckOut)
	days := utils.StayDays(stay.CheckIn, effective)

	bill := &Bill{
		RoomNumber:            room.RoomNumber,
		Mode:                  mode,
		StayID:                stay.ID,
		BookingID:             stay.DisplayID(),
		BookingType:           displayType(stay.Kind),
		GuestName:             stay.GuestName,
		CheckIn:               stay.CheckIn.Format(utils.DateLayout),
		CheckOut:              stay.CheckOut.Format(utils.DateLayout),
		EffectiveCheckoutDate: effective.Format(utils.DateLayout),
		StayDays:              days,
		FoodItems:             []FoodLine{},
		ServiceItems:          []ServiceLine{},
		stay:                  stay,
		room:                  *room,
		rooms:                 rooms,
		effective:             effective,
	}
	for _, r := range rooms {
		bill.RoomNumbers = append(bill.RoomNumbers, r.RoomNumber)
	}

	ch := &bill.Charges
	switch stay.Kind {
	case models.StayPackage:
		if stay.Package == nil {
			return nil, validationErr("packageMissing", "Package for booking %s no longer exists", stay.DisplayID())
		}
		bill.PackageName = stay.Package.Title
		if stay.WholeProperty {
			bill.PackageMode = models.PackageWholeProperty
			ch.PackageCharges = round2(stay.Package.Price)
		} else {
			bill.PackageMode = models.PackageRoomType
			ch.PackageCharges = round2(stay.Package.Price * float64(len(rooms)) * float64(days))
		}
	default:
		nightly := 0.0
		for _, r := range rooms {
			nightly += r.Price
		}
		ch.RoomCharges = round2(nightly * float64(days))
	}

	if err := c.collectFood(ctx, tx, bill); err != nil {
		return nil, err
	}
	if err := c.collectServices(ctx, tx, bill); err != nil {
		return nil, err
	}

	ch.RoomGST = SlabGST(ch.RoomCharges)
	ch.PackageGST = SlabGST(ch.PackageCharges)
	ch.FoodGST = FoodGST(ch.FoodCharges)
	ch.TotalGST = round2(ch.RoomGST + ch.FoodGST + ch.PackageGST)
	ch.TotalDue = round2(ch.RoomCharges + ch.FoodCharges + ch.ServiceCharges + ch.PackageCharges)
	return bill, nil
}

// billableScope limits charge rows to the bill's rooms, to unbilled or NULL
// billing status, and to this stay. Rows without a stay are matched by date.
func billableScope(q *gorm.DB, bill *Bill, dateColumn string) *gorm.DB {
	return q.Where("room_id IN ?", bill.roomIDs()).
		Where("(billing_status IS NULL OR billing_status = ?)", models.BillingUnbilled).
		Where("(stay_id = ? OR (stay_id IS NULL AND "+dateColumn+" >= ?))", bill.stay.ID, bill.stay.CheckIn)
}

func (c *BillCalculator) roomNumberOf(bill *Bill, roomID uint) string {
	for _, r := range bill.rooms {
		if r.ID == roomID {
			return r.RoomNumber
		}
	}
	return ""
}

func (c *BillCalculator) collectFood(ctx context.Context, tx *gorm.DB, bill *Bill) error {
	var orders []models.FoodOrder
	if err := billableScope(tx.WithContext(ctx).Preload("Items.FoodItem"), bill, "created_at").
		Order("id").Find(&orders).Error; err != nil {
		return internalErr("failed to load food orders", err)
	}

	total := 0.0
	for _, o := range orders {
		bill.foodOrderIDs = append(bill.foodOrderIDs, o.ID)
		number := c.roomNumberOf(bill, o.RoomID)
		if len(o.Items) == 0 {
			bill.FoodItems = append(bill.FoodItems, FoodLine{
				OrderID: o.ID, RoomNumber: number, ItemName: "Food order", Quantity: 1,
				UnitPrice: o.Amount, Amount: round2(o.Amount),
			})
			total += o.Amount
			continue
		}
		for _, it := range o.Items {
			amount := float64(it.Quantity) * it.FoodItem.Price
			bill.FoodItems = append(bill.FoodItems, FoodLine{
				OrderID: o.ID, RoomNumber: number, ItemName: it.FoodItem.Name, Quantity: it.Quantity,
				UnitPrice: it.FoodItem.Price, Amount: round2(amount),
			})
			total += amount
		}
	}
	bill.Charges.FoodCharges = round2(total)
	return nil
}

func (c *BillCalculator) collectServices(ctx context.Context, tx *gorm.DB, bill *Bill) error {
	var assigned []models.AssignedService
	if err := billableScope(tx.WithContext(ctx).Preload("Service"), bill, "assigned_at").
		Order("id").Find(&assigned).Error; err != nil {
		return internalErr("failed to load assigned services", err)
	}

	total := 0.0
	for _, a := range assigned {
		bill.assignmentIDs = append(bill.assignmentIDs, a.ID)
		bill.ServiceItems = append(bill.ServiceItems, ServiceLine{
			AssignedServiceID: a.ID,
			RoomNumber:        c.roomNumberOf(bill, a.RoomID),
			ServiceName:       a.Service.Name,
			Amount:            round2(a.Service.Charges),
		})
		total += a.Service.Charges
	}
	bill.Charges.ServiceCharges = round2(total)
	return nil
}
