package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"resort-backend/config"
	"resort-backend/models"
	"resort-backend/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"),
		config.GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func fixedClock(ts string) Clock {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func date(s string) time.Time {
	d, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedRoom(t *testing.T, db *gorm.DB, number string, price float64) models.Room {
	t.Helper()
	room := models.Room{RoomNumber: number, Type: "Deluxe", Price: price, MaxAdults: 2, MaxChildren: 1, Status: models.RoomAvailable}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func seedPackage(t *testing.T, db *gorm.DB, title string, price float64, bookingType string) models.Package {
	t.Helper()
	p := models.Package{Title: title, Price: price, BookingType: bookingType}
	if bookingType == models.PackageRoomType {
		p.RoomTypes = "Deluxe"
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

type recordedEvent struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{key: key, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

type countingNotifier struct {
	calls int
	err   error
}

func (n *countingNotifier) BookingConfirmed(context.Context, *models.Stay, float64) error {
	n.calls++
	return n.err
}

// testEnv wires every service against one database and clock.
type testEnv struct {
	db         *gorm.DB
	clock      Clock
	events     *recordingPublisher
	notifier   *countingNotifier
	avail      *AvailabilityService
	stays      *StayService
	bills      *BillCalculator
	checkouts  *CheckoutService
	charges    *ChargeService
	reconciler *Reconciler
	rooms      *RoomService
	dashboard  *DashboardService
}

func newTestEnv(t *testing.T, now string) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	clock := fixedClock(now)
	pub := &recordingPublisher{}
	notifier := &countingNotifier{}

	avail := NewAvailabilityService(db, log)
	bills := NewBillCalculator(db, clock, log)
	reconciler := NewReconciler(db, clock, log)
	return &testEnv{
		db:         db,
		clock:      clock,
		events:     pub,
		notifier:   notifier,
		avail:      avail,
		stays:      NewStayService(db, avail, notifier, pub, clock, log),
		bills:      bills,
		checkouts:  NewCheckoutService(db, bills, pub, clock, log),
		charges:    NewChargeService(db, clock, log),
		reconciler: reconciler,
		rooms:      NewRoomService(db, reconciler, log),
		dashboard:  NewDashboardService(db, log),
	}
}

func (e *testEnv) book(t *testing.T, in CreateStayInput) *models.Stay {
	t.Helper()
	if in.GuestName == "" {
		in.GuestName = "Asha Rao"
	}
	stay, err := e.stays.CreateStay(context.Background(), in)
	require.NoError(t, err)
	return stay
}

func (e *testEnv) checkIn(t *testing.T, stay *models.Stay) {
	t.Helper()
	_, err := e.stays.CheckIn(context.Background(), stay.DisplayID(), stay.Kind, CheckInInput{
		IDCardImage: "id_card.jpg",
		GuestPhoto:  "guest.jpg",
		UserID:      1,
	})
	require.NoError(t, err)
}

func roomStatus(t *testing.T, db *gorm.DB, id uint) string {
	t.Helper()
	var r models.Room
	require.NoError(t, db.First(&r, id).Error)
	return r.Status
}
