package services

import (
	"context"
	"errors"
	"testing"

	"resort-backend/models"
	"resort-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityOverlapIsHalfOpen(t *testing.T) {
	env := newTestEnv(t, "2025-01-01T08:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "101", 1000)
	existing := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-05", CheckOut: "2025-01-08"})

	cases := []struct {
		name      string
		in, out   string
		available bool
	}{
		{"ends on existing check-in", "2025-01-03", "2025-01-05", true},
		{"starts on existing check-out", "2025-01-08", "2025-01-10", true},
		{"overlaps start", "2025-01-04", "2025-01-06", false},
		{"inside", "2025-01-06", "2025-01-07", false},
		{"covers", "2025-01-01", "2025-01-12", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, conflicts, err := env.avail.IsAvailable(ctx, CheckRequest{
				RoomIDs:  []uint{room.ID},
				CheckIn:  date(tc.in),
				CheckOut: date(tc.out),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.available, ok)
			if !tc.available {
				require.Len(t, conflicts, 1)
				assert.Equal(t, existing.DisplayID(), conflicts[0].BookingID)
				assert.Equal(t, utils.DisplayTypeBooking, conflicts[0].Type)
				require.NotNil(t, conflicts[0].RoomID)
				assert.Equal(t, room.ID, *conflicts[0].RoomID)
			}
		})
	}
}

func TestAvailabilityIgnoresInactiveAndExcludedStays(t *testing.T) {
	env := newTestEnv(t, "2025-01-01T08:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "101", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-05", CheckOut: "2025-01-08"})

	req := CheckRequest{RoomIDs: []uint{room.ID}, CheckIn: date("2025-01-06"), CheckOut: date("2025-01-07")}

	req.ExcludeStayID = stay.ID
	ok, _, err := env.avail.IsAvailable(ctx, req)
	require.NoError(t, err)
	assert.True(t, ok)

	req.ExcludeStayID = 0
	_, err = env.stays.Cancel(ctx, stay.DisplayID(), models.StayStandalone)
	require.NoError(t, err)
	ok, _, err = env.avail.IsAvailable(ctx, req)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAvailabilityAcceptsLegacyActiveSpelling(t *testing.T) {
	env := newTestEnv(t, "2025-01-01T08:00:00Z")
	ctx := context.Background()
	room := seedRoom(t, env.db, "101", 1000)
	stay := env.book(t, CreateStayInput{RoomIDs: []uint{room.ID}, CheckIn: "2025-01-05", CheckOut: "2025-01-08"})
	require.NoError(t, env.db.Model(&models.Stay{}).Where("id = ?", stay.ID).Update("status", "checked_in").Error)

	ok, conflicts, err := env.avail.IsAvailable(ctx, CheckRequest{
		RoomIDs: []uint{room.ID}, CheckIn: date("2025-01-06"), CheckOut: date("2025-01-09"),
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, conflicts, 1)
}

func TestWholePropertyConflictsWithEveryRoom(t *testing.T) {
	env := newTestEnv(t, "2025-01-01T08:00:00Z")
	ctx := context.Background()
	r1 := seedRoom(t, env.db, "101", 1000)
	r2 := seedRoom(t, env.db, "102", 1200)
	pkg := seedPackage(t, env.db, "Retreat", 50000, models.PackageWholeProperty)

	t.Run("whole property blocks a later room booking", func(t *testing.T) {
		wp := env.book(t, CreateStayInput{PackageID: &pkg.ID, CheckIn: "2025-02-01", CheckOut: "2025-02-04"})
		assert.True(t, wp.WholeProperty)
		assert.ElementsMatch(t, []uint{r1.ID, r2.ID}, wp.RoomIDs())

		_, err := env.stays.CreateStay(ctx, CreateStayInput{
			GuestName: "Late Guest", RoomIDs: []uint{r2.ID}, CheckIn: "2025-02-03", CheckOut: "2025-02-05",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConflict))
		assert.Contains(t, err.Error(), wp.DisplayID())
	})

	t.Run("room booking blocks a later whole property request", func(t *testing.T) {
		env.book(t, CreateStayInput{RoomIDs: []uint{r1.ID}, CheckIn: "2025-03-10", CheckOut: "2025-03-12"})

		ok, conflicts, err := env.avail.IsAvailable(ctx, CheckRequest{
			WholeProperty: true, CheckIn: date("2025-03-11"), CheckOut: date("2025-03-15"),
		})
		require.NoError(t, err)
		assert.False(t, ok)
		require.Len(t, conflicts, 1)
		assert.Equal(t, utils.DisplayTypeBooking, conflicts[0].Type)
	})

	t.Run("package conflicts are typed as package", func(t *testing.T) {
		_, conflicts, err := env.avail.IsAvailable(ctx, CheckRequest{
			RoomIDs: []uint{r1.ID}, CheckIn: date("2025-02-02"), CheckOut: date("2025-02-03"),
		})
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, utils.DisplayTypePackage, conflicts[0].Type)
		assert.Regexp(t, `^PK-\d{6}$`, conflicts[0].BookingID)
	})
}

func TestFindConflictsValidatesInput(t *testing.T) {
	env := newTestEnv(t, "2025-01-01T08:00:00Z")
	ctx := context.Background()

	_, _, err := env.avail.IsAvailable(ctx, CheckRequest{
		RoomIDs: []uint{1}, CheckIn: date("2025-01-05"), CheckOut: date("2025-01-05"),
	})
	assert.True(t, errors.Is(err, ErrValidation))

	_, _, err = env.avail.IsAvailable(ctx, CheckRequest{
		CheckIn: date("2025-01-05"), CheckOut: date("2025-01-06"),
	})
	assert.True(t, errors.Is(err, ErrValidation))
}
