package services

import (
	"context"
	"time"

	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const reconcileAttempts = 3

// Reconciler re-derives booking-driven room statuses from the stays that
// cover a given day.
type Reconciler struct {
	DB    *gorm.DB
	Clock Clock
	log   *zap.Logger
}

func NewReconciler(db *gorm.DB, clock Clock, log *zap.Logger) *Reconciler {
	return &Reconciler{DB: db, Clock: clock, log: log}
}

// ReconcileToday reconciles against the current date.
func (r *Reconciler) ReconcileToday(ctx context.Context) int {
	return r.Reconcile(ctx, r.Clock.now())
}

// Reconcile returns the number of rooms whose status changed. Failures are
// logged and reported as zero updates.
func (r *Reconciler) Reconcile(ctx context.Context, asOf time.Time) int {
	day := utils.DateOnly(asOf)
	var lastErr error
	for attempt := 1; attempt <= reconcileAttempts; attempt++ {
		n, err := r.reconcileOnce(ctx, day)
		if err == nil {
			if n > 0 {
				r.log.Info("room statuses reconciled", zap.Int("updated", n), zap.String("as_of", day.Format(utils.DateLayout)))
			}
			return n
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		r.log.Warn("room reconcile attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	r.log.Error("room reconcile failed", zap.Error(lastErr))
	return 0
}

func (r *Reconciler) reconcileOnce(ctx context.Context, day time.Time) (int, error) {
	updated := 0
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms, err := lockRoomsForReconcile(tx)
		if err != nil {
			return err
		}

		var stays []models.Stay
		if err := tx.Preload("Rooms").
			Where("status IN ?", models.ActiveStatusValues).
			Where("check_in <= ? AND check_out > ?", day, day).
			Order("id DESC").
			Find(&stays).Error; err != nil {
			return err
		}

		want := claimRooms(stays, rooms)
		for _, room := range rooms {
			if !room.Reconcilable() {
				continue
			}
			target, ok := want[room.ID]
			if !ok {
				target = models.RoomAvailable
			}
			if room.Status == target {
				continue
			}
			if err := tx.Model(&models.Room{}).Where("id = ?", room.ID).
				Update("status", target).Error; err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// lockRoomsForReconcile locks the room rows, skipping rows other transactions
// hold. When the dialect rejects the lock clause it reads without locking.
func lockRoomsForReconcile(tx *gorm.DB) ([]models.Room, error) {
	var rooms []models.Room
	const sp = "reconcile_lock"
	if err := tx.SavePoint(sp).Error; err != nil {
		return rooms, tx.Order("id").Find(&rooms).Error
	}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Order("id").Find(&rooms).Error
	if err == nil {
		return rooms, nil
	}
	if rbErr := tx.RollbackTo(sp).Error; rbErr != nil {
		return nil, rbErr
	}
	rooms = nil
	return rooms, tx.Order("id").Find(&rooms).Error
}

// claimRooms maps room ids to the status implied by the newest active stay
// on each room. stays must be ordered newest first. Rooms already checked out
// of a stay are not claimed by it.
func claimRooms(stays []models.Stay, rooms []models.Room) map[uint]string {
	want := make(map[uint]string, len(rooms))
	for _, st := range stays {
		status := models.RoomOccupied
		if st.Status.Normalized() == models.StayCheckedIn {
			status = models.RoomCheckedIn
		}
		released := make(map[uint]bool)
		ids := make([]uint, 0, len(st.Rooms))
		for _, sr := range st.Rooms {
			if sr.Released {
				released[sr.RoomID] = true
				continue
			}
			ids = append(ids, sr.RoomID)
		}
		if st.WholeProperty {
			ids = ids[:0]
			for _, room := range rooms {
				if !released[room.ID] {
					ids = append(ids, room.ID)
				}
			}
		}
		for _, id := range ids {
			if _, taken := want[id]; !taken {
				want[id] = status
			}
		}
	}
	return want
}
