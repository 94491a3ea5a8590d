package services

import (
	"context"
	"time"

	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CheckRequest struct {
	RoomIDs       []uint
	CheckIn       time.Time
	CheckOut      time.Time
	ExcludeStayID uint
	// WholeProperty requests conflict with every active stay in the window.
	WholeProperty bool
}

type Conflict struct {
	StayID    uint   `json:"-"`
	BookingID string `json:"booking_id"`
	Type      string `json:"type"`
	RoomID    *uint  `json:"room_id,omitempty"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

type AvailabilityService struct {
	DB  *gorm.DB
	log *zap.Logger
}

func NewAvailabilityService(db *gorm.DB, log *zap.Logger) *AvailabilityService {
	return &AvailabilityService{DB: db, log: log}
}

// IsAvailable runs FindConflicts outside any transaction.
func (s *AvailabilityService) IsAvailable(ctx context.Context, req CheckRequest) (bool, []Conflict, error) {
	conflicts, err := s.FindConflicts(ctx, s.DB, req)
	if err != nil {
		return false, nil, err
	}
	return len(conflicts) == 0, conflicts, nil
}

// FindConflicts lists active stays overlapping [CheckIn, CheckOut) on any of
// the requested rooms. Whole-property stays conflict with every room.
func (s *AvailabilityService) FindConflicts(ctx context.Context, tx *gorm.DB, req CheckRequest) ([]Conflict, error) {
	if !req.CheckIn.Before(req.CheckOut) {
		return nil, validationErr("invalidDateRange", "check_out must be after check_in")
	}
	if !req.WholeProperty && len(req.RoomIDs) == 0 {
		return nil, validationErr("missingRooms", "at least one room is required")
	}

	q := tx.WithContext(ctx).
		Model(&models.Stay{}).
		Preload("Rooms").
		Where("status IN ?", models.ActiveStatusValues).
		Where("check_in < ? AND check_out > ?", utils.DateOnly(req.CheckOut), utils.DateOnly(req.CheckIn))
	if req.ExcludeStayID != 0 {
		q = q.Where("id <> ?", req.ExcludeStayID)
	}
	if !req.WholeProperty {
		linked := tx.Model(&models.StayRoom{}).Select("stay_id").Where("room_id IN ?", req.RoomIDs)
		q = q.Where("(whole_property = ? OR id IN (?))", true, linked)
	}

	var stays []models.Stay
	if err := q.Order("id").Find(&stays).Error; err != nil {
		return nil, internalErr("failed to check availability", err)
	}

	wanted := make(map[uint]bool, len(req.RoomIDs))
	for _, id := range req.RoomIDs {
		wanted[id] = true
	}

	conflicts := make([]Conflict, 0, len(stays))
	for _, st := range stays {
		c := Conflict{
			StayID:    st.ID,
			BookingID: st.DisplayID(),
			Type:      displayType(st.Kind),
			CheckIn:   st.CheckIn.Format(utils.DateLayout),
			CheckOut:  st.CheckOut.Format(utils.DateLayout),
		}
		for _, sr := range st.Rooms {
			if wanted[sr.RoomID] {
				id := sr.RoomID
				c.RoomID = &id
				break
			}
		}
		conflicts = append(conflicts, c)
	}

	if len(conflicts) > 0 {
		s.log.Debug("availability conflicts",
			zap.Uints("room_ids", req.RoomIDs),
			zap.Bool("whole_property", req.WholeProperty),
			zap.Int("conflicts", len(conflicts)),
		)
	}
	return conflicts, nil
}

func displayType(k models.StayKind) string {
	if k == models.StayPackage {
		return utils.DisplayTypePackage
	}
	return utils.DisplayTypeBooking
}
