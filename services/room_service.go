package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoomView is a room as listed to staff, with the status a guest would see.
type RoomView struct {
	models.Room
	EffectiveStatus string `json:"effective_status"`
}

type RoomUpdate struct {
	RoomNumber        *string  `json:"room_number"`
	Type              *string  `json:"type"`
	Price             *float64 `json:"price"`
	MaxAdults         *int     `json:"max_adults"`
	MaxChildren       *int     `json:"max_children"`
	Description       *string  `json:"description"`
	Status            *string  `json:"status"`
	ClearManualStatus bool     `json:"clear_manual_status"`
}

type RoomService struct {
	DB         *gorm.DB
	Reconciler *Reconciler
	log        *zap.Logger
}

func NewRoomService(db *gorm.DB, reconciler *Reconciler, log *zap.Logger) *RoomService {
	return &RoomService{DB: db, Reconciler: reconciler, log: log}
}

// List reconciles booking-driven statuses before reading.
func (s *RoomService) List(ctx context.Context) ([]RoomView, error) {
	if s.Reconciler != nil {
		s.Reconciler.ReconcileToday(ctx)
	}
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Order("room_number").Find(&rooms).Error; err != nil {
		return nil, internalErr("failed to load rooms", err)
	}
	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomView{Room: r, EffectiveStatus: r.EffectiveStatus()})
	}
	return out, nil
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("roomNotFound", "Room with ID %d not found.", id)
		}
		return nil, internalErr("failed to load room", err)
	}
	return &room, nil
}

func (s *RoomService) Create(ctx context.Context, room models.Room) (*models.Room, error) {
	room.ID = 0
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.RoomNumber == "" {
		return nil, validationErr("missingRoomNumber", "Room Number is required.")
	}
	if room.Price < 0 {
		return nil, validationErr("invalidPrice", "price must not be negative")
	}
	if !models.IsBookingDrivenStatus(room.Status) {
		manual := strings.TrimSpace(room.Status)
		room.ManualStatus = &manual
		room.Status = models.RoomAvailable
	}
	if strings.TrimSpace(room.Status) == "" {
		room.Status = models.RoomAvailable
	}

	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, conflictErr("duplicateRoomNumber", map[string]any{"room_number": room.RoomNumber},
				"Room Number '%s' already exists.", room.RoomNumber)
		}
		return nil, internalErr("failed to create room", err)
	}
	s.log.Info("room created", zap.Uint("room_id", room.ID), zap.String("room_number", room.RoomNumber))
	return &room, nil
}

// Update applies the set fields. A booking-driven status clears any manual
// override; anything else becomes the override.
func (s *RoomService) Update(ctx context.Context, id uint, in RoomUpdate) (*models.Room, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.RoomNumber != nil {
		n := strings.TrimSpace(*in.RoomNumber)
		if n == "" {
			return nil, validationErr("missingRoomNumber", "Room Number is required.")
		}
		updates["room_number"] = n
	}
	if in.Type != nil {
		updates["type"] = *in.Type
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, validationErr("invalidPrice", "price must not be negative")
		}
		updates["price"] = *in.Price
	}
	if in.MaxAdults != nil {
		updates["max_adults"] = *in.MaxAdults
	}
	if in.MaxChildren != nil {
		updates["max_children"] = *in.MaxChildren
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		st := strings.TrimSpace(*in.Status)
		if models.IsBookingDrivenStatus(st) {
			if st == "" {
				st = models.RoomAvailable
			}
			updates["status"] = st
			updates["manual_status"] = nil
		} else {
			updates["manual_status"] = st
		}
	}
	if in.ClearManualStatus {
		updates["manual_status"] = nil
	}
	if len(updates) == 0 {
		return room, nil
	}

	if err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, conflictErr("duplicateRoomNumber", map[string]any{"room_number": updates["room_number"]},
				"Room Number '%v' already exists.", updates["room_number"])
		}
		return nil, internalErr("failed to update room", err)
	}
	return s.Get(ctx, id)
}

// Delete refuses rooms held by an active stay.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("roomNotFound", "Room with ID %d not found.", id)
			}
			return internalErr("failed to load room", err)
		}

		stayID, err := activeStayFor(ctx, tx, id, utils.DateOnly(time.Now()))
		if err != nil {
			return err
		}
		if stayID != nil {
			display := models.Stay{ID: *stayID}
			var st models.Stay
			if err := tx.Select("id", "kind").First(&st, *stayID).Error; err == nil {
				display = st
			}
			return conflictErr("roomInUse", map[string]any{"booking_id": display.DisplayID()},
				"Room %s is linked to active booking %s.", room.RoomNumber, display.DisplayID())
		}

		if err := tx.Where("room_id = ?", id).Delete(&models.StayRoom{}).Error; err != nil {
			return internalErr("failed to unlink room", err)
		}
		if err := tx.Delete(&models.Room{}, id).Error; err != nil {
			return internalErr("failed to delete room", err)
		}
		s.log.Info("room deleted", zap.Uint("room_id", id), zap.String("room_number", room.RoomNumber))
		return nil
	})
}
