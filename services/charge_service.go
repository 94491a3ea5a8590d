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
	"gorm.io/gorm/clause"
)

type OrderItemInput struct {
	FoodItemID uint `json:"food_item_id"`
	Quantity   int  `json:"quantity"`
}

type FoodOrderInput struct {
	RoomID uint             `json:"room_id"`
	Items  []OrderItemInput `json:"items"`
}

type AssignServiceInput struct {
	ServiceID uint `json:"service_id"`
	RoomID    uint `json:"room_id"`
}

// ChargeService records food orders and service assignments against a room
// and, when one exists, the room's active stay.
type ChargeService struct {
	DB    *gorm.DB
	Clock Clock
	log   *zap.Logger
}

func NewChargeService(db *gorm.DB, clock Clock, log *zap.Logger) *ChargeService {
	return &ChargeService{DB: db, Clock: clock, log: log}
}

func (s *ChargeService) ListFoodItems(ctx context.Context) ([]models.FoodItem, error) {
	var items []models.FoodItem
	if err := s.DB.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, internalErr("failed to load food items", err)
	}
	return items, nil
}

func (s *ChargeService) CreateFoodItem(ctx context.Context, item models.FoodItem) (*models.FoodItem, error) {
	item.ID = 0
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, validationErr("missingName", "name is required")
	}
	if item.Price < 0 {
		return nil, validationErr("invalidPrice", "price must not be negative")
	}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, internalErr("failed to create food item", err)
	}
	return &item, nil
}

func (s *ChargeService) ListServices(ctx context.Context) ([]models.Service, error) {
	var list []models.Service
	if err := s.DB.WithContext(ctx).Order("name").Find(&list).Error; err != nil {
		return nil, internalErr("failed to load services", err)
	}
	return list, nil
}

func (s *ChargeService) CreateService(ctx context.Context, svc models.Service) (*models.Service, error) {
	svc.ID = 0
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return nil, validationErr("missingName", "name is required")
	}
	if svc.Charges < 0 {
		return nil, validationErr("invalidCharges", "charges must not be negative")
	}
	if err := s.DB.WithContext(ctx).Create(&svc).Error; err != nil {
		return nil, internalErr("failed to create service", err)
	}
	return &svc, nil
}

// activeStayFor returns the id of the active stay currently holding the room,
// or nil when the room is not booked. Links already checked out are ignored.
// A checked-in stay ranks first, then one that has started by today, then the
// newest.
func activeStayFor(ctx context.Context, tx *gorm.DB, roomID uint, today time.Time) (*uint, error) {
	var ids []uint
	if err := tx.WithContext(ctx).
		Model(&models.StayRoom{}).
		Joins("JOIN stays ON stays.id = stay_rooms.stay_id").
		Where("stay_rooms.room_id = ? AND stay_rooms.released = ?", roomID, false).
		Where("stays.status IN ?", models.ActiveStatusValues).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL: "CASE WHEN stays.status IN ? THEN 0 ELSE 1 END, " +
				"CASE WHEN stays.check_in <= ? THEN 0 ELSE 1 END, stays.id DESC",
			Vars: []any{[]string{string(models.StayCheckedIn), "checked_in"}, today},
		}}).
		Limit(1).
		Pluck("stays.id", &ids).Error; err != nil {
		return nil, internalErr("failed to resolve booking", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

func requireRoom(ctx context.Context, tx *gorm.DB, roomID uint) error {
	if roomID == 0 {
		return validationErr("missingRoomId", "room_id is required")
	}
	var room models.Room
	if err := tx.WithContext(ctx).Select("id").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("roomNotFound", "Room %d not found", roomID)
		}
		return internalErr("failed to load room", err)
	}
	return nil
}

func (s *ChargeService) CreateFoodOrder(ctx context.Context, in FoodOrderInput) (*models.FoodOrder, error) {
	if len(in.Items) == 0 {
		return nil, validationErr("missingItems", "at least one item is required")
	}
	for _, it := range in.Items {
		if it.FoodItemID == 0 || it.Quantity <= 0 {
			return nil, validationErr("invalidItem", "each item needs food_item_id and a positive quantity")
		}
	}

	var orderID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRoom(ctx, tx, in.RoomID); err != nil {
			return err
		}
		stayID, err := activeStayFor(ctx, tx, in.RoomID, utils.DateOnly(s.Clock.now()))
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.FoodItemID)
		}
		var catalog []models.FoodItem
		if err := tx.Where("id IN ?", ids).Find(&catalog).Error; err != nil {
			return internalErr("failed to load food items", err)
		}
		prices := make(map[uint]float64, len(catalog))
		for _, f := range catalog {
			prices[f.ID] = f.Price
		}

		amount := 0.0
		items := make([]models.FoodOrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			price, ok := prices[it.FoodItemID]
			if !ok {
				return notFoundErr("foodItemNotFound", "Food item %d not found", it.FoodItemID)
			}
			amount += price * float64(it.Quantity)
			items = append(items, models.FoodOrderItem{FoodItemID: it.FoodItemID, Quantity: it.Quantity})
		}

		billing := models.BillingUnbilled
		order := models.FoodOrder{
			CreatedAt:     s.Clock.now(),
			RoomID:        in.RoomID,
			StayID:        stayID,
			Amount:        round2(amount),
			Status:        "pending",
			BillingStatus: &billing,
			Items:         items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return internalErr("failed to create food order", err)
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var order models.FoodOrder
	if err := s.DB.WithContext(ctx).Preload("Items.FoodItem").First(&order, orderID).Error; err != nil {
		return nil, internalErr("failed to load food order", err)
	}
	s.log.Info("food order created", zap.Uint("order_id", order.ID), zap.Uint("room_id", order.RoomID), zap.Float64("amount", order.Amount))
	return &order, nil
}

func (s *ChargeService) ListFoodOrders(ctx context.Context, roomID uint) ([]models.FoodOrder, error) {
	q := s.DB.WithContext(ctx).Preload("Items.FoodItem").Order("id DESC")
	if roomID != 0 {
		q = q.Where("room_id = ?", roomID)
	}
	var orders []models.FoodOrder
	if err := q.Find(&orders).Error; err != nil {
		return nil, internalErr("failed to load food orders", err)
	}
	return orders, nil
}

func (s *ChargeService) AssignService(ctx context.Context, in AssignServiceInput) (*models.AssignedService, error) {
	if in.ServiceID == 0 {
		return nil, validationErr("missingServiceId", "service_id is required")
	}

	var assignedID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRoom(ctx, tx, in.RoomID); err != nil {
			return err
		}
		var svc models.Service
		if err := tx.First(&svc, in.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("serviceNotFound", "Service %d not found", in.ServiceID)
			}
			return internalErr("failed to load service", err)
		}
		stayID, err := activeStayFor(ctx, tx, in.RoomID, utils.DateOnly(s.Clock.now()))
		if err != nil {
			return err
		}

		billing := models.BillingUnbilled
		a := models.AssignedService{
			AssignedAt:    s.Clock.now(),
			ServiceID:     svc.ID,
			RoomID:        in.RoomID,
			StayID:        stayID,
			Status:        "pending",
			BillingStatus: &billing,
		}
		if err := tx.Create(&a).Error; err != nil {
			return internalErr("failed to assign service", err)
		}
		assignedID = a.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var a models.AssignedService
	if err := s.DB.WithContext(ctx).Preload("Service").First(&a, assignedID).Error; err != nil {
		return nil, internalErr("failed to load assigned service", err)
	}
	s.log.Info("service assigned", zap.Uint("assigned_id", a.ID), zap.Uint("room_id", a.RoomID), zap.String("service", a.Service.Name))
	return &a, nil
}

func (s *ChargeService) ListAssignedServices(ctx context.Context, roomID uint) ([]models.AssignedService, error) {
	q := s.DB.WithContext(ctx).Preload("Service").Order("id DESC")
	if roomID != 0 {
		q = q.Where("room_id = ?", roomID)
	}
	var list []models.AssignedService
	if err := q.Find(&list).Error; err != nil {
		return nil, internalErr("failed to load assigned services", err)
	}
	return list, nil
}
