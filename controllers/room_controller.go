package controllers

import (
	"net/http"

	"resort-backend/models"
	"resort-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RoomController struct {
	Rooms *services.RoomService
	log   *zap.Logger
}

func NewRoomController(svc *services.RoomService, log *zap.Logger) *RoomController {
	return &RoomController{Rooms: svc, log: log}
}

// ----------------------------------------------------
// GET /api/rooms
// ----------------------------------------------------

func (ctrl *RoomController) GetRooms(c *gin.Context) {
	rooms, err := ctrl.Rooms.List(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// ----------------------------------------------------
// POST /api/rooms
// ----------------------------------------------------

func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		respondBadPayload(c, err)
		return
	}
	created, err := ctrl.Rooms.Create(c.Request.Context(), room)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ----------------------------------------------------
// PATCH|PUT /api/rooms/:id
// ----------------------------------------------------

func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var payload services.RoomUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	room, err := ctrl.Rooms.Update(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Room updated successfully",
		"data":    services.RoomView{Room: *room, EffectiveStatus: room.EffectiveStatus()},
	})
}

// ----------------------------------------------------
// DELETE /api/rooms/:id
// ----------------------------------------------------

func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.Rooms.Delete(c.Request.Context(), id); err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Room deleted successfully",
	})
}
