package controllers

import (
	"net/http"

	"resort-backend/services"
	"resort-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AvailabilityRequest struct {
	RoomIDs       []uint `json:"room_ids"`
	CheckIn       string `json:"check_in" binding:"required"`
	CheckOut      string `json:"check_out" binding:"required"`
	WholeProperty bool   `json:"whole_property"`
}

type AvailabilityController struct {
	Availability *services.AvailabilityService
	log          *zap.Logger
}

func NewAvailabilityController(svc *services.AvailabilityService, log *zap.Logger) *AvailabilityController {
	return &AvailabilityController{Availability: svc, log: log}
}

func (ctrl *AvailabilityController) Check(c *gin.Context) {
	var payload AvailabilityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	checkIn, err := utils.ParseDate(payload.CheckIn)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidCheckIn", err.Error(), gin.H{"check_in": payload.CheckIn})
		return
	}
	checkOut, err := utils.ParseDate(payload.CheckOut)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalidCheckOut", err.Error(), gin.H{"check_out": payload.CheckOut})
		return
	}

	ok, conflicts, err := ctrl.Availability.IsAvailable(c.Request.Context(), services.CheckRequest{
		RoomIDs:       payload.RoomIDs,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		WholeProperty: payload.WholeProperty,
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	if conflicts == nil {
		conflicts = []services.Conflict{}
	}
	c.JSON(http.StatusOK, gin.H{"available": ok, "conflicts": conflicts})
}
