package controllers

import (
	"net/http"
	"strconv"

	"resort-backend/models"
	"resort-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChargeController struct {
	Charges *services.ChargeService
	log     *zap.Logger
}

func NewChargeController(svc *services.ChargeService, log *zap.Logger) *ChargeController {
	return &ChargeController{Charges: svc, log: log}
}

func roomIDQuery(c *gin.Context) uint {
	n, _ := strconv.ParseUint(c.Query("room_id"), 10, 64)
	return uint(n)
}

func (ctrl *ChargeController) ListFoodItems(c *gin.Context) {
	items, err := ctrl.Charges.ListFoodItems(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctrl *ChargeController) CreateFoodItem(c *gin.Context) {
	var item models.FoodItem
	if err := c.ShouldBindJSON(&item); err != nil {
		respondBadPayload(c, err)
		return
	}
	created, err := ctrl.Charges.CreateFoodItem(c.Request.Context(), item)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (ctrl *ChargeController) ListServices(c *gin.Context) {
	list, err := ctrl.Charges.ListServices(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctrl *ChargeController) CreateService(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		respondBadPayload(c, err)
		return
	}
	created, err := ctrl.Charges.CreateService(c.Request.Context(), svc)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (ctrl *ChargeController) CreateFoodOrder(c *gin.Context) {
	var in services.FoodOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadPayload(c, err)
		return
	}
	order, err := ctrl.Charges.CreateFoodOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (ctrl *ChargeController) ListFoodOrders(c *gin.Context) {
	orders, err := ctrl.Charges.ListFoodOrders(c.Request.Context(), roomIDQuery(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (ctrl *ChargeController) AssignService(c *gin.Context) {
	var in services.AssignServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadPayload(c, err)
		return
	}
	a, err := ctrl.Charges.AssignService(c.Request.Context(), in)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (ctrl *ChargeController) ListAssignedServices(c *gin.Context) {
	list, err := ctrl.Charges.ListAssignedServices(c.Request.Context(), roomIDQuery(c))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
