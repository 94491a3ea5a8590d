package controllers

import (
	"net/http"

	"resort-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutRequest struct {
	CheckoutMode   string  `json:"checkout_mode"`
	PaymentMethod  string  `json:"payment_method" binding:"required"`
	DiscountAmount float64 `json:"discount_amount"`
}

type BillingController struct {
	Bills     *services.BillCalculator
	Checkouts *services.CheckoutService
	Dashboard *services.DashboardService
	log       *zap.Logger
}

func NewBillingController(bills *services.BillCalculator, checkouts *services.CheckoutService, dashboard *services.DashboardService, log *zap.Logger) *BillingController {
	return &BillingController{Bills: bills, Checkouts: checkouts, Dashboard: dashboard, log: log}
}

// GetBill previews the bill without writing.
func (ctrl *BillingController) GetBill(c *gin.Context) {
	mode, err := services.ParseCheckoutMode(c.Query("checkout_mode"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	bill, err := ctrl.Bills.ComputeBill(c.Request.Context(), c.Param("room_number"), mode)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (ctrl *BillingController) Checkout(c *gin.Context) {
	var payload CheckoutRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}
	res, err := ctrl.Checkouts.Checkout(c.Request.Context(), services.CheckoutInput{
		RoomNumber:     c.Param("room_number"),
		Mode:           payload.CheckoutMode,
		PaymentMethod:  payload.PaymentMethod,
		DiscountAmount: payload.DiscountAmount,
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             "Checkout successful",
		"checkout_id":         res.CheckoutID,
		"grand_total":         res.GrandTotal,
		"checkout_date":       res.CheckoutDate.Format("2006-01-02"),
		"booking_checked_out": res.StayClosed,
	})
}

func (ctrl *BillingController) ListCheckouts(c *gin.Context) {
	skip, limit := pageQuery(c)
	list, total, err := ctrl.Dashboard.ListCheckouts(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total})
}

func (ctrl *BillingController) GetCheckout(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	co, err := ctrl.Dashboard.GetCheckout(c.Request.Context(), id)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

func (ctrl *BillingController) ActiveRooms(c *gin.Context) {
	skip, limit := pageQuery(c)
	opts, err := ctrl.Dashboard.ActiveRooms(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}
