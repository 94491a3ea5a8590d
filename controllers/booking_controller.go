package controllers

import (
	"net/http"

	"resort-backend/models"
	"resort-backend/services"
	"resort-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateBookingRequest struct {
	PackageID   *uint  `json:"package_id"`
	RoomID      uint   `json:"room_id"`
	RoomIDs     []uint `json:"room_ids"`
	GuestName   string `json:"guest_name" binding:"required"`
	GuestEmail  string `json:"guest_email"`
	GuestMobile string `json:"guest_mobile"`
	CheckIn     string `json:"check_in" binding:"required"`
	CheckOut    string `json:"check_out" binding:"required"`
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
}

func (r CreateBookingRequest) input() services.CreateStayInput {
	roomIDs := r.RoomIDs
	if r.RoomID != 0 {
		roomIDs = append([]uint{r.RoomID}, roomIDs...)
	}
	return services.CreateStayInput{
		PackageID:   r.PackageID,
		RoomIDs:     roomIDs,
		GuestName:   r.GuestName,
		GuestEmail:  r.GuestEmail,
		GuestMobile: r.GuestMobile,
		CheckIn:     r.CheckIn,
		CheckOut:    r.CheckOut,
		Adults:      r.Adults,
		Children:    r.Children,
	}
}

type stayView struct {
	models.Stay
	DisplayID   string `json:"display_id"`
	BookingType string `json:"booking_type"`
}

func viewOf(s *models.Stay) stayView {
	typ := utils.DisplayTypeBooking
	if s.Kind == models.StayPackage {
		typ = utils.DisplayTypePackage
	}
	return stayView{Stay: *s, DisplayID: s.DisplayID(), BookingType: typ}
}

// BookingController serves one kind of stay. The router mounts one instance
// for room bookings and one for package bookings.
type BookingController struct {
	Stays  *services.StayService
	Images *services.ImageStore
	Kind   models.StayKind
	log    *zap.Logger
}

func NewBookingController(stays *services.StayService, images *services.ImageStore, kind models.StayKind, log *zap.Logger) *BookingController {
	return &BookingController{Stays: stays, Images: images, Kind: kind, log: log}
}

func (ctrl *BookingController) bind(c *gin.Context) (services.CreateStayInput, bool) {
	var payload CreateBookingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return services.CreateStayInput{}, false
	}
	in := payload.input()
	if ctrl.Kind == models.StayPackage && in.PackageID == nil {
		utils.JSONError(c, http.StatusBadRequest, "missingPackageId", "package_id is required", nil)
		return in, false
	}
	if ctrl.Kind == models.StayStandalone {
		in.PackageID = nil
	}
	return in, true
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	in, ok := ctrl.bind(c)
	if !ok {
		return
	}
	stay, err := ctrl.Stays.CreateStay(c.Request.Context(), in)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "data": viewOf(stay)})
}

// CreateGuestBooking is the public booking form.
func (ctrl *BookingController) CreateGuestBooking(c *gin.Context) {
	in, ok := ctrl.bind(c)
	if !ok {
		return
	}
	stay, existing, err := ctrl.Stays.CreateGuestStay(c.Request.Context(), in)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	if existing {
		c.JSON(http.StatusOK, gin.H{"message": "Booking already exists", "data": viewOf(stay), "duplicate": true})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "data": viewOf(stay)})
}

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	skip, limit := pageQuery(c)
	stays, total, err := ctrl.Stays.ListStays(c.Request.Context(), ctrl.Kind, skip, limit)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	out := make([]stayView, 0, len(stays))
	for i := range stays {
		out = append(out, viewOf(&stays[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": total, "skip": skip, "limit": limit})
}

func (ctrl *BookingController) GetBookingDetails(c *gin.Context) {
	stay, err := ctrl.Stays.GetStay(c.Request.Context(), c.Param("id"), ctrl.Kind)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(stay))
}

// CheckIn takes multipart id_card_image and guest_photo.
func (ctrl *BookingController) CheckIn(c *gin.Context) {
	idCard, err := c.FormFile("id_card_image")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "missingImages", "id_card_image is required", nil)
		return
	}
	photo, err := c.FormFile("guest_photo")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "missingImages", "guest_photo is required", nil)
		return
	}

	idName, err := ctrl.Images.Save(idCard, "id")
	if err != nil {
		ctrl.log.Error("failed to store id card image", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "uploadFailed", "Failed to store image", nil)
		return
	}
	photoName, err := ctrl.Images.Save(photo, "guest")
	if err != nil {
		ctrl.log.Error("failed to store guest photo", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "uploadFailed", "Failed to store image", nil)
		return
	}

	stay, err := ctrl.Stays.CheckIn(c.Request.Context(), c.Param("id"), ctrl.Kind, services.CheckInInput{
		IDCardImage: idName,
		GuestPhoto:  photoName,
		UserID:      c.GetUint("userID"),
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checked in successfully", "data": viewOf(stay)})
}

func (ctrl *BookingController) Cancel(c *gin.Context) {
	stay, err := ctrl.Stays.Cancel(c.Request.Context(), c.Param("id"), ctrl.Kind)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "data": viewOf(stay)})
}

// Extend reads the new date from ?new_checkout=YYYY-MM-DD.
func (ctrl *BookingController) Extend(c *gin.Context) {
	newCheckout := c.Query("new_checkout")
	if newCheckout == "" {
		utils.JSONError(c, http.StatusBadRequest, "missingNewCheckout", "new_checkout is required", nil)
		return
	}
	stay, err := ctrl.Stays.Extend(c.Request.Context(), c.Param("id"), ctrl.Kind, newCheckout)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking extended", "data": viewOf(stay)})
}

func (ctrl *BookingController) CheckinImage(c *gin.Context) {
	path, err := ctrl.Images.Path(c.Param("filename"))
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.File(path)
}
