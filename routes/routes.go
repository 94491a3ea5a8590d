package routes

import (
	"net/http"
	"time"

	"resort-backend/controllers"
	"resort-backend/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controllers is the set of handlers the router mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	Rooms        *controllers.RoomController
	Availability *controllers.AvailabilityController
	Bookings     *controllers.BookingController
	Packages     *controllers.BookingController
	Catalog      *controllers.PackageController
	Charges      *controllers.ChargeController
	Billing      *controllers.BillingController
	Settings     *controllers.SettingsController
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(ctl Controllers, corsOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Public
	api.POST("/auth/login", ctl.Auth.Login)
	api.POST("/bookings/guest", ctl.Bookings.CreateGuestBooking)
	api.POST("/packages/book/guest", ctl.Packages.CreateGuestBooking)
	api.POST("/availability", ctl.Availability.Check)
	api.GET("/packages", ctl.Catalog.GetPackages)

	staff := api.Group("", middleware.RequireAuth())
	{
		rooms := staff.Group("/rooms")
		{
			rooms.GET("", ctl.Rooms.GetRooms)
			rooms.POST("", ctl.Rooms.CreateRoom)
			rooms.PATCH("/:id", ctl.Rooms.UpdateRoom)
			rooms.PUT("/:id", ctl.Rooms.UpdateRoom)
			rooms.DELETE("/:id", ctl.Rooms.DeleteRoom)
		}

		bookings := staff.Group("/bookings")
		{
			bookings.GET("", ctl.Bookings.GetBookings)
			bookings.POST("", ctl.Bookings.CreateBooking)
			bookings.GET("/checkin-image/:filename", ctl.Bookings.CheckinImage)
			bookings.GET("/:id", ctl.Bookings.GetBookingDetails)
			bookings.PUT("/:id/check-in", ctl.Bookings.CheckIn)
			bookings.PUT("/:id/cancel", ctl.Bookings.Cancel)
			bookings.PUT("/:id/extend", ctl.Bookings.Extend)
		}

		packages := staff.Group("/packages")
		{
			packages.POST("", ctl.Catalog.CreatePackage)
			packages.POST("/book", ctl.Packages.CreateBooking)
			packages.GET("/bookings", ctl.Packages.GetBookings)
			packages.GET("/bookings/:id", ctl.Packages.GetBookingDetails)
			packages.PUT("/booking/:id/check-in", ctl.Packages.CheckIn)
			packages.PUT("/booking/:id/cancel", ctl.Packages.Cancel)
			packages.PUT("/booking/:id/extend", ctl.Packages.Extend)
		}

		staff.GET("/food-items", ctl.Charges.ListFoodItems)
		staff.POST("/food-items", ctl.Charges.CreateFoodItem)
		staff.GET("/food-orders", ctl.Charges.ListFoodOrders)
		staff.POST("/food-orders", ctl.Charges.CreateFoodOrder)
		staff.GET("/services", ctl.Charges.ListServices)
		staff.POST("/services", ctl.Charges.CreateService)
		staff.POST("/services/assign", ctl.Charges.AssignService)
		staff.GET("/services/assigned", ctl.Charges.ListAssignedServices)

		bill := staff.Group("/bill")
		{
			bill.GET("/active-rooms", ctl.Billing.ActiveRooms)
			bill.GET("/checkouts", ctl.Billing.ListCheckouts)
			bill.GET("/checkouts/:id", ctl.Billing.GetCheckout)
			bill.GET("/:room_number", ctl.Billing.GetBill)
			bill.POST("/checkout/:room_number", ctl.Billing.Checkout)
		}

		settings := staff.Group("/settings")
		{
			settings.GET("/resort", ctl.Settings.GetResortSettings)
			settings.PUT("/resort", ctl.Settings.UpdateResortSettings)
		}
	}

	return r
}
