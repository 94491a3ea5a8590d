package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resort-backend/config"
	"resort-backend/controllers"
	"resort-backend/events"
	"resort-backend/models"
	"resort-backend/routes"
	"resort-backend/services"
	"resort-backend/utils"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found; continuing with environment variables")
	}

	cfg := config.Load()

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	utils.InitJWT(cfg.JWTSecret, cfg.JWTExpiry)

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	config.SeedDatabase(db, cfg, logger)

	publisher := events.New(cfg.AMQPURL, logger)
	defer publisher.Close()

	clock := services.Clock(services.SystemClock)

	// Services
	availability := services.NewAvailabilityService(db, logger)
	notifier := services.NewEmailNotifier(db, cfg.Mail, logger)
	stays := services.NewStayService(db, availability, notifier, publisher, clock, logger)
	bills := services.NewBillCalculator(db, clock, logger)
	checkouts := services.NewCheckoutService(db, bills, publisher, clock, logger)
	reconciler := services.NewReconciler(db, clock, logger)
	rooms := services.NewRoomService(db, reconciler, logger)
	charges := services.NewChargeService(db, clock, logger)
	dashboard := services.NewDashboardService(db, logger)
	auth := services.NewAuthService(db, logger)
	settings := services.NewSettingsService(db)
	packages := services.NewPackageService(db)
	images := services.NewImageStore(cfg.UploadDir)

	// Controllers
	router := routes.SetupRouter(routes.Controllers{
		Auth:         controllers.NewAuthController(auth, logger),
		Rooms:        controllers.NewRoomController(rooms, logger),
		Availability: controllers.NewAvailabilityController(availability, logger),
		Bookings:     controllers.NewBookingController(stays, images, models.StayStandalone, logger),
		Packages:     controllers.NewBookingController(stays, images, models.StayPackage, logger),
		Catalog:      controllers.NewPackageController(packages, logger),
		Charges:      controllers.NewChargeController(charges, logger),
		Billing:      controllers.NewBillingController(bills, checkouts, dashboard, logger),
		Settings:     controllers.NewSettingsController(settings, logger),
	}, cfg.CORSOrigins, logger)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}
	logger.Info("server stopped gracefully")
}
