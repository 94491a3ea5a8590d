package services

import (
	"context"
	"strings"

	"resort-backend/models"

	"gorm.io/gorm"
)

type PackageService struct {
	DB *gorm.DB
}

func NewPackageService(db *gorm.DB) *PackageService {
	return &PackageService{DB: db}
}

func (s *PackageService) List(ctx context.Context) ([]models.Package, error) {
	var list []models.Package
	if err := s.DB.WithContext(ctx).Order("id").Find(&list).Error; err != nil {
		return nil, internalErr("failed to load packages", err)
	}
	return list, nil
}

// Create stores a package. An empty booking_type is resolved from room_types
// so the stored row always carries an explicit mode.
func (s *PackageService) Create(ctx context.Context, p models.Package) (*models.Package, error) {
	p.ID = 0
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, validationErr("missingTitle", "title is required")
	}
	if p.Price < 0 {
		return nil, validationErr("invalidPrice", "price must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(p.BookingType)) {
	case "", models.PackageWholeProperty, models.PackageRoomType:
	default:
		return nil, validationErr("invalidBookingType", "booking_type must be %s or %s",
			models.PackageWholeProperty, models.PackageRoomType)
	}
	p.BookingType = p.Mode()
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, internalErr("failed to create package", err)
	}
	return &p, nil
}
