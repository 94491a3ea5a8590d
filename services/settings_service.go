package services

import (
	"context"
	"errors"

	"resort-backend/models"

	"gorm.io/gorm"
)

type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

// Get returns the single settings row, or an empty one when none exists.
func (s *SettingsService) Get(ctx context.Context) (*models.ResortSetting, error) {
	var setting models.ResortSetting
	if err := s.DB.WithContext(ctx).Order("id").First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ResortSetting{}, nil
		}
		return nil, internalErr("failed to load settings", err)
	}
	return &setting, nil
}

func (s *SettingsService) Update(ctx context.Context, in models.ResortSetting) (*models.ResortSetting, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	current.Name = in.Name
	current.Address = in.Address
	current.Phone = in.Phone
	current.Email = in.Email
	current.Website = in.Website
	if err := s.DB.WithContext(ctx).Save(current).Error; err != nil {
		return nil, internalErr("failed to save settings", err)
	}
	return current, nil
}
