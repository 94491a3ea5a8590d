package config

import (
	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedDatabase creates the first staff account and the resort settings row
// when the tables are empty.
func SeedDatabase(db *gorm.DB, cfg Config, log *zap.Logger) {
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		hash, err := utils.HashPassword(cfg.SeedAdminPassword)
		if err != nil {
			log.Warn("failed to hash default admin password", zap.Error(err))
		} else {
			admin := models.User{
				FullName: "Resort Admin",
				Email:    cfg.SeedAdminEmail,
				Password: hash,
				Role:     "admin",
			}
			if err := db.Create(&admin).Error; err != nil {
				log.Warn("failed to create default admin", zap.Error(err))
			} else {
				log.Info("default admin seeded", zap.String("email", admin.Email))
			}
		}
	}

	var settingCount int64
	db.Model(&models.ResortSetting{}).Count(&settingCount)
	if settingCount == 0 {
		setting := models.ResortSetting{Name: cfg.Mail.FromName}
		if err := db.Create(&setting).Error; err != nil {
			log.Warn("failed to seed resort settings", zap.Error(err))
		}
	}
}
