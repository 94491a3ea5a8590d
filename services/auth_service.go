package services

import (
	"context"
	"errors"
	"strings"

	"resort-backend/models"
	"resort-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	DB  *gorm.DB
	log *zap.Logger
}

func NewAuthService(db *gorm.DB, log *zap.Logger) *AuthService {
	return &AuthService{DB: db, log: log}
}

// Login checks the staff credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, validationErr("missingCredentials", "email and password are required")
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, internalErr("failed to load user", err)
	}
	if !utils.ComparePassword(user.Password, password) {
		s.log.Info("login rejected", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", nil, internalErr("failed to generate token", err)
	}
	return token, &user, nil
}
