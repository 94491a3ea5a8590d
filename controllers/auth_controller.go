package controllers

import (
	"net/http"

	"resort-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthController struct {
	Auth *services.AuthService
	log  *zap.Logger
}

func NewAuthController(svc *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{Auth: svc, log: log}
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}

	token, user, err := ctrl.Auth.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
			"role":      user.Role,
		},
	})
}
