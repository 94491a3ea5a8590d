package controllers

import (
	"net/http"

	"resort-backend/models"
	"resort-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resortSettingsPayload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

type SettingsController struct {
	Settings *services.SettingsService
	log      *zap.Logger
}

func NewSettingsController(svc *services.SettingsService, log *zap.Logger) *SettingsController {
	return &SettingsController{Settings: svc, log: log}
}

func (ctrl *SettingsController) GetResortSettings(c *gin.Context) {
	setting, err := ctrl.Settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resort": setting})
}

func (ctrl *SettingsController) UpdateResortSettings(c *gin.Context) {
	var payload resortSettingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadPayload(c, err)
		return
	}

	setting, err := ctrl.Settings.Update(c.Request.Context(), models.ResortSetting{
		Name:    payload.Name,
		Address: payload.Address,
		Phone:   payload.Phone,
		Email:   payload.Email,
		Website: payload.Website,
	})
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resort": setting})
}
